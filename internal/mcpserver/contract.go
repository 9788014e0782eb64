package mcpserver

// NoteLayout tells MCP clients how jot stores notes.
const NoteLayout = `# jot Note Layout

Notes are plain Markdown files under one root directory.

## Paths

- A note is named by its path relative to the root, without the ` + "`" + `.md` + "`" + `
  extension: ` + "`" + `work/meetings/standup` + "`" + ` lives at ` + "`" + `<root>/work/meetings/standup.md` + "`" + `.
- The last segment is the note's **title**; everything before it is the **parent** directory.
- A bare title (` + "`" + `standup` + "`" + `) may match notes in several directories.

## Metadata

jot keeps one record per note in its index:

| Field | Meaning |
|---|---|
| ` + "`" + `relative_path` + "`" + ` | path without extension |
| ` + "`" + `absolute_path` + "`" + ` | file path including ` + "`" + `.md` + "`" + ` |
| ` + "`" + `title` + "`" + ` | last path segment |
| ` + "`" + `created` + "`" + `, ` + "`" + `modified` + "`" + ` | local time, ` + "`" + `YYYY-MM-DD HH:MM:SS` + "`" + ` |
| ` + "`" + `tags` + "`" + ` | sorted list of tags |

Tags live in the index, not in the file. Frontmatter ` + "`" + `tags:` + "`" + ` and inline
` + "`" + `#tags` + "`" + ` are only read when jot indexes a file it has never seen.

## Access

This server is read-only. Notes are created, tagged, renamed and deleted with the
` + "`" + `jot` + "`" + ` command line.
`

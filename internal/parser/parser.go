// Package parser recovers note tags from Markdown content. The index is the
// source of truth for tags; this is only used when a file shows up on disk
// without an index record (rebuild, watch).
package parser

import (
	"bytes"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var inlineTagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

type frontmatter struct {
	Tags yaml.Node `yaml:"tags"`
}

// Tags returns the deduplicated tags of a note: frontmatter "tags" first
// (a YAML list or a comma-separated string), then inline #tags from the body.
func Tags(data []byte) []string {
	fm, body := split(data)

	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for _, t := range frontmatterTags(fm) {
		add(t)
	}
	for _, m := range inlineTagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// split separates a leading "---" YAML block from the body. Without a
// closing delimiter everything is body.
func split(data []byte) (yamlBlock []byte, body string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}
	rest := trimmed[len(delim):]
	end := bytes.Index(rest, []byte("\n"+delim))
	if end < 0 {
		return nil, string(data)
	}
	after := rest[end+1+len(delim):]
	return rest[:end], strings.TrimLeft(string(after), "\n\r")
}

func frontmatterTags(block []byte) []string {
	if len(block) == 0 {
		return nil
	}
	var fm frontmatter
	if err := yaml.Unmarshal(block, &fm); err != nil {
		// Broken frontmatter is treated as absent.
		return nil
	}

	switch fm.Tags.Kind {
	case yaml.SequenceNode:
		var tags []string
		for _, item := range fm.Tags.Content {
			if item.Kind == yaml.ScalarNode {
				tags = append(tags, item.Value)
			}
		}
		return tags
	case yaml.ScalarNode:
		return strings.Split(fm.Tags.Value, ",")
	}
	return nil
}

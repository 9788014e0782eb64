// Package editor runs the user's editor on a note file.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultCommand is used when neither config nor $EDITOR names an editor.
const DefaultCommand = "vi"

// Editor opens files with Command. The editor process runs with Root as its
// working directory so that tools keyed on the notes tree (LSPs, git) see it.
type Editor struct {
	Command string
	Root    string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an editor attached to the current terminal.
func New(command, root string) *Editor {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	return &Editor{
		Command: command,
		Root:    root,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Open blocks until the editor exits. A non-zero exit status is returned as an error.
func (e *Editor) Open(ctx context.Context, path string) error {
	cmd := e.command(ctx, path)
	cmd.Dir = e.Root
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("editor: %q exited with status %d", e.Command, exitErr.ExitCode())
		}
		return fmt.Errorf("editor: run %q: %w", e.Command, err)
	}
	return nil
}

// command splits off compound commands such as "code --wait" to the shell.
func (e *Editor) command(ctx context.Context, path string) *exec.Cmd {
	if strings.ContainsAny(e.Command, " \t") {
		return exec.CommandContext(ctx, "sh", "-c", e.Command+" "+shellQuote(path))
	}
	return exec.CommandContext(ctx, e.Command, path)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

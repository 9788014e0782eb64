// Package prompt asks the user questions on the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/starford/jot/internal/apperr"
	"github.com/starford/jot/internal/ui"
)

// Terminal prompts on In/Out. Confirm reads one line at a time; the selectors
// draw an inline list.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	// Force skips the tty check; tests and pipes that want prompting set it.
	Force bool

	reader *bufio.Reader
}

// NewTerminal prompts on stdin and stderr, keeping stdout for command output.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

// Interactive reports whether prompting makes sense: both In and Out must be terminals.
func (t *Terminal) Interactive() bool {
	if t.Force {
		return true
	}
	in, ok := t.In.(interface{ Fd() uintptr })
	if !ok || !isatty.IsTerminal(in.Fd()) {
		return false
	}
	out, ok := t.Out.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(out.Fd())
}

// Confirm asks a yes/no question. An empty answer means yes.
// A non-interactive session answers no without asking.
func (t *Terminal) Confirm(prompt string) (bool, error) {
	if !t.Interactive() {
		return false, nil
	}
	for {
		fmt.Fprintf(t.Out, "%s %s ", ui.Heading.Render(prompt), ui.Hint("[Y/n]"))
		answer, err := t.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "q":
			return false, apperr.ErrCancelled
		}
	}
}

// SelectOne lists options and returns the index of the one picked with
// Enter. Esc, q or Ctrl-C cancel.
func (t *Terminal) SelectOne(prompt string, options []string) (int, error) {
	if !t.Interactive() || len(options) == 0 {
		return 0, apperr.ErrCancelled
	}
	return t.run(newSelector(prompt, options, false))
}

// FuzzySelect opens the list with its filter focused so typing narrows the
// options by fuzzy match. It returns the index into options of the pick.
func (t *Terminal) FuzzySelect(prompt string, options []string) (int, error) {
	if !t.Interactive() || len(options) == 0 {
		return 0, apperr.ErrCancelled
	}
	return t.run(newSelector(prompt, options, true))
}

func (t *Terminal) run(m selector) (int, error) {
	p := tea.NewProgram(m, tea.WithInput(t.In), tea.WithOutput(t.Out))
	final, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("prompt: %w", err)
	}
	return final.(selector).result()
}

// readLine returns the next trimmed line. End of input is a cancellation.
func (t *Terminal) readLine() (string, error) {
	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}
	line, err := t.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		if err == io.EOF {
			fmt.Fprintln(t.Out)
			return "", apperr.ErrCancelled
		}
		return "", fmt.Errorf("prompt: read: %w", err)
	}
	line = strings.TrimSpace(line)
	// Ctrl-C / Ctrl-D typed into a raw-ish terminal arrive as control bytes.
	if line == "\x03" || line == "\x04" {
		return "", apperr.ErrCancelled
	}
	return line, nil
}

package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/jot/internal/apperr"
)

func term(input string) (*Terminal, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Terminal{In: strings.NewReader(input), Out: out, Force: true}, out
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr error
	}{
		{"\n", true, nil},
		{"y\n", true, nil},
		{"YES\n", true, nil},
		{"n\n", false, nil},
		{"maybe\nno\n", false, nil},
		{"q\n", false, apperr.ErrCancelled},
		{"", false, apperr.ErrCancelled},
	}
	for _, tt := range tests {
		tm, out := term(tt.input)
		got, err := tm.Confirm("Create?")
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("input %q: err = %v, want %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("input %q: got %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Create?") {
			t.Errorf("prompt not written: %q", out.String())
		}
	}
}

func TestConfirm_NonInteractiveSaysNo(t *testing.T) {
	tm := &Terminal{In: strings.NewReader("y\n"), Out: &bytes.Buffer{}}
	ok, err := tm.Confirm("Create?")
	if ok || err != nil {
		t.Errorf("got %v, %v; want false, nil", ok, err)
	}
}

func keys(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive feeds msgs to m and follows the commands they return, skipping any
// that do not answer quickly (cursor blink ticks).
func drive(m tea.Model, msgs ...tea.Msg) selector {
	var follow func(cmd tea.Cmd, depth int)
	follow = func(cmd tea.Cmd, depth int) {
		if cmd == nil || depth > 4 {
			return
		}
		out := make(chan tea.Msg, 1)
		go func() { out <- cmd() }()
		select {
		case msg := <-out:
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, c := range batch {
					follow(c, depth+1)
				}
				return
			}
			if msg == nil {
				return
			}
			var next tea.Cmd
			m, next = m.Update(msg)
			follow(next, depth+1)
		case <-time.After(50 * time.Millisecond):
		}
	}
	follow(m.Init(), 0)
	for _, msg := range msgs {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		if _, ok := msg.(tea.KeyMsg); ok && m.(selector).done {
			break
		}
		follow(cmd, 0)
	}
	return m.(selector)
}

func TestSelector_Pick(t *testing.T) {
	opts := []string{"a/x", "b/x", "c/x"}

	m := drive(newSelector("Pick", opts, false), keys("down"), keys("enter"))
	if got, err := m.result(); err != nil || got != 1 {
		t.Fatalf("got %d, %v; want 1", got, err)
	}

	m = drive(newSelector("Pick", opts, false), keys("enter"))
	if got, _ := m.result(); got != 0 {
		t.Errorf("default = %d, want 0", got)
	}

	view := newSelector("Pick", opts, false).View()
	for _, o := range append([]string{"Pick"}, opts...) {
		if !strings.Contains(view, o) {
			t.Errorf("%q not rendered in %q", o, view)
		}
	}
}

func TestSelector_Cancel(t *testing.T) {
	for _, k := range []string{"esc", "ctrl+c", "q"} {
		m := drive(newSelector("Pick", []string{"a", "b"}, false), keys(k))
		if _, err := m.result(); !errors.Is(err, apperr.ErrCancelled) {
			t.Errorf("%s: err = %v, want ErrCancelled", k, err)
		}
	}

	// closed before a decision
	m := drive(newSelector("Pick", []string{"a"}, false))
	if _, err := m.result(); !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("undecided: err = %v", err)
	}
}

func TestSelector_FuzzyFilter(t *testing.T) {
	opts := []string{"work/standup", "home/groceries", "work/retro"}

	m := drive(newSelector("Note", opts, true), keys("g"), keys("r"), keys("o"), keys("c"), keys("enter"))
	if got, err := m.result(); err != nil || got != 1 {
		t.Fatalf("got %d, %v; want 1", got, err)
	}

	// "q" is part of the query while filtering, not a cancel
	m = drive(newSelector("Note", []string{"quarterly", "retro"}, true), keys("q"), keys("enter"))
	if got, err := m.result(); err != nil || got != 0 {
		t.Fatalf("got %d, %v; want 0", got, err)
	}

	m = drive(newSelector("Note", opts, true), keys("ctrl+c"))
	if _, err := m.result(); !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("ctrl+c while filtering: err = %v", err)
	}
}

func TestSelector_NoMatchKeepsListOpen(t *testing.T) {
	m := drive(newSelector("Note", []string{"alpha", "beta"}, true), keys("z"), keys("z"), keys("z"), keys("enter"))
	if m.done {
		t.Fatal("enter with no matches should not pick")
	}
}

func TestSelectOne_RunsProgram(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr error
	}{
		{"j\r", 1, nil},
		{"\r", 0, nil},
		{"\x03", 0, apperr.ErrCancelled},
	}
	for _, tt := range tests {
		tm, _ := term(tt.input)
		type answer struct {
			i   int
			err error
		}
		done := make(chan answer, 1)
		go func() {
			i, err := tm.SelectOne("Pick", []string{"a", "b", "c"})
			done <- answer{i, err}
		}()
		select {
		case got := <-done:
			if !errors.Is(got.err, tt.wantErr) || (tt.wantErr == nil && got.i != tt.want) {
				t.Errorf("input %q: got %d, %v; want %d, %v", tt.input, got.i, got.err, tt.want, tt.wantErr)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("input %q: program did not finish", tt.input)
		}
	}
}

func TestSelect_NonInteractiveCancels(t *testing.T) {
	tm := &Terminal{In: strings.NewReader("\r"), Out: &bytes.Buffer{}}
	if _, err := tm.SelectOne("Pick", []string{"a"}); !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("SelectOne: err = %v", err)
	}
	if _, err := tm.FuzzySelect("Pick", []string{"a"}); !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("FuzzySelect: err = %v", err)
	}
	forced, _ := term("\r")
	if _, err := forced.SelectOne("Pick", nil); !errors.Is(err, apperr.ErrCancelled) {
		t.Errorf("no options: err = %v", err)
	}
}

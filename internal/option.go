package internal

import (
	"io"

	"github.com/starford/jot/internal/noteservice"
	"github.com/starford/jot/internal/resolver"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	logOut   io.Writer
	prompter resolver.Prompter
	editor   noteservice.Opener
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput sends log records to w instead of stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}

// WithPrompter replaces the terminal prompter.
func WithPrompter(p resolver.Prompter) Option {
	return func(a *application) {
		a.prompter = p
	}
}

// WithEditor replaces the configured editor command.
func WithEditor(e noteservice.Opener) Option {
	return func(a *application) {
		a.editor = e
	}
}

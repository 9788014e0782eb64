// Package ui renders what jot prints: note tables, status lines and prompt text.
package ui

import "fmt"

const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolInfo    = "ℹ"
)

func Success(msg string) string {
	return fmt.Sprintf("%s %s", SymbolSuccess, msg)
}

func Successf(format string, args ...any) string {
	return Success(fmt.Sprintf(format, args...))
}

// Error is rendered in the failure colour.
func Error(msg string) string {
	return Failure.Render(fmt.Sprintf("%s %s", SymbolError, msg))
}

func Info(msg string) string {
	return fmt.Sprintf("%s %s", SymbolInfo, msg)
}

func Infof(format string, args ...any) string {
	return Info(fmt.Sprintf(format, args...))
}

func Hint(msg string) string {
	return Muted.Render(msg)
}

func FilePath(path string) string {
	return Accent.Render(path)
}

// Count renders "1 note" / "3 notes".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

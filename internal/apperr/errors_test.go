package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsGraceful(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrCancelled, true},
		{fmt.Errorf("edit: %w", ErrCancelled), true},
		{fmt.Errorf("find: %w", ErrNoMatchingNotes), true},
		{ErrNotFound, false},
		{fmt.Errorf("storage: %w", ErrInvalidPath), false},
		{errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := IsGraceful(tt.err); got != tt.want {
			t.Errorf("IsGraceful(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

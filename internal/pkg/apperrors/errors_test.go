package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without wrapped error",
			err:  New(NameConflict, "NAME_CONFLICT", "service \"logging\" is already registered"),
			want: "NAME_CONFLICT: service \"logging\" is already registered",
		},
		{
			name: "with wrapped error",
			err:  Wrap(IOFailure, "IO_FAILURE", "socket write failed", fmt.Errorf("broken pipe")),
			want: "IO_FAILURE: socket write failed: broken pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap(IOFailure, "IO_FAILURE", "msg", inner)

	if !errors.Is(appErr, inner) {
		t.Error("errors.Is should match inner error")
	}
}

func TestIs(t *testing.T) {
	appErr := NewResourceExhausted("pool saturated")
	wrapped := fmt.Errorf("wrapped: %w", appErr)

	if !Is(wrapped, ResourceExhausted) {
		t.Error("Is should match ResourceExhausted through a wrapped error")
	}
	if Is(wrapped, ParseError) {
		t.Error("Is should not match an unrelated kind")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantKind Kind
	}{
		{"BadArgument", NewBadArgument("name"), BadArgument},
		{"NameConflict", NewNameConflict("http"), NameConflict},
		{"ProgrammerError", NewProgrammerError("fork off a worker thread"), ProgrammerError},
		{"ParseError", NewParseError("malformed header line"), ParseError},
		{"ResourceExhausted", NewResourceExhausted("pool saturated"), ResourceExhausted},
		{"ShutdownInProgress", NewShutdownInProgress("http"), ShutdownInProgress},
		{"IOFailure", NewIOFailure(fmt.Errorf("eof")), IOFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", tt.err.Kind, tt.wantKind)
			}
		})
	}
}

package shared

import (
	"errors"
	"fmt"
	"testing"
	"unicode/utf8"
)

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		name    string
		seconds int
		want    string
	}{
		{name: "zero", seconds: 0, want: "0:00"},
		{name: "under a minute", seconds: 42, want: "0:42"},
		{name: "minutes", seconds: 215, want: "3:35"},
		{name: "hours", seconds: 3725, want: "1:02:05"},
		{name: "negative clamps", seconds: -5, want: "0:00"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tc := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{name: "short", s: "abc", n: 5, want: "abc"},
		{name: "exact", s: "abcde", n: 5, want: "abcde"},
		{name: "ascii", s: "abcdef", n: 3, want: "abc..."},
		{name: "backs off inside a rune", s: "aé", n: 2, want: "a..."},
		{name: "three byte rune", s: "ab€cd", n: 4, want: "ab..."},
		{name: "boundary after rune", s: "é€", n: 2, want: "é..."},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.n)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("Truncate(%q, %d) produced invalid UTF-8 %q", tt.s, tt.n, got)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	t.Run("not found wrapping", func(t *testing.T) {
		if !errors.Is(ErrTrackNotFound, ErrNotFound) {
			t.Error("ErrTrackNotFound should match ErrNotFound")
		}
		if !errors.Is(fmt.Errorf("%w: abc", ErrPlaylistNotFound), ErrNotFound) {
			t.Error("wrapped ErrPlaylistNotFound should match ErrNotFound")
		}
	})

	t.Run("TransportError unwraps", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := error(&TransportError{Op: "fetch page", Err: cause})
		if !errors.Is(err, cause) {
			t.Error("expected TransportError to unwrap to its cause")
		}
		if err.Error() != "transport error during fetch page: connection reset" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("ProtocolError message", func(t *testing.T) {
		err := &ProtocolError{StatusCode: 502, Message: "bad gateway"}
		if err.Error() != "protocol error (status 502): bad gateway" {
			t.Errorf("unexpected message %q", err.Error())
		}

		var pe *ProtocolError
		if !errors.As(fmt.Errorf("submit: %w", err), &pe) || pe.StatusCode != 502 {
			t.Error("expected errors.As to find the ProtocolError")
		}
	})

	t.Run("GenerateID is unique", func(t *testing.T) {
		if GenerateID() == GenerateID() {
			t.Error("expected distinct ids")
		}
	})
}

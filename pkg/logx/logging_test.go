package logx

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in, zerolog.InfoLevel); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestZeroValueIsNop(t *testing.T) {
	t.Parallel()
	var l Logger
	if !l.IsZero() {
		t.Fatal("zero logger should report IsZero")
	}
	// Must not panic.
	l.Info("ignored", String("k", "v"))
	l.With(Int("n", 1)).Error("ignored too")
}

func TestNopIsNotZero(t *testing.T) {
	t.Parallel()
	l := Nop()
	if l.IsZero() {
		t.Fatal("Nop logger carries a base and should not be zero")
	}
	if l.Enabled(LevelError) {
		t.Fatal("Nop logger should not have error enabled")
	}
}

func TestWithDoesNotMutateParent(t *testing.T) {
	t.Parallel()
	parent := Nop()
	child := parent.With(String("component", "x"))
	if len(parent.fields) != 0 {
		t.Fatal("With must not mutate the parent logger")
	}
	grandchild := child.With(Int("n", 1))
	if len(child.fields) != 1 || len(grandchild.fields) != 2 {
		t.Fatalf("unexpected field counts: child=%d grandchild=%d",
			len(child.fields), len(grandchild.fields))
	}
}

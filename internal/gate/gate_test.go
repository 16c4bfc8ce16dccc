package gate

import (
	"context"
	"errors"
	"testing"
)

func TestNonPollAlwaysEligible(t *testing.T) {
	t.Parallel()
	g := New(func(ctx context.Context, destID string) (int, error) {
		t.Fatal("metric must not be fetched for non-poll content")
		return 0, nil
	}, 500)

	ok, count, err := g.Eligible(context.Background(), "c1", "daily")
	if err != nil {
		t.Fatalf("Eligible: %v", err)
	}
	if !ok || count != 0 {
		t.Fatalf("expected eligible with no count, got ok=%v count=%d", ok, count)
	}
}

func TestPollThreshold(t *testing.T) {
	t.Parallel()
	counts := map[string]int{"small": 300, "big": 600, "exact": 500}
	g := New(func(ctx context.Context, destID string) (int, error) {
		return counts[destID], nil
	}, 500)

	cases := []struct {
		dest string
		want bool
	}{
		{"small", false},
		{"big", true},
		{"exact", true},
	}
	for _, tc := range cases {
		ok, count, err := g.Eligible(context.Background(), tc.dest, CategoryPoll)
		if err != nil {
			t.Fatalf("Eligible(%s): %v", tc.dest, err)
		}
		if ok != tc.want {
			t.Fatalf("Eligible(%s) = %v (count %d), want %v", tc.dest, ok, count, tc.want)
		}
		if count != counts[tc.dest] {
			t.Fatalf("Eligible(%s) count = %d, want %d", tc.dest, count, counts[tc.dest])
		}
	}
}

func TestMetricFailureIsNotEligible(t *testing.T) {
	t.Parallel()
	boom := errors.New("api down")
	g := New(func(ctx context.Context, destID string) (int, error) {
		return 0, boom
	}, 500)

	ok, _, err := g.Eligible(context.Background(), "c1", CategoryPoll)
	if ok {
		t.Fatal("metric failure must fail closed")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected metric error to propagate, got %v", err)
	}
}

func TestApplyUpdatesThreshold(t *testing.T) {
	t.Parallel()
	g := New(func(ctx context.Context, destID string) (int, error) {
		return 400, nil
	}, 500)

	if ok, _, _ := g.Eligible(context.Background(), "c1", CategoryPoll); ok {
		t.Fatal("400 subscribers should not pass threshold 500")
	}

	g.Apply(300)
	if g.Threshold() != 300 {
		t.Fatalf("Threshold = %d, want 300", g.Threshold())
	}
	if ok, _, _ := g.Eligible(context.Background(), "c1", CategoryPoll); !ok {
		t.Fatal("400 subscribers should pass threshold 300")
	}

	g.Apply(0)
	if g.Threshold() != 300 {
		t.Fatal("non-positive threshold must be ignored")
	}
}

func TestNewDefaultsThreshold(t *testing.T) {
	t.Parallel()
	g := New(func(ctx context.Context, destID string) (int, error) { return 0, nil }, 0)
	if g.Threshold() != 500 {
		t.Fatalf("Threshold = %d, want default 500", g.Threshold())
	}
}

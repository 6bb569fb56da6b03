package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/kkarklins/balss/internal/resilience"
)

var errBoom = errors.New("boom")

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	t.Parallel()

	cb := resilience.NewCircuitBreaker("test", resilience.WithMaxFailures(3))

	for i := 0; i < 3; i++ {
		if err := cb.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: err = %v, want errBoom", i, err)
		}
	}
	if cb.State() != resilience.StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	// Next call is rejected without running fn.
	ran := false
	err := cb.Execute(func() error { ran = true; return nil })
	if !errors.Is(err, resilience.ErrOpen) {
		t.Fatalf("err = %v, want ErrOpen", err)
	}
	if ran {
		t.Error("fn ran while breaker open")
	}
}

func TestBreaker_SuccessResetsCounter(t *testing.T) {
	t.Parallel()

	cb := resilience.NewCircuitBreaker("test", resilience.WithMaxFailures(3))

	cb.Execute(func() error { return errBoom })
	cb.Execute(func() error { return errBoom })
	cb.Execute(func() error { return nil })
	cb.Execute(func() error { return errBoom })
	cb.Execute(func() error { return errBoom })

	if cb.State() != resilience.StateClosed {
		t.Errorf("state = %v, want closed after interleaved success", cb.State())
	}
}

func TestBreaker_ClosesAfterSuccessfulProbes(t *testing.T) {
	t.Parallel()

	cb := resilience.NewCircuitBreaker("test",
		resilience.WithMaxFailures(1),
		resilience.WithCooldown(time.Millisecond),
		resilience.WithProbes(2),
	)

	cb.Execute(func() error { return errBoom })
	if cb.State() != resilience.StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	time.Sleep(5 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return nil }); err != nil {
			t.Fatalf("probe %d: %v", i, err)
		}
	}
	if cb.State() != resilience.StateClosed {
		t.Errorf("state = %v, want closed after probes", cb.State())
	}
}

func TestBreaker_ReopensOnProbeFailure(t *testing.T) {
	t.Parallel()

	cb := resilience.NewCircuitBreaker("test",
		resilience.WithMaxFailures(1),
		resilience.WithCooldown(time.Millisecond),
	)

	cb.Execute(func() error { return errBoom })
	time.Sleep(5 * time.Millisecond)

	if err := cb.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("probe err = %v, want errBoom", err)
	}
	if cb.State() != resilience.StateOpen {
		t.Errorf("state = %v, want re-opened", cb.State())
	}
}

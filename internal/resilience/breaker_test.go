package resilience

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func failing() error { return errBoom }
func succeeding() error { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Name: "t", Trip: 3, Cooldown: time.Hour})

	for i := 0; i < 3; i++ {
		if err := b.Do(failing); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: err=%v, want boom", i, err)
		}
	}
	if !b.Open() {
		t.Fatal("breaker should be open after 3 failures")
	}
	if err := b.Do(failing); !errors.Is(err, ErrOpen) {
		t.Errorf("err=%v, want ErrOpen without calling fn", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Trip: 3, Cooldown: time.Hour})

	b.Do(failing)
	b.Do(failing)
	b.Do(succeeding)
	b.Do(failing)
	b.Do(failing)

	if b.Open() {
		t.Error("breaker should still be closed — failures were not consecutive")
	}
}

func TestBreaker_ProbeClosesOnSuccess(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Trip: 1, Cooldown: 10 * time.Millisecond})
	b.Do(failing)
	if !b.Open() {
		t.Fatal("breaker should be open")
	}

	time.Sleep(20 * time.Millisecond)
	if err := b.Do(succeeding); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if b.Open() {
		t.Error("breaker should close after a successful probe")
	}
}

func TestBreaker_ProbeFailureRestartsCooldown(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Trip: 1, Cooldown: 20 * time.Millisecond})
	b.Do(failing)

	time.Sleep(30 * time.Millisecond)
	if err := b.Do(failing); !errors.Is(err, errBoom) {
		t.Fatalf("probe err=%v, want boom", err)
	}
	// Immediately after the failed probe the breaker must refuse again.
	if err := b.Do(succeeding); !errors.Is(err, ErrOpen) {
		t.Errorf("err=%v, want ErrOpen during restarted cooldown", err)
	}
}

func TestBreaker_OnlyOneProbeAdmitted(t *testing.T) {
	t.Parallel()

	b := NewBreaker(BreakerConfig{Trip: 1, Cooldown: 10 * time.Millisecond})
	b.Do(failing)
	time.Sleep(20 * time.Millisecond)

	started := make(chan struct{})
	release := make(chan struct{})
	go b.Do(func() error {
		close(started)
		<-release
		return nil
	})

	<-started
	// While the probe is in flight, further calls are refused.
	if err := b.Do(succeeding); !errors.Is(err, ErrOpen) {
		t.Errorf("err=%v, want ErrOpen while probe in flight", err)
	}
	close(release)
}

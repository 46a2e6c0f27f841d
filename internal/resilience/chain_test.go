package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	trmock "github.com/tarjama-live/tarjama/pkg/provider/translate/mock"
	"github.com/tarjama-live/tarjama/pkg/types"
)

func TestChain_PrimaryServes(t *testing.T) {
	t.Parallel()

	primary := &trmock.Translator{Result: "مرحبا"}
	fallback := &trmock.Translator{Result: "untranslated"}
	c := NewChain("libre", primary, BreakerConfig{})
	c.Add("passthrough", fallback)

	got, err := c.Translate(context.Background(), "hello", types.ModeENToAR)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "مرحبا" {
		t.Errorf("result=%q, want the primary's translation", got)
	}
	if len(fallback.Calls()) != 0 {
		t.Error("fallback must not be consulted while the primary is healthy")
	}
}

func TestChain_FallsThroughOnFailure(t *testing.T) {
	t.Parallel()

	primary := &trmock.Translator{Err: errors.New("connection refused")}
	fallback := &trmock.Translator{Result: "hello"}
	c := NewChain("libre", primary, BreakerConfig{})
	c.Add("passthrough", fallback)

	got, err := c.Translate(context.Background(), "hello", types.ModeENToAR)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "hello" {
		t.Errorf("result=%q, want the fallback's output", got)
	}
}

func TestChain_AllFail(t *testing.T) {
	t.Parallel()

	c := NewChain("libre", &trmock.Translator{Err: errors.New("down")}, BreakerConfig{})
	_, err := c.Translate(context.Background(), "hello", types.ModeENToAR)
	if !errors.Is(err, ErrAllFailed) {
		t.Errorf("err=%v, want ErrAllFailed", err)
	}
}

func TestChain_SkipsTrippedPrimary(t *testing.T) {
	t.Parallel()

	primary := &trmock.Translator{Err: errors.New("down")}
	fallback := &trmock.Translator{Result: "x"}
	c := NewChain("libre", primary, BreakerConfig{Trip: 2, Cooldown: time.Hour})
	c.Add("passthrough", fallback)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := c.Translate(ctx, "hello", types.ModeENToAR); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	// Two failures tripped the primary; the third call must not reach it.
	if got := len(primary.Calls()); got != 2 {
		t.Errorf("primary saw %d calls, want 2", got)
	}
	if got := len(fallback.Calls()); got != 3 {
		t.Errorf("fallback saw %d calls, want 3", got)
	}
}

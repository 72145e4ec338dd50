package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_EnforcesLimit(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("Allow err: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d denied, want allowed", i+1)
		}
	}

	res, err := l.Allow(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Allow err: %v", err)
	}
	if res.Allowed {
		t.Fatalf("hit 4 allowed, want denied")
	}
	if res.RetryAfter <= 0 {
		t.Fatalf("RetryAfter = %v, want > 0", res.RetryAfter)
	}

	// Otra key no comparte el contador
	if res, _ := l.Allow(ctx, "b@x.com"); !res.Allowed {
		t.Fatalf("distinct key denied")
	}
}

func TestMemoryLimiter_WindowReset(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	base := time.Date(2026, 1, 1, 10, 0, 30, 0, time.UTC)
	l.nowFunc = func() time.Time { return base }

	ctx := context.Background()
	if res, _ := l.Allow(ctx, "k"); !res.Allowed {
		t.Fatalf("first hit denied")
	}
	if res, _ := l.Allow(ctx, "k"); res.Allowed {
		t.Fatalf("second hit allowed within window")
	}

	// Avanzar a la ventana siguiente
	l.nowFunc = func() time.Time { return base.Add(time.Minute) }
	if res, _ := l.Allow(ctx, "k"); !res.Allowed {
		t.Fatalf("hit denied after window reset")
	}
}

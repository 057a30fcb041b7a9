package store

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestIntentionOverwrite(t *testing.T) {
	s := NewIntentionStore()

	s.Set("app.a", time.Minute, t0)
	s.Set("app.a", 10*time.Minute, t0.Add(30*time.Second))

	// Old deadline would have lapsed; the overwrite must win.
	live, expired := s.Check("app.a", t0.Add(2*time.Minute))
	if !live || expired {
		t.Errorf("expected live timer after overwrite, got live=%v expired=%v", live, expired)
	}
}

func TestIntentionLazyExpiry(t *testing.T) {
	s := NewIntentionStore()
	s.Set("app.a", time.Minute, t0)

	live, expired := s.Check("app.a", t0.Add(30*time.Second))
	if !live || expired {
		t.Fatalf("timer should be live at t+30s, got live=%v expired=%v", live, expired)
	}

	// First consultation after the deadline reports the expiry and
	// deletes the record.
	live, expired = s.Check("app.a", t0.Add(2*time.Minute))
	if live || !expired {
		t.Fatalf("expected expired on first post-deadline check, got live=%v expired=%v", live, expired)
	}

	// Second consultation sees nothing: the expiry was consumed.
	live, expired = s.Check("app.a", t0.Add(3*time.Minute))
	if live || expired {
		t.Errorf("expiry should be reported once, got live=%v expired=%v", live, expired)
	}
}

func TestIntentionClear(t *testing.T) {
	s := NewIntentionStore()
	s.Set("app.a", time.Minute, t0)
	s.Clear("app.a")

	live, expired := s.Check("app.a", t0)
	if live || expired {
		t.Error("cleared timer must not report live or expired")
	}
}

func TestIntentionSweep(t *testing.T) {
	s := NewIntentionStore()
	s.Set("app.a", time.Minute, t0)
	s.Set("app.b", time.Hour, t0)

	lapsed := s.Sweep(t0.Add(5 * time.Minute))
	if len(lapsed) != 1 || lapsed[0] != "app.a" {
		t.Fatalf("expected only app.a to lapse, got %v", lapsed)
	}
	if s.Len() != 1 {
		t.Errorf("expected one remaining timer, got %d", s.Len())
	}

	live, _ := s.Check("app.b", t0.Add(5*time.Minute))
	if !live {
		t.Error("unexpired timer must survive the sweep")
	}
}

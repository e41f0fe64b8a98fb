package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/floorquote/backend/internal/models"
)

func TestMemoryStoreSingleSlotAndTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore(time.Hour)
	s.now = func() time.Time { return now }

	if _, err := s.Get(ctx, "chat-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
	_ = s.Put(ctx, "chat-1", models.Analysis{ID: "a1"})
	_ = s.Put(ctx, "chat-1", models.Analysis{ID: "a2"})
	got, err := s.Get(ctx, "chat-1")
	if err != nil || got.ID != "a2" {
		t.Fatalf("got %+v err=%v, want a2", got, err)
	}

	now = now.Add(time.Hour)
	if _, err := s.Get(ctx, "chat-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired entry still returned")
	}
}

func TestMemoryStoreSweepAndDelete(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewMemoryStore(time.Minute)
	s.now = func() time.Time { return now }

	_ = s.Put(ctx, "old", models.Analysis{ID: "1"})
	now = now.Add(2 * time.Minute)
	_ = s.Put(ctx, "fresh", models.Analysis{ID: "2"})

	if n := s.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if err := s.Delete(ctx, "fresh"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "fresh"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted entry still returned")
	}
}

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/floorquote/backend/internal/models"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreWithClient(client, ttl), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, time.Hour)

	a := models.Analysis{
		ID:        "a1",
		SessionID: "chat-1",
		Source:    "export",
		Assessment: models.FloorAssessment{
			Success:         true,
			FloorType:       models.FloorParquet,
			AreaEstimateSqm: 30,
			Damages:         []models.Damage{{Type: "трещина", Severity: models.SeveritySevere}},
		},
		Cost: models.CostEstimate{RecommendedCost: 9000, Currency: "ILS"},
	}
	if err := s.Put(ctx, "chat-1", a); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "chat-1"); ttl != time.Hour {
		t.Fatalf("ttl=%v, want 1h", ttl)
	}

	got, err := s.Get(ctx, "chat-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "a1" || got.Assessment.FloorType != models.FloorParquet || got.Cost.RecommendedCost != 9000 {
		t.Fatalf("unexpected analysis: %+v", got)
	}
	if len(got.Assessment.Damages) != 1 || got.Assessment.Damages[0].Severity != models.SeveritySevere {
		t.Fatalf("damages lost: %+v", got.Assessment.Damages)
	}
}

func TestRedisStoreExpiryAndDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t, time.Minute)

	_ = s.Put(ctx, "chat-1", models.Analysis{ID: "a1"})
	mr.FastForward(2 * time.Minute)
	if _, err := s.Get(ctx, "chat-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound after TTL", err)
	}

	_ = s.Put(ctx, "chat-2", models.Analysis{ID: "a2"})
	if err := s.Delete(ctx, "chat-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "chat-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound after delete", err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting a missing session should be a no-op: %v", err)
	}
}

func TestRedisStorePing(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Minute)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

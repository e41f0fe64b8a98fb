// Package session keeps the last analysis per chat session so follow-up requests
// (reports, price changes) can refer to it. Each session holds a single slot that is
// overwritten by the next analysis and expires after a TTL.
package session

import (
	"context"
	"errors"

	"github.com/floorquote/backend/internal/models"
)

var ErrNotFound = errors.New("session has no analysis")

type Store interface {
	Get(ctx context.Context, sessionID string) (models.Analysis, error)
	Put(ctx context.Context, sessionID string, a models.Analysis) error
	Delete(ctx context.Context, sessionID string) error
}

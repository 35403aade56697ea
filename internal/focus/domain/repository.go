package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists finalized sessions. Sessions are immutable once saved.
type Repository interface {
	Save(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)
	// FindByUserBetween returns sessions that started in [from, to), oldest first.
	FindByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Session, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Session, error)
}

package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/progression/domain"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/database"
)

// SQLBadgeRepository implements domain.BadgeRepository. Rows are never
// updated or deleted.
type SQLBadgeRepository struct {
	conn database.Connection
}

// NewSQLBadgeRepository creates a new badge repository.
func NewSQLBadgeRepository(conn database.Connection) *SQLBadgeRepository {
	return &SQLBadgeRepository{conn: conn}
}

// FindEarned lists a user's badges in the order they were earned.
func (r *SQLBadgeRepository) FindEarned(ctx context.Context, userID uuid.UUID) ([]domain.EarnedBadge, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT badge_id, earned_at FROM earned_badges WHERE user_id = ? ORDER BY earned_at, badge_id`,
		userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earned []domain.EarnedBadge
	for rows.Next() {
		var id, at string
		if err := rows.Scan(&id, &at); err != nil {
			return nil, err
		}
		earnedAt, err := database.ParseTime(at)
		if err != nil {
			return nil, err
		}
		earned = append(earned, domain.EarnedBadge{BadgeID: domain.BadgeID(id), EarnedAt: earnedAt})
	}
	return earned, rows.Err()
}

// Award records a badge. The first award wins.
func (r *SQLBadgeRepository) Award(ctx context.Context, userID uuid.UUID, id domain.BadgeID, at time.Time) error {
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`INSERT INTO earned_badges (user_id, badge_id, earned_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, badge_id) DO NOTHING`,
		userID.String(), string(id), database.FormatTime(at))
	if err != nil {
		return fmt.Errorf("award badge %s: %w", id, err)
	}
	return nil
}

package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/progression/domain"
	sharedDomain "github.com/starfocus/starfocus/internal/shared/domain"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/database"
)

// SQLStreakRepository implements domain.StreakRepository.
type SQLStreakRepository struct {
	conn database.Connection
}

// NewSQLStreakRepository creates a new streak repository.
func NewSQLStreakRepository(conn database.Connection) *SQLStreakRepository {
	return &SQLStreakRepository{conn: conn}
}

// Find returns the user's streak, or the initial state if none is stored.
func (r *SQLStreakRepository) Find(ctx context.Context, userID uuid.UUID) (domain.State, error) {
	var (
		state    domain.State
		lastDate sql.NullString
	)
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT current_streak, longest_streak, freeze_tokens, freeze_tokens_used, last_focus_date
		FROM streaks WHERE user_id = ?`, userID.String()).
		Scan(&state.CurrentStreak, &state.LongestStreak, &state.FreezeTokens, &state.FreezeTokensUsed, &lastDate)
	if database.IsNoRows(err) {
		return domain.State{}, nil
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("load streak for %s: %w", userID, err)
	}
	if lastDate.Valid && lastDate.String != "" {
		day, err := sharedDomain.ParseDay(lastDate.String)
		if err != nil {
			return domain.State{}, err
		}
		state.LastFocusDate = day
	}
	return state, nil
}

// Save stores the user's streak.
func (r *SQLStreakRepository) Save(ctx context.Context, userID uuid.UUID, state domain.State, at time.Time) error {
	var lastDate any
	if !state.LastFocusDate.IsZero() {
		lastDate = state.LastFocusDate.String()
	}
	_, err := database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`INSERT INTO streaks (user_id, current_streak, longest_streak, freeze_tokens, freeze_tokens_used, last_focus_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			freeze_tokens = excluded.freeze_tokens,
			freeze_tokens_used = excluded.freeze_tokens_used,
			last_focus_date = excluded.last_focus_date,
			updated_at = excluded.updated_at`,
		userID.String(),
		state.CurrentStreak,
		state.LongestStreak,
		state.FreezeTokens,
		state.FreezeTokensUsed,
		lastDate,
		database.FormatTime(at),
	)
	if err != nil {
		return fmt.Errorf("save streak for %s: %w", userID, err)
	}
	return nil
}

package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/starfocus/starfocus/internal/focus/domain"
	"github.com/starfocus/starfocus/internal/productivity/domain/value_objects"
	"github.com/starfocus/starfocus/internal/shared/infrastructure/database"
)

var ErrSessionNotFinalized = errors.New("only finalized sessions can be stored")

// SQLSessionRepository implements domain.Repository on SQLite or PostgreSQL.
type SQLSessionRepository struct {
	conn database.Connection
}

// NewSQLSessionRepository creates a new session repository.
func NewSQLSessionRepository(conn database.Connection) *SQLSessionRepository {
	return &SQLSessionRepository{conn: conn}
}

const sessionColumns = `id, user_id, task_id, task_zone, task_work_type, started_at, ended_at,
	deep_work_minutes, app_switches, impulse_opens, raw_score, adjusted_score, multipliers, created_at`

// Save inserts a finalized session. Saving the same session twice is a no-op.
func (r *SQLSessionRepository) Save(ctx context.Context, s *domain.Session) error {
	score, ok := s.Score()
	if !ok || s.EndedAt() == nil {
		return ErrSessionNotFinalized
	}
	multipliers, err := json.Marshal(score.Multipliers)
	if err != nil {
		return fmt.Errorf("encode multipliers: %w", err)
	}
	if score.Multipliers == nil {
		multipliers = []byte("[]")
	}

	var taskID, zone, workType any
	if lt := s.LinkedTask(); lt != nil {
		taskID = lt.TaskID.String()
		zone = lt.Zone.String()
		workType = lt.WorkType.String()
	}

	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`INSERT INTO focus_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		s.ID().String(),
		s.UserID().String(),
		taskID,
		zone,
		workType,
		database.FormatTime(s.StartedAt()),
		database.FormatTime(*s.EndedAt()),
		s.DeepWorkMinutes(*s.EndedAt()),
		s.AppSwitches(),
		s.ImpulseOpens(),
		score.RawScore,
		score.AdjustedScore,
		string(multipliers),
		database.FormatTime(s.CreatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save focus session %s: %w", s.ID(), err)
	}
	return nil
}

// FindByID retrieves a session.
func (r *SQLSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM focus_sessions WHERE id = ?`, id.String())
	s, err := scanSession(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrSessionNotFound
	}
	return s, err
}

// FindByUserBetween returns sessions started in [from, to), oldest first.
func (r *SQLSessionRepository) FindByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Session, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM focus_sessions
		WHERE user_id = ? AND started_at >= ? AND started_at < ?
		ORDER BY started_at, id`,
		userID.String(), database.FormatTime(from), database.FormatTime(to))
}

// FindByUser returns every session of a user, oldest first.
func (r *SQLSessionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Session, error) {
	return r.list(ctx,
		`SELECT `+sessionColumns+` FROM focus_sessions WHERE user_id = ? ORDER BY started_at, id`,
		userID.String())
}

func (r *SQLSessionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row database.Row) (*domain.Session, error) {
	var (
		id, userID                    string
		taskID, zone, workType        sql.NullString
		startedAt, endedAt, createdAt string
		deepMinutes, switches, opens  int
		rawScore, adjustedScore       float64
		multipliers                   string
	)
	if err := row.Scan(&id, &userID, &taskID, &zone, &workType, &startedAt, &endedAt,
		&deepMinutes, &switches, &opens, &rawScore, &adjustedScore, &multipliers, &createdAt); err != nil {
		return nil, err
	}

	sessionID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", id, err)
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	var linked *domain.LinkedTask
	if taskID.Valid {
		tid, err := uuid.Parse(taskID.String)
		if err != nil {
			return nil, fmt.Errorf("invalid task id %q: %w", taskID.String, err)
		}
		linked = &domain.LinkedTask{
			TaskID:   tid,
			Zone:     value_objects.Zone(zone.String),
			WorkType: value_objects.ParseWorkType(workType.String),
		}
	}

	started, err := database.ParseTime(startedAt)
	if err != nil {
		return nil, err
	}
	ended, err := database.ParseTime(endedAt)
	if err != nil {
		return nil, err
	}
	created, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}

	score := domain.FocusScore{RawScore: rawScore, AdjustedScore: adjustedScore}
	if err := json.Unmarshal([]byte(multipliers), &score.Multipliers); err != nil {
		return nil, fmt.Errorf("decode multipliers for session %s: %w", id, err)
	}

	return domain.RehydrateSession(sessionID, owner, linked, started, ended,
		deepMinutes, switches, opens, score, created), nil
}

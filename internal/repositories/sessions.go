package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/EnesGoktekin/detective-ai/internal/errors"
	"github.com/EnesGoktekin/detective-ai/internal/models"
	"github.com/EnesGoktekin/detective-ai/internal/sqlite"
)

var (
	ErrSessionNotFound        = errors.NewSentinel("session not found")
	ErrVersionConflict        = errors.NewSentinel("session was modified concurrently")
	ErrUnknownStartLocation   = errors.NewSentinel("start location is not part of the case")
	ErrSessionAlreadyResolved = errors.NewSentinel("session is already solved")
)

// SessionRepository persists per-player investigation state. Progress is a
// full-replace JSON document; the version column makes stale writers fail with
// ErrVersionConflict instead of silently clobbering a concurrent turn.
type SessionRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewSessionRepository(dbs *sqlite.Database, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{
		dbs:    dbs,
		logger: logger.With("source", "SessionRepository"),
	}
}

type sessionRow struct {
	ID        string    `db:"id"`
	CaseID    string    `db:"case_id"`
	UserID    []byte    `db:"user_id"`
	Progress  string    `db:"progress"`
	Version   int64     `db:"version"`
	Solved    bool      `db:"solved"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row *sessionRow) toSession() (*models.Session, error) {
	var progress models.Progress
	if err := json.Unmarshal([]byte(row.Progress), &progress); err != nil {
		return nil, errors.Wrap(err, "unmarshal progress", slog.String("session_id", row.ID))
	}
	return &models.Session{
		ID:        row.ID,
		CaseID:    row.CaseID,
		UserID:    row.UserID,
		Progress:  progress,
		Version:   row.Version,
		Solved:    row.Solved,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Create builds the initial progress record for a new session. The starting
// location is validated against the case's location graph before anything is
// written.
func (r *SessionRepository) Create(
	ctx context.Context,
	caseID string,
	userID []byte,
	startLocationID string,
	locations []models.Location,
) (*models.Session, error) {
	found := false
	for i := range locations {
		if locations[i].ID == startLocationID {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Wrap(ErrUnknownStartLocation, "validate start location",
			slog.String("case_id", caseID), slog.String("start_location_id", startLocationID))
	}

	progress := models.NewProgress(startLocationID)
	marshalled, err := json.Marshal(progress)
	if err != nil {
		return nil, errors.Wrap(err, "marshal progress")
	}

	sessionID := uuid.NewString()
	stmt := `INSERT INTO game_sessions (id, case_id, user_id, progress) VALUES (?, ?, ?, ?)`
	if _, err = r.dbs.ReadWrite.ExecContext(ctx, stmt, sessionID, caseID, userID, string(marshalled)); err != nil {
		return nil, errors.Wrap(err, "insert session", slog.String("case_id", caseID))
	}

	return r.Get(ctx, sessionID)
}

// Get reads a session by id. Returns ErrSessionNotFound when absent.
func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	var row sessionRow
	stmt := `SELECT id, case_id, user_id, progress, version, solved, created_at, updated_at
FROM game_sessions
WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &row, stmt, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrSessionNotFound, "read session", slog.String("session_id", sessionID))
		}
		return nil, errors.Wrap(err, "read session", slog.String("session_id", sessionID))
	}
	return row.toSession()
}

// SaveProgress replaces the session's progress document. The expectedVersion
// must match the version read before the modification; a mismatch means a
// concurrent turn won the race and the caller gets ErrVersionConflict.
func (r *SessionRepository) SaveProgress(
	ctx context.Context,
	sessionID string,
	progress models.Progress,
	expectedVersion int64,
) error {
	marshalled, err := json.Marshal(progress)
	if err != nil {
		return errors.Wrap(err, "marshal progress", slog.String("session_id", sessionID))
	}

	stmt := `UPDATE game_sessions
SET progress   = ?,
    version    = version + 1,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
  AND version = ?`
	result, err := r.dbs.ReadWrite.ExecContext(ctx, stmt, string(marshalled), sessionID, expectedVersion)
	if err != nil {
		return errors.Wrap(err, "update session progress", slog.String("session_id", sessionID))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected", slog.String("session_id", sessionID))
	}
	if affected == 0 {
		// Either the session is gone or another writer bumped the version.
		if _, err = r.Get(ctx, sessionID); err != nil {
			return err
		}
		return errors.Wrap(ErrVersionConflict, "save progress",
			slog.String("session_id", sessionID), slog.Int64("expected_version", expectedVersion))
	}
	return nil
}

// Delete removes a session and returns the number of deleted rows. Zero means
// the session was already gone; that is not an error so callers can tell
// already-deleted apart from storage failure.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) (int64, error) {
	result, err := r.dbs.ReadWrite.ExecContext(ctx, `DELETE FROM game_sessions WHERE id = ?`, sessionID)
	if err != nil {
		return 0, errors.Wrap(err, "delete session", slog.String("session_id", sessionID))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected", slog.String("session_id", sessionID))
	}
	return affected, nil
}

// FindLatest returns the most recently updated unsolved session for the given
// case and player. Session creation uses it to implement resume-vs-new-game.
func (r *SessionRepository) FindLatest(ctx context.Context, caseID string, userID []byte) (*models.Session, error) {
	var row sessionRow
	// IS instead of = so a nil userID matches the NULL user_id of anonymous rows.
	stmt := `SELECT id, case_id, user_id, progress, version, solved, created_at, updated_at
FROM game_sessions
WHERE case_id = ?
  AND user_id IS ?
  AND solved = 0
ORDER BY updated_at DESC, created_at DESC
LIMIT 1`
	if err := r.dbs.ReadOnly.GetContext(ctx, &row, stmt, caseID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrSessionNotFound, "find latest session", slog.String("case_id", caseID))
		}
		return nil, errors.Wrap(err, "find latest session", slog.String("case_id", caseID))
	}
	return row.toSession()
}

// MarkSolved flags the session as solved so it no longer resumes.
func (r *SessionRepository) MarkSolved(ctx context.Context, sessionID string) error {
	result, err := r.dbs.ReadWrite.ExecContext(ctx,
		`UPDATE game_sessions SET solved = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, sessionID)
	if err != nil {
		return errors.Wrap(err, "mark session solved", slog.String("session_id", sessionID))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected", slog.String("session_id", sessionID))
	}
	if affected == 0 {
		return errors.Wrap(ErrSessionNotFound, "mark session solved", slog.String("session_id", sessionID))
	}
	return nil
}

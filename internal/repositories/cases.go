package repositories

import (
	"database/sql"
	"encoding/json"
	"log/slog"

	"context"

	"github.com/EnesGoktekin/detective-ai/internal/errors"
	"github.com/EnesGoktekin/detective-ai/internal/models"
	"github.com/EnesGoktekin/detective-ai/internal/sqlite"
)

var ErrCaseNotFound = errors.NewSentinel("case not found")

// CaseRepository reads the immutable record sets for cases. It only ever
// touches the read-only connection: keeping this type free of write methods is
// what guarantees the puzzle's ground truth cannot be altered at runtime.
type CaseRepository struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewCaseRepository(dbs *sqlite.Database, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		dbs:    dbs,
		logger: logger.With("source", "CaseRepository"),
	}
}

// GetSummaries lists all cases for the case-selection screen.
func (r *CaseRepository) GetSummaries(ctx context.Context) ([]models.CaseSummary, error) {
	var summaries []models.CaseSummary
	stmt := `SELECT id, case_number, title, synopsis FROM cases ORDER BY case_number`
	if err := r.dbs.ReadOnly.SelectContext(ctx, &summaries, stmt); err != nil {
		return nil, errors.Wrap(err, "select case summaries")
	}
	return summaries, nil
}

// GetInitialData returns the public view of a case: the parts that are safe to
// send to the player and the model before anything is unlocked. Evidence comes
// back as id+name shells without descriptions.
func (r *CaseRepository) GetInitialData(ctx context.Context, caseID string) (*models.InitialData, error) {
	c, err := r.getDocument(ctx, caseID)
	if err != nil {
		return nil, err
	}

	shells := make([]models.EvidenceShell, 0, len(c.EvidenceTruth))
	for _, d := range c.EvidenceTruth {
		shells = append(shells, models.EvidenceShell{ID: d.ID, Name: d.Name})
	}

	return &models.InitialData{
		CaseID:          c.ID,
		Title:           c.Title,
		Synopsis:        c.Synopsis,
		Victims:         c.Victims,
		Suspects:        c.Suspects,
		StartLocationID: c.StartLocationID,
		EvidenceShells:  shells,
	}, nil
}

// GetImmutableRecords returns the secret half of a case: disclosure truth sets,
// the location graph, and the correct accusation. Callers must never place any
// of this wholesale into a model payload.
func (r *CaseRepository) GetImmutableRecords(ctx context.Context, caseID string) (*models.ImmutableRecords, error) {
	c, err := r.getDocument(ctx, caseID)
	if err != nil {
		return nil, err
	}

	return &models.ImmutableRecords{
		EvidenceTruth:     c.EvidenceTruth,
		SuspectTruth:      c.SuspectTruth,
		Locations:         c.Locations,
		StartLocationID:   c.StartLocationID,
		CorrectAccusation: c.CorrectAccusation,
	}, nil
}

func (r *CaseRepository) getDocument(ctx context.Context, caseID string) (*models.Case, error) {
	var document string
	stmt := `SELECT document FROM cases WHERE id = ?`
	if err := r.dbs.ReadOnly.GetContext(ctx, &document, stmt, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrCaseNotFound, "read case document", slog.String("case_id", caseID))
		}
		return nil, errors.Wrap(err, "read case document", slog.String("case_id", caseID))
	}

	var c models.Case
	if err := json.Unmarshal([]byte(document), &c); err != nil {
		return nil, errors.Wrap(err, "unmarshal case document", slog.String("case_id", caseID))
	}
	return &c, nil
}

// CaseWriter upserts authored case documents. It exists for the authoring CLI
// and is deliberately a separate type so that nothing serving player traffic
// can reach a write method.
type CaseWriter struct {
	dbs    *sqlite.Database
	logger *slog.Logger
}

func NewCaseWriter(dbs *sqlite.Database, logger *slog.Logger) *CaseWriter {
	return &CaseWriter{
		dbs:    dbs,
		logger: logger.With("source", "CaseWriter"),
	}
}

// Upsert inserts the case or replaces an existing one with the same id.
func (w *CaseWriter) Upsert(ctx context.Context, c *models.Case) error {
	document, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal case document", slog.String("case_id", c.ID))
	}

	stmt := `INSERT INTO cases (id, case_number, title, synopsis, document)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET case_number = excluded.case_number,
                               title       = excluded.title,
                               synopsis    = excluded.synopsis,
                               document    = excluded.document`
	if _, err = w.dbs.ReadWrite.ExecContext(ctx, stmt, c.ID, c.CaseNumber, c.Title, c.Synopsis, string(document)); err != nil {
		return errors.Wrap(err, "upsert case", slog.String("case_id", c.ID))
	}
	return nil
}

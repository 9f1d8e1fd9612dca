package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/EnesGoktekin/detective-ai/internal/contexthelpers"
	"github.com/EnesGoktekin/detective-ai/internal/errors"
	"github.com/EnesGoktekin/detective-ai/internal/models"
	"github.com/EnesGoktekin/detective-ai/internal/repositories"
)

type sessionResponse struct {
	SessionID string          `json:"sessionId"`
	CaseID    string          `json:"caseId"`
	Progress  models.Progress `json:"progress"`
	IsNew     bool            `json:"isNew"`
}

// createSession resumes the player's latest unsolved session for the case, or
// starts a fresh one at the case's starting location.
func (app *application) createSession(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CaseID string `json:"caseId"`
	}
	if !app.readJSON(w, r, &input) {
		return
	}
	if input.CaseID == "" {
		app.errorResponse(w, r, http.StatusBadRequest, "caseId is required")
		return
	}

	playerID := contexthelpers.PlayerID(r.Context())

	if existing, err := app.sessions.FindLatest(r.Context(), input.CaseID, playerID); err == nil {
		app.writeJSON(w, r, http.StatusOK, sessionResponse{
			SessionID: existing.ID,
			CaseID:    existing.CaseID,
			Progress:  existing.Progress,
			IsNew:     false,
		})
		return
	} else if !errors.Is(err, repositories.ErrSessionNotFound) {
		app.serverError(w, r, err)
		return
	}

	records, err := app.cases.GetImmutableRecords(r.Context(), input.CaseID)
	if err != nil {
		if errors.Is(err, repositories.ErrCaseNotFound) {
			app.notFound(w, r, "case not found")
			return
		}
		app.serverError(w, r, err)
		return
	}

	session, err := app.sessions.Create(r.Context(), input.CaseID, playerID, records.StartLocationID, records.Locations)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, sessionResponse{
		SessionID: session.ID,
		CaseID:    session.CaseID,
		Progress:  session.Progress,
		IsNew:     true,
	})
}

// latestSession reports the player's most recent unsolved session for a case,
// so a client can offer resume before committing to it.
func (app *application) latestSession(w http.ResponseWriter, r *http.Request) {
	caseID := r.URL.Query().Get("caseId")
	if caseID == "" {
		app.errorResponse(w, r, http.StatusBadRequest, "caseId query parameter is required")
		return
	}

	playerID := contexthelpers.PlayerID(r.Context())
	session, err := app.sessions.FindLatest(r.Context(), caseID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			app.writeJSON(w, r, http.StatusOK, map[string]any{"latestSessionId": nil})
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]any{"latestSessionId": session.ID})
}

func (app *application) deleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	// Session ids are UUIDs; anything else is a malformed request rather than
	// a missing resource.
	if _, err := uuid.Parse(sessionID); err != nil {
		app.errorResponse(w, r, http.StatusBadRequest, "sessionID must be a UUID")
		return
	}

	deleted, err := app.sessions.Delete(r.Context(), sessionID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if deleted == 0 {
		app.notFound(w, r, "session not found")
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{
		"deletedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

package main

import (
	"log/slog"
	"net/http"

	"github.com/EnesGoktekin/detective-ai/internal/logging"
)

// chat runs one investigation turn.
func (app *application) chat(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SessionID string `json:"sessionId"`
		CaseID    string `json:"caseId"`
		Message   string `json:"message"`
	}
	if !app.readJSON(w, r, &input) {
		return
	}
	if input.SessionID == "" || input.CaseID == "" {
		app.errorResponse(w, r, http.StatusBadRequest, "sessionId and caseId are required")
		return
	}

	// Every log line under this turn carries the ids.
	ctx := logging.WithAttrs(r.Context(),
		slog.String("session_id", input.SessionID), slog.String("case_id", input.CaseID))
	r = r.WithContext(ctx)

	result, err := app.orchestrator.HandleTurn(ctx, input.SessionID, input.CaseID, input.Message)
	if err != nil {
		app.handleTurnError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

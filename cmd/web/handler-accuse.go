package main

import (
	"net/http"
)

// accuse resolves the endgame: the player names a suspect and the piece of
// evidence that convicts them.
func (app *application) accuse(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")

	var input struct {
		SuspectID  string `json:"suspectId"`
		EvidenceID string `json:"evidenceId"`
	}
	if !app.readJSON(w, r, &input) {
		return
	}

	correct, err := app.orchestrator.Accuse(r.Context(), sessionID, input.SuspectID, input.EvidenceID)
	if err != nil {
		app.handleTurnError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]bool{
		"correct": correct,
		"solved":  correct,
	})
}

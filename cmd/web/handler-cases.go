package main

import (
	"net/http"

	"github.com/EnesGoktekin/detective-ai/internal/errors"
	"github.com/EnesGoktekin/detective-ai/internal/models"
	"github.com/EnesGoktekin/detective-ai/internal/repositories"
)

func (app *application) listCases(w http.ResponseWriter, r *http.Request) {
	summaries, err := app.cases.GetSummaries(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if summaries == nil {
		summaries = []models.CaseSummary{}
	}
	app.writeJSON(w, r, http.StatusOK, summaries)
}

// getCase returns the public view of a case. Truth records and the correct
// accusation are never part of this response.
func (app *application) getCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	initial, err := app.cases.GetInitialData(r.Context(), caseID)
	if err != nil {
		if errors.Is(err, repositories.ErrCaseNotFound) {
			app.notFound(w, r, "case not found")
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, initial)
}

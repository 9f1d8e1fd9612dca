package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	// The player-identity middleware needs the scs session loaded first.
	session := alice.New(app.sessionManager.LoadAndSave, app.playerIdentity)

	mux.HandleFunc("GET /api/healthy", app.healthy)

	mux.Handle("GET /api/cases", session.ThenFunc(app.listCases))
	mux.Handle("GET /api/cases/{caseID}", session.ThenFunc(app.getCase))

	mux.Handle("POST /api/sessions", session.ThenFunc(app.createSession))
	mux.Handle("GET /api/sessions/latest", session.ThenFunc(app.latestSession))
	mux.Handle("DELETE /api/sessions/{sessionID}", session.ThenFunc(app.deleteSession))
	mux.Handle("POST /api/sessions/{sessionID}/accuse", session.ThenFunc(app.accuse))

	mux.Handle("POST /api/chat", session.ThenFunc(app.chat))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}

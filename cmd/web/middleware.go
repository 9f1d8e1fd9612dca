package main

import (
	"fmt"
	"net/http"

	"github.com/EnesGoktekin/detective-ai/internal/contexthelpers"
	"github.com/EnesGoktekin/detective-ai/internal/random"
)

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			proto  = r.Proto
			method = r.Method
			uri    = r.URL.RequestURI()
		)

		app.logger.Debug("received request", "proto", proto, "method", method, "uri", uri)

		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

const playerIDSessionKey = "playerID"

// playerIdentity binds an anonymous but stable player identity to the request.
// The identity lives in the scs cookie session; a first-time visitor gets a
// fresh random one. It scopes which game sessions a browser can resume.
func (app *application) playerIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerID := app.sessionManager.GetBytes(r.Context(), playerIDSessionKey)
		if playerID == nil {
			generated, err := random.Letters(32)
			if err != nil {
				app.serverError(w, r, err)
				return
			}
			playerID = []byte(generated)
			app.sessionManager.Put(r.Context(), playerIDSessionKey, playerID)
		}

		next.ServeHTTP(w, contexthelpers.SetPlayerID(r, playerID))
	})
}

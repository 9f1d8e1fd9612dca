package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/EnesGoktekin/detective-ai/internal/errors"
	"github.com/EnesGoktekin/detective-ai/internal/game"
	"github.com/EnesGoktekin/detective-ai/internal/repositories"
	"github.com/EnesGoktekin/detective-ai/internal/turns"
)

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// readJSON decodes the request body into dst, rejecting unknown fields and
// trailing garbage.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		app.errorResponse(w, r, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if decoder.More() {
		app.errorResponse(w, r, http.StatusBadRequest, "unexpected content after JSON body")
		return false
	}
	return true
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, map[string]string{"error": message})
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	app.errorResponse(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusNotFound, message)
}

// handleTurnError translates the orchestrator's error taxonomy to HTTP. The
// rate-limit branch carries both the standard Retry-After header and the
// seconds in the body; the model-failure branch answers with fixed in-character
// text so a flaky upstream never leaks stack traces to players.
func (app *application) handleTurnError(w http.ResponseWriter, r *http.Request, err error) {
	var rateLimited *turns.RateLimitError
	switch {
	case errors.As(err, &rateLimited):
		seconds := int(rateLimited.RetryAfter.Seconds()) + 1
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		app.writeJSON(w, r, http.StatusTooManyRequests, map[string]any{
			"error":             "you are sending messages too quickly",
			"retryAfterSeconds": seconds,
		})
	case errors.Is(err, turns.ErrMessageTooShort):
		app.errorResponse(w, r, http.StatusBadRequest, "message is too short")
	case errors.Is(err, turns.ErrMessageNoLetters):
		app.errorResponse(w, r, http.StatusBadRequest, "message must contain letters")
	case errors.Is(err, turns.ErrSessionCaseMismatch):
		app.errorResponse(w, r, http.StatusBadRequest, "session does not belong to this case")
	case errors.Is(err, turns.ErrMissingAccusation):
		app.errorResponse(w, r, http.StatusBadRequest, "accusation needs both a suspect and a piece of evidence")
	case errors.Is(err, repositories.ErrSessionNotFound):
		app.notFound(w, r, "session not found")
	case errors.Is(err, repositories.ErrCaseNotFound):
		app.notFound(w, r, "case not found")
	case errors.Is(err, turns.ErrUpstreamModel):
		app.logger.LogAttrs(r.Context(), slog.LevelError, "upstream model failure", errors.SlogError(err))
		app.errorResponse(w, r, http.StatusInternalServerError, game.BadSignalMessage)
	default:
		app.serverError(w, r, fmt.Errorf("handle turn: %w", err))
	}
}

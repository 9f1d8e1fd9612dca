package contexthelpers

import (
	"context"
	"net/http"
)

func SetPlayerID(r *http.Request, playerID []byte) *http.Request {
	ctx := context.WithValue(r.Context(), playerIDContextKey, playerID)
	return r.WithContext(ctx)
}

package contexthelpers

import (
	"context"
)

// PlayerID returns the player identity bound to the request context, or nil
// for an anonymous request.
func PlayerID(ctx context.Context) []byte {
	playerID, ok := ctx.Value(playerIDContextKey).([]byte)
	if !ok {
		return nil
	}

	return playerID
}

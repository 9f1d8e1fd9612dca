package game_test

import (
	"testing"

	"github.com/EnesGoktekin/detective-ai/internal/game"
	"github.com/EnesGoktekin/detective-ai/internal/models"
	"github.com/stretchr/testify/require"
)

func TestResolveIntent(t *testing.T) {
	t.Parallel()
	records := manorRecords()

	tests := []struct {
		name            string
		message         string
		currentLocation string
		want            game.Intent
	}{
		{
			name:            "inspect by keyword",
			message:         "check the desk",
			currentLocation: "study",
			want:            game.Intent{Action: game.ActionInspect, TargetID: "desk"},
		},
		{
			name:            "inspect by synonym",
			message:         "open the drawers carefully",
			currentLocation: "study",
			want:            game.Intent{Action: game.ActionInspect, TargetID: "desk"},
		},
		{
			name:            "inspect is case-insensitive",
			message:         "Look at the FIREPLACE",
			currentLocation: "study",
			want:            game.Intent{Action: game.ActionInspect, TargetID: "fireplace"},
		},
		{
			name:            "whole word only, desktop is not desk",
			message:         "I stare at the desktop wallpaper",
			currentLocation: "study",
			want:            game.Intent{Action: game.ActionChat},
		},
		{
			name:            "interactables of other locations don't resolve here",
			message:         "examine the knife block",
			currentLocation: "study",
			want:            game.Intent{Action: game.ActionChat},
		},
		{
			name:            "multi-word keyword",
			message:         "look at the knife block",
			currentLocation: "kitchen",
			want:            game.Intent{Action: game.ActionInspect, TargetID: "knife-block"},
		},
		{
			name:            "current location interactable wins over movement",
			message:         "go to the desk",
			currentLocation: "study",
			want:            game.Intent{Action: game.ActionInspect, TargetID: "desk"},
		},
		{
			name:            "move by phrase",
			message:         "go to the kitchen",
			currentLocation: "study",
			want:            game.Intent{Action: game.ActionMove, TargetID: "kitchen"},
		},
		{
			name:            "move resolves unknown locations too",
			message:         "let's walk to the garden",
			currentLocation: "study",
			want:            game.Intent{Action: game.ActionMove, TargetID: "garden"},
		},
		{
			name:            "location keyword without move cue is chat",
			message:         "the kitchen smells odd, doesn't it",
			currentLocation: "garden",
			want:            game.Intent{Action: game.ActionChat},
		},
		{
			name:            "talk cue",
			message:         "I want to interrogate the valet",
			currentLocation: "study",
			want:            game.Intent{Action: game.ActionTalk, TargetID: game.TalkTarget},
		},
		{
			name:            "plain chat",
			message:         "what do you make of all this?",
			currentLocation: "study",
			want:            game.Intent{Action: game.ActionChat},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			progress := models.NewProgress(tt.currentLocation)
			got := game.ResolveIntent(tt.message, records.Locations, &progress)
			require.Equal(t, tt.want, got)
		})
	}
}

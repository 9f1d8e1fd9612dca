package game_test

import (
	"strings"
	"testing"

	"github.com/EnesGoktekin/detective-ai/internal/game"
	"github.com/EnesGoktekin/detective-ai/internal/models"
	"github.com/stretchr/testify/require"
)

func TestRenderContext_NewDiscovery(t *testing.T) {
	t.Parallel()
	records := manorRecords()
	initial := manorInitialData()
	progress := models.NewProgress("study")

	result := game.ApplyIntent(game.Intent{Action: game.ActionInspect, TargetID: "desk"}, progress, records)
	contextBlock := game.RenderContext(&result, records, initial)

	require.Contains(t, contextBlock, "Current location: The Study")
	require.Contains(t, contextBlock, "James Crane")

	// Fresh discoveries carry their verbatim description in the delimited section.
	require.Contains(t, contextBlock, "NEWLY DISCOVERED THIS TURN")
	require.Contains(t, contextBlock, "A half-burned letter demanding repayment of a gambling debt, signed with the initials J.C.")
	require.Contains(t, contextBlock, "Crane's Debts")
}

func TestRenderContext_AccumulatedContinuity(t *testing.T) {
	t.Parallel()
	records := manorRecords()
	initial := manorInitialData()
	progress := models.NewProgress("study")

	first := game.ApplyIntent(game.Intent{Action: game.ActionInspect, TargetID: "desk"}, progress, records)
	second := game.ApplyIntent(game.Intent{Action: game.ActionInspect, TargetID: "fireplace"}, first.Progress, records)
	contextBlock := game.RenderContext(&second, records, initial)

	// Previously unlocked entries appear in the accumulated section, fresh ones
	// only in the newly-discovered section.
	require.Contains(t, contextBlock, "Evidence discovered so far")
	require.Contains(t, contextBlock, "Torn Letter")
	accumulated := contextBlock[:strings.Index(contextBlock, "NEWLY DISCOVERED")]
	require.NotContains(t, accumulated, "Burnt Ledger Page")
	require.Contains(t, contextBlock, "A ledger page showing payments routed through the kitchen accounts.")
}

func TestRenderContext_NeverLeaksAnswerOrLockedTruth(t *testing.T) {
	t.Parallel()
	records := manorRecords()
	initial := manorInitialData()
	progress := models.NewProgress("study")

	// A red-herring inspection: nothing unlocked, nothing revealed.
	result := game.ApplyIntent(game.Intent{Action: game.ActionInspect, TargetID: "bookshelf"}, progress, records)
	contextBlock := game.RenderContext(&result, records, initial)

	require.NotContains(t, contextBlock, "NEWLY DISCOVERED")
	// Locked truth descriptions must not appear anywhere.
	require.NotContains(t, contextBlock, "half-burned letter")
	require.NotContains(t, contextBlock, "Muddy Boot Print")
	// The accusation never enters any model payload in any form.
	require.NotContains(t, contextBlock, records.CorrectAccusation.EvidenceID)
}

func TestRenderContext_LocationChangeNote(t *testing.T) {
	t.Parallel()
	records := manorRecords()
	initial := manorInitialData()
	progress := models.NewProgress("study")
	progress.KnownLocations = []string{"study", "kitchen"}

	result := game.ApplyIntent(game.Intent{Action: game.ActionMove, TargetID: "kitchen"}, progress, records)
	contextBlock := game.RenderContext(&result, records, initial)

	require.Contains(t, contextBlock, "Current location: The Kitchen")
	require.Contains(t, contextBlock, "just arrived")
	require.Contains(t, contextBlock, "Copper pots hang in rows.")
}

package turns_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	_ "embed"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EnesGoktekin/detective-ai/internal/game"
	"github.com/EnesGoktekin/detective-ai/internal/models"
	"github.com/EnesGoktekin/detective-ai/internal/ratelimit"
	"github.com/EnesGoktekin/detective-ai/internal/repositories"
	"github.com/EnesGoktekin/detective-ai/internal/sqlite"
	"github.com/EnesGoktekin/detective-ai/internal/testhelpers"
	"github.com/EnesGoktekin/detective-ai/internal/turns"
)

//go:embed testdata/fixtures.sql
var testFixtures string

// fakeCompleter replays canned replies and records every call it receives.
type fakeCompleter struct {
	mu      sync.Mutex
	replies []string
	calls   [][]openai.ChatCompletionMessage
	err     error
}

func (f *fakeCompleter) Complete(_ context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "Noted, detective.", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixture struct {
	orchestrator *turns.Orchestrator
	sessions     *repositories.SessionRepository
	session      *models.Session
}

// newFixture wires an orchestrator against an in-memory database seeded with
// the Blackwood Manor case and one fresh session in the study.
func newFixture(t *testing.T, completer turns.Completer, cooldown time.Duration, cfg turns.Config) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)

	dbs, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	require.NoError(t, err)
	_, err = dbs.ReadWrite.Exec(testFixtures)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, dbs.Close())
	})

	cases := repositories.NewCaseRepository(dbs, logger)
	sessions := repositories.NewSessionRepository(dbs, logger)

	records, err := cases.GetImmutableRecords(ctx, "blackwood-manor")
	require.NoError(t, err)
	session, err := sessions.Create(ctx, "blackwood-manor", nil, records.StartLocationID, records.Locations)
	require.NoError(t, err)

	return &fixture{
		orchestrator: turns.NewOrchestrator(cases, sessions, completer, ratelimit.NewLimiter(cooldown), logger, cfg),
		sessions:     sessions,
		session:      session,
	}
}

func TestHandleTurnValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &fakeCompleter{}, 0, turns.DefaultConfig())
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		wantErr error
	}{
		{name: "empty", message: "   ", wantErr: turns.ErrMessageTooShort},
		{name: "single rune", message: "a", wantErr: turns.ErrMessageTooShort},
		{name: "no letters", message: "123 456!", wantErr: turns.ErrMessageNoLetters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, tt.message)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Nothing invalid reaches the model or the store.
	session, err := f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Empty(t, session.Progress.ChatHistory)
}

func TestHandleTurnUnknownSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &fakeCompleter{}, 0, turns.DefaultConfig())

	_, err := f.orchestrator.HandleTurn(context.Background(), "no-such-session", "blackwood-manor", "look around")
	require.ErrorIs(t, err, repositories.ErrSessionNotFound)
}

func TestHandleTurnCaseMismatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &fakeCompleter{}, 0, turns.DefaultConfig())

	_, err := f.orchestrator.HandleTurn(context.Background(), f.session.ID, "dockside-vanishing", "look around")
	require.ErrorIs(t, err, turns.ErrSessionCaseMismatch)
}

func TestHandleTurnRateLimit(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &fakeCompleter{}, time.Minute, turns.DefaultConfig())
	ctx := context.Background()

	_, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "look around the study")
	require.NoError(t, err)

	_, err = f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "open the curtains")
	var rateLimited *turns.RateLimitError
	require.ErrorAs(t, err, &rateLimited)
	assert.Positive(t, rateLimited.RetryAfter)
}

func TestHandleTurnInspectUnlocksAndPersists(t *testing.T) {
	t.Parallel()
	completer := &fakeCompleter{replies: []string{
		"The drawer sticks, then gives. [TARGET_ID_START]desk[TARGET_ID_END] A torn letter, and worse.",
	}}
	f := newFixture(t, completer, 0, turns.DefaultConfig())
	ctx := context.Background()

	result, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Search the desk drawers.")
	require.NoError(t, err)

	assert.NotContains(t, result.ResponseText, "TARGET_ID")
	assert.ElementsMatch(t, []string{"clue_letter"}, result.UnlockedEvidenceIDs)
	assert.ElementsMatch(t, []string{"crane_debts"}, result.UnlockedSuspectInfoIDs)

	session, err := f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.True(t, session.Progress.HasEvidence("clue_letter"))
	assert.True(t, session.Progress.HasSuspectInfo("crane_debts"))
	assert.Equal(t, 1, session.Progress.TurnCount)
	require.Len(t, session.Progress.ChatHistory, 2)
	assert.Equal(t, models.ChatRoleUser, session.Progress.ChatHistory[0].Role)
	assert.Equal(t, "Search the desk drawers.", session.Progress.ChatHistory[0].Content)
	// The persisted reply is the cleaned text, never the tagged raw.
	assert.NotContains(t, session.Progress.ChatHistory[1].Content, "TARGET_ID")
}

func TestHandleTurnInspectIsIdempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &fakeCompleter{}, 0, turns.DefaultConfig())
	ctx := context.Background()

	result, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Check the desk.")
	require.NoError(t, err)
	assert.NotEmpty(t, result.UnlockedEvidenceIDs)

	result, err = f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Check the desk once more.")
	require.NoError(t, err)
	assert.Empty(t, result.UnlockedEvidenceIDs)
	assert.Empty(t, result.UnlockedSuspectInfoIDs)
}

func TestHandleTurnMoveRequiresKnownLocation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &fakeCompleter{}, 0, turns.DefaultConfig())
	ctx := context.Background()

	// The kitchen is not known yet: the move is refused silently.
	_, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Go to the kitchen.")
	require.NoError(t, err)
	session, err := f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, "study", session.Progress.CurrentLocation)

	// The fireplace discloses the ledger page, which unlocks the kitchen.
	_, err = f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Sift through the ashes in the fireplace.")
	require.NoError(t, err)

	_, err = f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Go to the kitchen.")
	require.NoError(t, err)
	session, err = f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, "kitchen", session.Progress.CurrentLocation)
}

func TestHandleTurnRepeatedMessageNudges(t *testing.T) {
	t.Parallel()
	completer := &fakeCompleter{}
	f := newFixture(t, completer, 0, turns.DefaultConfig())
	ctx := context.Background()

	for range 2 {
		_, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "hello there")
		require.NoError(t, err)
	}
	require.Equal(t, 2, completer.callCount())

	result, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "hello there")
	require.NoError(t, err)
	assert.Equal(t, game.NudgeMessage, result.ResponseText)
	// The nudge is free: no model call and no state change.
	assert.Equal(t, 2, completer.callCount())
	session, err := f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Progress.TurnCount)
}

func TestHandleTurnModelFailure(t *testing.T) {
	t.Parallel()
	completer := &fakeCompleter{err: assert.AnError}
	f := newFixture(t, completer, 0, turns.DefaultConfig())
	ctx := context.Background()

	_, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Check the desk.")
	require.ErrorIs(t, err, turns.ErrUpstreamModel)

	// A failed turn leaves the session untouched.
	session, err := f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Empty(t, session.Progress.ChatHistory)
	assert.Zero(t, session.Progress.TurnCount)
}

func TestHandleTurnRevealedTagsValidated(t *testing.T) {
	t.Parallel()
	completer := &fakeCompleter{replies: []string{
		"I found the boot print myself. [REVEALED_IDS_START]muddy_print, not_a_real_id[REVEALED_IDS_END]",
	}}
	f := newFixture(t, completer, 0, turns.DefaultConfig())
	ctx := context.Background()

	result, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Anything catch your eye?")
	require.NoError(t, err)

	assert.NotContains(t, result.ResponseText, "REVEALED_IDS")
	// The real id is honored, the fabricated one discarded.
	assert.ElementsMatch(t, []string{"muddy_print"}, result.UnlockedEvidenceIDs)
	session, err := f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.True(t, session.Progress.HasEvidence("muddy_print"))
	assert.False(t, session.Progress.HasEvidence("not_a_real_id"))
}

func TestHandleTurnSummarizes(t *testing.T) {
	t.Parallel()
	completer := &fakeCompleter{replies: []string{
		"First reply.",
		"Second reply.",
		"The detective searched the study and found a torn letter.",
	}}
	cfg := turns.DefaultConfig()
	cfg.ShortTermWindow = 2
	cfg.SummarizeEvery = 2
	f := newFixture(t, completer, 0, cfg)
	ctx := context.Background()

	_, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Where should we begin?")
	require.NoError(t, err)
	session, err := f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLongTermSummary, session.Progress.LongTermSummary)

	// The second turn pushes two messages out of the window and triggers the
	// digest refresh.
	_, err = f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Let us look closer.")
	require.NoError(t, err)
	session, err = f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, "The detective searched the study and found a torn letter.", session.Progress.LongTermSummary)
	assert.Len(t, session.Progress.ShortTermMemory, 2)
	assert.Len(t, session.Progress.ChatHistory, 4)
}

func TestHandleTurnSummarizationFailureKeepsDigest(t *testing.T) {
	t.Parallel()
	completer := &fakeCompleter{replies: []string{"First reply.", "Second reply.", ""}}
	cfg := turns.DefaultConfig()
	cfg.ShortTermWindow = 2
	cfg.SummarizeEvery = 2
	f := newFixture(t, completer, 0, cfg)
	ctx := context.Background()

	_, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Where should we begin?")
	require.NoError(t, err)
	_, err = f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, "Let us look closer.")
	require.NoError(t, err)

	session, err := f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLongTermSummary, session.Progress.LongTermSummary)
}

func TestHandleTurnConcurrentTurnsBothPersist(t *testing.T) {
	t.Parallel()
	f := newFixture(t, &fakeCompleter{}, 0, turns.DefaultConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, message := range []string{"Examine the bookshelf.", "What do you think of the widow?"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orchestrator.HandleTurn(ctx, f.session.ID, f.session.CaseID, message)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// The keyed mutex serializes the two turns: neither exchange is lost.
	session, err := f.sessions.Get(ctx, f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Progress.TurnCount)
	assert.Len(t, session.Progress.ChatHistory, 4)
}

func TestAccuse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeCompleter{}, 0, turns.DefaultConfig())
		_, err := f.orchestrator.Accuse(ctx, f.session.ID, "james-crane", "")
		require.ErrorIs(t, err, turns.ErrMissingAccusation)
	})

	t.Run("wrong accusation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeCompleter{}, 0, turns.DefaultConfig())
		correct, err := f.orchestrator.Accuse(ctx, f.session.ID, "tom-hollis", "muddy_print")
		require.NoError(t, err)
		assert.False(t, correct)

		session, err := f.sessions.Get(ctx, f.session.ID)
		require.NoError(t, err)
		assert.False(t, session.Solved)
	})

	t.Run("correct accusation marks solved", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeCompleter{}, 0, turns.DefaultConfig())
		correct, err := f.orchestrator.Accuse(ctx, f.session.ID, "james-crane", "clue_letter")
		require.NoError(t, err)
		assert.True(t, correct)

		session, err := f.sessions.Get(ctx, f.session.ID)
		require.NoError(t, err)
		assert.True(t, session.Solved)
	})

	t.Run("unknown session", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, &fakeCompleter{}, 0, turns.DefaultConfig())
		_, err := f.orchestrator.Accuse(ctx, "no-such-session", "james-crane", "clue_letter")
		require.ErrorIs(t, err, repositories.ErrSessionNotFound)
	})
}

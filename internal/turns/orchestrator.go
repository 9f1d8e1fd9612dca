// Package turns sequences a chat turn: validate, throttle, resolve intent,
// apply the state transition, render the model context, call the model,
// reconcile its reply, and persist. It is the single boundary where internal
// failures get translated for the HTTP layer; no component below it produces
// player-facing text.
package turns

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/EnesGoktekin/detective-ai/internal/errors"
	"github.com/EnesGoktekin/detective-ai/internal/game"
	"github.com/EnesGoktekin/detective-ai/internal/models"
	"github.com/EnesGoktekin/detective-ai/internal/ratelimit"
	"github.com/EnesGoktekin/detective-ai/internal/repositories"
	"github.com/EnesGoktekin/detective-ai/internal/sessionlock"
)

var (
	ErrMessageTooShort     = errors.NewSentinel("message is too short")
	ErrMessageNoLetters    = errors.NewSentinel("message contains no letters")
	ErrSessionCaseMismatch = errors.NewSentinel("session does not belong to the case")
	ErrUpstreamModel       = errors.NewSentinel("model call failed")
	ErrMissingAccusation   = errors.NewSentinel("accusation needs both a suspect and a piece of evidence")
)

// RateLimitError carries the retry hint for a throttled turn.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter.Round(time.Second))
}

// Completer is the language-model collaborator. It is a black-box text
// completion service; the orchestrator never lets it arbitrate game rules.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

type Config struct {
	// ShortTermWindow is the number of chat messages kept in the sliding
	// window sent to the model.
	ShortTermWindow int
	// SummarizeEvery is the number of turns between long-term summary
	// refreshes.
	SummarizeEvery int
	// MinMessageRunes rejects messages below a meaningful length before any
	// model call is spent on them.
	MinMessageRunes int
	// ModelTimeout bounds a single completion call.
	ModelTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ShortTermWindow: 10,
		SummarizeEvery:  10,
		MinMessageRunes: 2,
		ModelTimeout:    30 * time.Second,
	}
}

type Orchestrator struct {
	cases     *repositories.CaseRepository
	sessions  *repositories.SessionRepository
	completer Completer
	limiter   *ratelimit.Limiter
	locks     sessionlock.KeyedMutex
	logger    *slog.Logger
	cfg       Config
}

func NewOrchestrator(
	cases *repositories.CaseRepository,
	sessions *repositories.SessionRepository,
	completer Completer,
	limiter *ratelimit.Limiter,
	logger *slog.Logger,
	cfg Config,
) *Orchestrator {
	return &Orchestrator{
		cases:     cases,
		sessions:  sessions,
		completer: completer,
		limiter:   limiter,
		logger:    logger.With("source", "Orchestrator"),
		cfg:       cfg,
	}
}

// TurnResult is the player-facing outcome of one chat turn.
type TurnResult struct {
	ResponseText           string   `json:"responseText"`
	UnlockedEvidenceIDs    []string `json:"unlockedEvidenceIds"`
	UnlockedSuspectInfoIDs []string `json:"unlockedSuspectInfoIds"`
}

// HandleTurn runs one complete chat turn for a session.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, caseID, message string) (*TurnResult, error) {
	sanitized := strings.TrimSpace(message)
	if err := validateMessage(sanitized, o.cfg.MinMessageRunes); err != nil {
		return nil, err
	}

	if retryAfter, ok := o.limiter.Allow(sessionID); !ok {
		return nil, &RateLimitError{RetryAfter: retryAfter}
	}

	// At most one in-flight turn per session: the whole read-modify-write
	// cycle runs under the session's mutex.
	unlock := o.locks.Lock(sessionID)
	defer unlock()

	session, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CaseID != caseID {
		return nil, errors.Wrap(ErrSessionCaseMismatch, "check session case",
			slog.String("session_id", sessionID), slog.String("case_id", caseID))
	}

	if isRepeatedMessage(session.Progress.ChatHistory, sanitized) {
		// Zero-cost guard against loops: no model call, no state change.
		return &TurnResult{
			ResponseText:           game.NudgeMessage,
			UnlockedEvidenceIDs:    []string{},
			UnlockedSuspectInfoIDs: []string{},
		}, nil
	}

	initial, err := o.cases.GetInitialData(ctx, caseID)
	if err != nil {
		return nil, err
	}
	records, err := o.cases.GetImmutableRecords(ctx, caseID)
	if err != nil {
		return nil, err
	}

	intent := game.ResolveIntent(sanitized, records.Locations, &session.Progress)
	result := game.ApplyIntent(intent, session.Progress, records)
	contextBlock := game.RenderContext(&result, records, initial)

	raw, err := o.complete(ctx, buildTurnMessages(contextBlock, &result.Progress, sanitized))
	if err != nil {
		return nil, errors.Wrap(ErrUpstreamModel, "complete turn", errors.SlogError(err))
	}

	tags, clean := game.ExtractControlTags(raw)
	o.reconcileTags(&result, tags, intent, records)

	progress := o.mergeTurn(ctx, result.Progress, sanitized, clean)

	if err = o.persist(ctx, session, progress); err != nil {
		// The reply already exists; losing the save must not erase it. The
		// turn is returned and the failure only logged.
		o.logger.LogAttrs(ctx, slog.LevelError, "failed to persist turn",
			slog.String("session_id", sessionID), errors.SlogError(err))
	}

	return &TurnResult{
		ResponseText:           clean,
		UnlockedEvidenceIDs:    disclosureIDs(result.NewEvidence),
		UnlockedSuspectInfoIDs: disclosureIDs(result.NewSuspectInfo),
	}, nil
}

// Accuse compares the player's accusation against the case's answer and marks
// the session solved when it is correct. The answer is read server-side only;
// it never travels through any model payload.
func (o *Orchestrator) Accuse(ctx context.Context, sessionID, suspectID, evidenceID string) (bool, error) {
	if suspectID == "" || evidenceID == "" {
		return false, errors.Wrap(ErrMissingAccusation, "validate accusation")
	}

	unlock := o.locks.Lock(sessionID)
	defer unlock()

	session, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	records, err := o.cases.GetImmutableRecords(ctx, session.CaseID)
	if err != nil {
		return false, err
	}

	answer := records.CorrectAccusation
	correct := answer.SuspectID == suspectID && answer.EvidenceID == evidenceID
	if correct && !session.Solved {
		if err = o.sessions.MarkSolved(ctx, sessionID); err != nil {
			return false, err
		}
	}
	return correct, nil
}

func validateMessage(sanitized string, minRunes int) error {
	if utf8.RuneCountInString(sanitized) < minRunes {
		return errors.Wrap(ErrMessageTooShort, "validate message", slog.Int("min_runes", minRunes))
	}
	for _, r := range sanitized {
		if unicode.IsLetter(r) {
			return nil
		}
	}
	return errors.Wrap(ErrMessageNoLetters, "validate message")
}

// isRepeatedMessage reports whether the two most recent user turns both equal
// the incoming message.
func isRepeatedMessage(history []models.ChatMessage, sanitized string) bool {
	matches := 0
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != models.ChatRoleUser {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(history[i].Content), sanitized) {
			return false
		}
		matches++
		if matches == 2 {
			return true
		}
	}
	return false
}

func buildTurnMessages(contextBlock string, progress *models.Progress, userMessage string) []openai.ChatCompletionMessage {
	system := game.PersonaPreamble + "\n\n" + contextBlock +
		"\nCase notes so far: " + progress.LongTermSummary

	messages := make([]openai.ChatCompletionMessage, 0, len(progress.ShortTermMemory)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range progress.ShortTermMemory {
		role := openai.ChatMessageRoleUser
		if m.Role == models.ChatRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})
}

func (o *Orchestrator) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.ModelTimeout)
	defer cancel()
	return o.completer.Complete(ctx, messages)
}

// reconcileTags merges model-declared ids into the transition result, but only
// after validating them against the immutable records. An id the records don't
// know is discarded: never apply an unvalidated foreign id to game state.
func (o *Orchestrator) reconcileTags(
	result *game.TransitionResult,
	tags game.ControlTags,
	intent game.Intent,
	records *models.ImmutableRecords,
) {
	targetID := game.ValidateTargetID(tags.TargetID, records)
	if targetID != "" && !(intent.Action == game.ActionInspect && intent.TargetID == targetID) {
		extra := game.ApplyIntent(game.Intent{Action: game.ActionInspect, TargetID: targetID}, result.Progress, records)
		result.Progress = extra.Progress
		result.NewEvidence = append(result.NewEvidence, extra.NewEvidence...)
		result.NewSuspectInfo = append(result.NewSuspectInfo, extra.NewSuspectInfo...)
	}

	for _, id := range game.ValidateRevealedIDs(tags.RevealedIDs, records) {
		for _, d := range records.EvidenceTruth {
			if d.ID == id && !result.Progress.HasEvidence(id) {
				result.Progress.EvidenceLog = append(result.Progress.EvidenceLog, d)
				result.NewEvidence = append(result.NewEvidence, d)
			}
		}
		for _, d := range records.SuspectTruth {
			if d.ID == id && !result.Progress.HasSuspectInfo(id) {
				result.Progress.SuspectLog = append(result.Progress.SuspectLog, d)
				result.NewSuspectInfo = append(result.NewSuspectInfo, d)
			}
		}
	}
}

// mergeTurn appends the exchange to history, slides the short-term window, and
// refreshes the long-term summary on schedule.
func (o *Orchestrator) mergeTurn(ctx context.Context, progress models.Progress, userMessage, assistantMessage string) models.Progress {
	progress.ChatHistory = append(progress.ChatHistory,
		models.ChatMessage{Role: models.ChatRoleUser, Content: userMessage},
		models.ChatMessage{Role: models.ChatRoleAssistant, Content: assistantMessage},
	)
	progress.TurnCount++

	window := o.cfg.ShortTermWindow
	if len(progress.ChatHistory) <= window {
		progress.ShortTermMemory = append([]models.ChatMessage{}, progress.ChatHistory...)
	} else {
		progress.ShortTermMemory = append([]models.ChatMessage{}, progress.ChatHistory[len(progress.ChatHistory)-window:]...)
	}

	if o.cfg.SummarizeEvery > 0 && progress.TurnCount%o.cfg.SummarizeEvery == 0 {
		discarded := progress.ChatHistory[:max(0, len(progress.ChatHistory)-window)]
		if len(discarded) > 0 {
			progress.LongTermSummary = o.summarize(ctx, progress.LongTermSummary, discarded)
		}
	}
	return progress
}

// summarize rewrites the long-term digest from the history that fell out of
// the short-term window. A failed summarization keeps the previous digest; it
// never fails the player's turn.
func (o *Orchestrator) summarize(ctx context.Context, previous string, discarded []models.ChatMessage) string {
	var transcript strings.Builder
	for _, m := range discarded {
		speaker := "Detective"
		if m.Role == models.ChatRoleAssistant {
			speaker = "Partner"
		}
		fmt.Fprintf(&transcript, "%s: %s\n", speaker, m.Content)
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: game.SummarizationPreamble},
		{Role: openai.ChatMessageRoleUser,
			Content: "Previous digest:\n" + previous + "\n\nNew messages:\n" + transcript.String()},
	}

	summary, err := o.complete(ctx, messages)
	if err != nil {
		o.logger.LogAttrs(ctx, slog.LevelWarn, "summarization failed, keeping previous digest",
			errors.SlogError(err))
		return previous
	}
	if summary = strings.TrimSpace(summary); summary == "" {
		return previous
	}
	return summary
}

// persist saves the merged progress. On a version conflict another writer won
// the race (possible on multi-instance deployments where the keyed mutex can't
// serialize); the merge is replayed once on top of the winner's state so
// neither turn is lost.
func (o *Orchestrator) persist(ctx context.Context, session *models.Session, progress models.Progress) error {
	err := o.sessions.SaveProgress(ctx, session.ID, progress, session.Version)
	if !errors.Is(err, repositories.ErrVersionConflict) {
		return err
	}

	latest, err := o.sessions.Get(ctx, session.ID)
	if err != nil {
		return err
	}
	rebased := rebaseProgress(latest.Progress, progress, len(session.Progress.ChatHistory), o.cfg.ShortTermWindow)
	return o.sessions.SaveProgress(ctx, session.ID, rebased, latest.Version)
}

// rebaseProgress replays this turn's additions on top of the winning writer's
// progress: the new chat messages are appended and the unlock logs unioned.
func rebaseProgress(winner, ours models.Progress, oldHistoryLen, window int) models.Progress {
	rebased := winner.Clone()

	for _, m := range ours.ChatHistory[oldHistoryLen:] {
		rebased.ChatHistory = append(rebased.ChatHistory, m)
	}
	rebased.TurnCount++
	if len(rebased.ChatHistory) <= window {
		rebased.ShortTermMemory = append([]models.ChatMessage{}, rebased.ChatHistory...)
	} else {
		rebased.ShortTermMemory = append([]models.ChatMessage{}, rebased.ChatHistory[len(rebased.ChatHistory)-window:]...)
	}

	for _, d := range ours.EvidenceLog {
		if !rebased.HasEvidence(d.ID) {
			rebased.EvidenceLog = append(rebased.EvidenceLog, d)
		}
	}
	for _, d := range ours.SuspectLog {
		if !rebased.HasSuspectInfo(d.ID) {
			rebased.SuspectLog = append(rebased.SuspectLog, d)
		}
	}
	for _, id := range ours.KnownLocations {
		if !rebased.KnowsLocation(id) {
			rebased.KnownLocations = append(rebased.KnownLocations, id)
		}
	}
	rebased.CurrentLocation = ours.CurrentLocation
	return rebased
}

func disclosureIDs(disclosures []models.Disclosure) []string {
	ids := make([]string, 0, len(disclosures))
	for _, d := range disclosures {
		ids = append(ids, d.ID)
	}
	return ids
}

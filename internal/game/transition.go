package game

import (
	"github.com/EnesGoktekin/detective-ai/internal/models"
)

// TransitionResult carries the new progress plus the facts that became visible
// this turn. LocationChangeNote is one-shot: it feeds the context assembler and
// is regenerated fresh every time the player re-enters a location, never
// persisted.
type TransitionResult struct {
	Progress           models.Progress
	NewEvidence        []models.Disclosure
	NewSuspectInfo     []models.Disclosure
	LocationChangeNote string
}

// ApplyIntent computes the next progress from an intent and the immutable case
// records. It is a pure function: no I/O, no hidden state, and the input
// progress is never mutated.
//
// Rules:
//   - inspect reveals every truth record triggered by the target that is not
//     already logged. A target with zero truth records is a red herring: the
//     inspection still succeeds, it just reveals nothing.
//   - move is honored only for locations the player already knows. A move to an
//     unknown location leaves progress untouched; new locations enter the known
//     set only through explicit unlocks carried on disclosure records.
//   - talk and chat are identity transitions.
func ApplyIntent(intent Intent, progress models.Progress, records *models.ImmutableRecords) TransitionResult {
	result := TransitionResult{
		Progress:       progress.Clone(),
		NewEvidence:    []models.Disclosure{},
		NewSuspectInfo: []models.Disclosure{},
	}

	switch intent.Action {
	case ActionInspect:
		applyInspect(&result, intent.TargetID, records)
	case ActionMove:
		applyMove(&result, intent.TargetID, records)
	case ActionTalk, ActionChat:
		// Identity transitions.
	}

	return result
}

func applyInspect(result *TransitionResult, targetID string, records *models.ImmutableRecords) {
	for _, d := range records.EvidenceTruth {
		if d.TriggerObjectID != targetID || result.Progress.HasEvidence(d.ID) {
			continue
		}
		result.Progress.EvidenceLog = append(result.Progress.EvidenceLog, d)
		result.NewEvidence = append(result.NewEvidence, d)
		unlockLocation(&result.Progress, d.UnlocksLocationID, records)
	}
	for _, d := range records.SuspectTruth {
		if d.TriggerObjectID != targetID || result.Progress.HasSuspectInfo(d.ID) {
			continue
		}
		result.Progress.SuspectLog = append(result.Progress.SuspectLog, d)
		result.NewSuspectInfo = append(result.NewSuspectInfo, d)
		unlockLocation(&result.Progress, d.UnlocksLocationID, records)
	}
}

func applyMove(result *TransitionResult, targetID string, records *models.ImmutableRecords) {
	if !result.Progress.KnowsLocation(targetID) {
		// Not an error: the player simply doesn't know the way yet.
		return
	}
	location := records.LocationByID(targetID)
	if location == nil {
		return
	}
	result.Progress.CurrentLocation = targetID
	result.LocationChangeNote = location.SceneDescription
}

func unlockLocation(progress *models.Progress, locationID string, records *models.ImmutableRecords) {
	if locationID == "" || progress.KnowsLocation(locationID) {
		return
	}
	if records.LocationByID(locationID) == nil {
		return
	}
	progress.KnownLocations = append(progress.KnownLocations, locationID)
}

package game

import (
	"regexp"
	"strings"

	"github.com/EnesGoktekin/detective-ai/internal/models"
)

// The model may volunteer out-of-band control tags inside its free-text reply:
//
//	[TARGET_ID_START]desk[TARGET_ID_END]
//	[REVEALED_IDS_START]clue_letter,crane_debts[REVEALED_IDS_END]
//
// Tags are a side channel from an unstructured generator, so they are handled
// with a strict discipline: one extraction function, ids validated against the
// immutable records before they touch game state, and every marker stripped
// from the player-visible text.
var (
	targetTagPattern   = regexp.MustCompile(`\[TARGET_ID_START\]([^\[\]]*)\[TARGET_ID_END\]`)
	revealedTagPattern = regexp.MustCompile(`\[REVEALED_IDS_START\]([^\[\]]*)\[REVEALED_IDS_END\]`)
	strayTagPattern    = regexp.MustCompile(`\[/?(?:TARGET_ID|REVEALED_IDS)_(?:START|END)\]`)
)

// ControlTags holds the raw ids declared by the model, before validation.
type ControlTags struct {
	TargetID    string
	RevealedIDs []string
}

// ExtractControlTags parses control tags out of a raw model reply and returns
// the cleaned player-visible text with all markers removed.
func ExtractControlTags(raw string) (ControlTags, string) {
	var tags ControlTags

	if m := targetTagPattern.FindStringSubmatch(raw); m != nil {
		tags.TargetID = strings.TrimSpace(m[1])
	}
	if m := revealedTagPattern.FindStringSubmatch(raw); m != nil {
		for _, id := range strings.Split(m[1], ",") {
			id = strings.TrimSpace(id)
			if id != "" {
				tags.RevealedIDs = append(tags.RevealedIDs, id)
			}
		}
	}

	clean := targetTagPattern.ReplaceAllString(raw, "")
	clean = revealedTagPattern.ReplaceAllString(clean, "")
	// Orphaned markers from a malformed reply are stripped too.
	clean = strayTagPattern.ReplaceAllString(clean, "")
	return tags, strings.TrimSpace(clean)
}

// ValidateTargetID returns the target id if it names a real interactable in
// the case, otherwise the empty string. An unvalidated foreign id must never
// be applied to game state.
func ValidateTargetID(id string, records *models.ImmutableRecords) string {
	if id == "" {
		return ""
	}
	if records.InteractableByID(id) != nil {
		return id
	}
	return ""
}

// ValidateRevealedIDs filters the model-declared ids down to those that name
// real disclosure records.
func ValidateRevealedIDs(ids []string, records *models.ImmutableRecords) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if disclosureByID(records.EvidenceTruth, id) != nil || disclosureByID(records.SuspectTruth, id) != nil {
			valid = append(valid, id)
		}
	}
	return valid
}

func disclosureByID(set []models.Disclosure, id string) *models.Disclosure {
	for i := range set {
		if set[i].ID == id {
			return &set[i]
		}
	}
	return nil
}

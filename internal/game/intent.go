// Package game holds the pure investigation rules: resolving what the player
// meant, computing state transitions against the immutable case records, and
// rendering the model-facing context block. Nothing in this package performs
// I/O or calls the model; game rules are never arbitrated by the model.
package game

import (
	"regexp"
	"strings"

	"github.com/EnesGoktekin/detective-ai/internal/models"
)

type Action string

const (
	ActionInspect Action = "inspect"
	ActionMove    Action = "move"
	ActionTalk    Action = "talk"
	ActionChat    Action = "chat"
)

// TalkTarget is the sentinel target for talk intents. Suspect-specific
// interrogation is reserved for a future mechanic.
const TalkTarget = "suspect"

type Intent struct {
	Action   Action
	TargetID string
}

// moveCues are phrases and words that mark a message as a movement attempt.
// Phrases are matched as substrings, single words as whole words.
var (
	movePhrases = []string{"go to", "move to", "head to", "walk to", "go back to", "return to"}
	moveWords   = []string{"go", "move", "head", "walk", "enter", "visit", "travel", "return"}
	talkWords   = []string{"talk", "ask", "question", "interrogate", "interview", "speak"}
)

// ResolveIntent classifies a free-text player message into a single intent.
//
// Resolution order matters: interactables of the current location are checked
// before anything else, so "check the desk" inspects the desk even if the
// message also mentions a location. Movement scans every location's keywords,
// not just known ones; the transition engine decides whether the move is
// honored. The resolver is stateless and re-run from scratch every turn.
func ResolveIntent(message string, locations []models.Location, progress *models.Progress) Intent {
	lowered := strings.ToLower(message)

	var current *models.Location
	for i := range locations {
		if locations[i].ID == progress.CurrentLocation {
			current = &locations[i]
			break
		}
	}

	if current != nil {
		for _, interactable := range current.Interactables {
			for _, keyword := range interactable.Keywords {
				if containsWholeWord(lowered, keyword) {
					return Intent{Action: ActionInspect, TargetID: interactable.ID}
				}
			}
		}
	}

	if hasMoveCue(lowered) {
		for i := range locations {
			for _, keyword := range locations[i].Keywords {
				if containsWholeWord(lowered, keyword) {
					return Intent{Action: ActionMove, TargetID: locations[i].ID}
				}
			}
		}
	}

	for _, cue := range talkWords {
		if containsWholeWord(lowered, cue) {
			return Intent{Action: ActionTalk, TargetID: TalkTarget}
		}
	}

	return Intent{Action: ActionChat}
}

func hasMoveCue(lowered string) bool {
	for _, phrase := range movePhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	for _, word := range moveWords {
		if containsWholeWord(lowered, word) {
			return true
		}
	}
	return false
}

// containsWholeWord tests a case-insensitive whole-word match. Keywords may
// span multiple words ("knife block"); each edge must fall on a word boundary
// so "desk" does not fire on "desktop".
func containsWholeWord(lowered, keyword string) bool {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return false
	}
	pattern := `\b` + regexp.QuoteMeta(keyword) + `\b`
	matched, err := regexp.MatchString(pattern, lowered)
	if err != nil {
		return false
	}
	return matched
}

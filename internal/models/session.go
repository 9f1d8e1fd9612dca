package models

import (
	"slices"
	"time"
)

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Progress is the evolving per-session investigation state. It is stored as a
// single JSON document and replaced wholesale on every save; merging happens in
// the turn orchestrator, never in the store.
type Progress struct {
	// CurrentLocation is always a valid location id in the case.
	CurrentLocation string `json:"currentLocation"`
	// KnownLocations only grows, never shrinks, and always contains the
	// starting location.
	KnownLocations []string `json:"knownLocations"`
	// EvidenceLog and SuspectLog are monotonically non-decreasing: an unlocked
	// disclosure is never removed mid-session.
	EvidenceLog []Disclosure `json:"evidenceLog"`
	SuspectLog  []Disclosure `json:"suspectLog"`
	// ChatHistory is append-only.
	ChatHistory []ChatMessage `json:"chatHistory"`
	// ShortTermMemory is the sliding window of recent messages sent to the model.
	ShortTermMemory []ChatMessage `json:"shortTermMemory"`
	// LongTermSummary is a rolling digest of history that fell out of the window.
	LongTermSummary string `json:"longTermSummary"`
	// TurnCount counts completed chat turns and drives periodic summarization.
	TurnCount int `json:"turnCount"`
}

const DefaultLongTermSummary = "The investigation has just begun."

// NewProgress builds the initial progress for a session starting at the given
// location.
func NewProgress(startLocationID string) Progress {
	return Progress{
		CurrentLocation: startLocationID,
		KnownLocations:  []string{startLocationID},
		EvidenceLog:     []Disclosure{},
		SuspectLog:      []Disclosure{},
		ChatHistory:     []ChatMessage{},
		ShortTermMemory: []ChatMessage{},
		LongTermSummary: DefaultLongTermSummary,
		TurnCount:       0,
	}
}

// KnowsLocation reports whether the player may move to the given location.
func (p *Progress) KnowsLocation(id string) bool {
	return slices.Contains(p.KnownLocations, id)
}

// HasEvidence reports whether the evidence log already contains the given id.
func (p *Progress) HasEvidence(id string) bool {
	return slices.ContainsFunc(p.EvidenceLog, func(d Disclosure) bool { return d.ID == id })
}

// HasSuspectInfo reports whether the suspect log already contains the given id.
func (p *Progress) HasSuspectInfo(id string) bool {
	return slices.ContainsFunc(p.SuspectLog, func(d Disclosure) bool { return d.ID == id })
}

// Clone returns a deep copy so transitions can stay pure.
func (p *Progress) Clone() Progress {
	clone := *p
	clone.KnownLocations = slices.Clone(p.KnownLocations)
	clone.EvidenceLog = slices.Clone(p.EvidenceLog)
	clone.SuspectLog = slices.Clone(p.SuspectLog)
	clone.ChatHistory = slices.Clone(p.ChatHistory)
	clone.ShortTermMemory = slices.Clone(p.ShortTermMemory)
	return clone
}

// Session is one player's mutable pairing with a case. Version implements the
// optimistic concurrency guard on progress saves.
type Session struct {
	ID        string    `json:"sessionId"`
	CaseID    string    `json:"caseId"`
	UserID    []byte    `json:"-"`
	Progress  Progress  `json:"progress"`
	Version   int64     `json:"-"`
	Solved    bool      `json:"solved"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

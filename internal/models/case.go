package models

// Case is the immutable record set for one playable mystery. It is authored
// offline, ingested into the database, and never mutated at runtime. The truth
// sets and the correct accusation are the puzzle's ground truth and must never
// be handed to the model wholesale.
type Case struct {
	ID         string `json:"id"`
	CaseNumber int    `json:"caseNumber"`
	Title      string `json:"title"`
	Synopsis   string `json:"synopsis"`

	Victims         []Victim   `json:"victims"`
	Suspects        []Suspect  `json:"suspects"`
	StartLocationID string     `json:"startLocationId"`
	Locations       []Location `json:"locations"`

	EvidenceTruth     []Disclosure `json:"evidenceTruth"`
	SuspectTruth      []Disclosure `json:"suspectTruth"`
	CorrectAccusation Accusation   `json:"correctAccusation"`
}

type Victim struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Suspect is roster data that is safe to disclose to the model directly.
// Incriminating details live in the suspect truth set instead.
type Suspect struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Trait            string `json:"trait"`
	Description      string `json:"description"`
	RelationToVictim string `json:"relationToVictim"`
}

// Location is a node in the case's location graph. Locations cross-reference
// each other through keywords, so the graph is not a tree.
type Location struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	SceneDescription string         `json:"sceneDescription"`
	Keywords         []string       `json:"keywords"`
	Interactables    []Interactable `json:"interactables"`
}

// Interactable is a named inspect target scoped to one location, e.g. "desk".
type Interactable struct {
	ID       string   `json:"id"`
	Keywords []string `json:"keywords"`
}

// Disclosure is an evidence or suspect-info entry in the immutable truth set.
// TriggerObjectID names the interactable that reveals it. Description is the
// verbatim text the model may relay once the entry is unlocked.
// UnlocksLocationID optionally adds a location to the player's known set when
// the entry is revealed.
type Disclosure struct {
	ID                string `json:"id"`
	TriggerObjectID   string `json:"triggerObjectId"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	UnlocksLocationID string `json:"unlocksLocationId,omitempty"`
}

// Accusation pairs a suspect with the piece of evidence that convicts them.
type Accusation struct {
	SuspectID  string `json:"suspectId"`
	EvidenceID string `json:"evidenceId"`
}

// CaseSummary is the listing view of a case.
type CaseSummary struct {
	ID         string `db:"id" json:"id"`
	CaseNumber int    `db:"case_number" json:"caseNumber"`
	Title      string `db:"title" json:"title"`
	Synopsis   string `db:"synopsis" json:"synopsis"`
}

// EvidenceShell is an id+name pair for UI listings. Descriptions stay locked
// until the corresponding disclosure is unlocked in a session.
type EvidenceShell struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InitialData is the public view of a case: everything in it is safe to return
// to the player and to disclose to the model before any investigation happens.
type InitialData struct {
	CaseID          string          `json:"caseId"`
	Title           string          `json:"title"`
	Synopsis        string          `json:"synopsis"`
	Victims         []Victim        `json:"victims"`
	Suspects        []Suspect       `json:"suspects"`
	StartLocationID string          `json:"startLocationId"`
	EvidenceShells  []EvidenceShell `json:"evidenceShells"`
}

// ImmutableRecords is the secret half of a case: the full disclosure sets, the
// location graph, and the answer. It never leaves the server process.
type ImmutableRecords struct {
	EvidenceTruth     []Disclosure
	SuspectTruth      []Disclosure
	Locations         []Location
	StartLocationID   string
	CorrectAccusation Accusation
}

// LocationByID returns the location with the given id or nil.
func (r *ImmutableRecords) LocationByID(id string) *Location {
	for i := range r.Locations {
		if r.Locations[i].ID == id {
			return &r.Locations[i]
		}
	}
	return nil
}

// InteractableByID scans all locations for an interactable with the given id.
func (r *ImmutableRecords) InteractableByID(id string) *Interactable {
	for i := range r.Locations {
		for j := range r.Locations[i].Interactables {
			if r.Locations[i].Interactables[j].ID == id {
				return &r.Locations[i].Interactables[j]
			}
		}
	}
	return nil
}

// Package cases implements the case authoring workflow: YAML bundles written
// offline are validated for referential integrity and ingested into the
// database the server reads from.
package cases

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/EnesGoktekin/detective-ai/internal/errors"
	"github.com/EnesGoktekin/detective-ai/internal/models"
)

// Bundle is the YAML authoring format for a case. It mirrors the stored case
// document but keeps its own struct so the authoring format can evolve
// independently of the storage schema.
type Bundle struct {
	ID         string `yaml:"id"`
	CaseNumber int    `yaml:"caseNumber"`
	Title      string `yaml:"title"`
	Synopsis   string `yaml:"synopsis"`

	Victims []struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"victims"`

	Suspects []struct {
		ID               string `yaml:"id"`
		Name             string `yaml:"name"`
		Trait            string `yaml:"trait"`
		Description      string `yaml:"description"`
		RelationToVictim string `yaml:"relationToVictim"`
	} `yaml:"suspects"`

	StartLocationID string `yaml:"startLocationId"`

	Locations []struct {
		ID               string   `yaml:"id"`
		Name             string   `yaml:"name"`
		SceneDescription string   `yaml:"sceneDescription"`
		Keywords         []string `yaml:"keywords"`
		Interactables    []struct {
			ID       string   `yaml:"id"`
			Keywords []string `yaml:"keywords"`
		} `yaml:"interactables"`
	} `yaml:"locations"`

	EvidenceTruth []bundleDisclosure `yaml:"evidenceTruth"`
	SuspectTruth  []bundleDisclosure `yaml:"suspectTruth"`

	CorrectAccusation struct {
		SuspectID  string `yaml:"suspectId"`
		EvidenceID string `yaml:"evidenceId"`
	} `yaml:"correctAccusation"`
}

type bundleDisclosure struct {
	ID                string `yaml:"id"`
	TriggerObjectID   string `yaml:"triggerObjectId"`
	Name              string `yaml:"name"`
	Description       string `yaml:"description"`
	UnlocksLocationID string `yaml:"unlocksLocationId"`
}

// LoadBundle reads and parses a case bundle from a YAML file.
func LoadBundle(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read bundle")
	}
	var bundle Bundle
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err = decoder.Decode(&bundle); err != nil {
		return nil, errors.Wrap(err, "parse bundle")
	}
	return &bundle, nil
}

// Validate checks the bundle's referential integrity. All problems are
// reported at once so an author can fix a bundle in one pass.
func (b *Bundle) Validate() []error {
	var problems []error
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if b.ID == "" {
		report("case id is required")
	}
	if b.Title == "" {
		report("case title is required")
	}
	if len(b.Locations) == 0 {
		report("case needs at least one location")
	}
	if len(b.Suspects) == 0 {
		report("case needs at least one suspect")
	}

	locationIDs := map[string]bool{}
	interactableIDs := map[string]bool{}
	for _, location := range b.Locations {
		if locationIDs[location.ID] {
			report("duplicate location id %q", location.ID)
		}
		locationIDs[location.ID] = true
		if len(location.Keywords) == 0 {
			report("location %q has no keywords, it can never be moved to", location.ID)
		}
		for _, interactable := range location.Interactables {
			if interactableIDs[interactable.ID] {
				report("duplicate interactable id %q", interactable.ID)
			}
			interactableIDs[interactable.ID] = true
			if len(interactable.Keywords) == 0 {
				report("interactable %q has no keywords, it can never be inspected", interactable.ID)
			}
		}
	}

	if !locationIDs[b.StartLocationID] {
		report("start location %q is not in the location list", b.StartLocationID)
	}

	disclosureIDs := map[string]bool{}
	evidenceIDs := map[string]bool{}
	checkDisclosures := func(kind string, disclosures []bundleDisclosure) {
		for _, d := range disclosures {
			if disclosureIDs[d.ID] {
				report("duplicate %s id %q", kind, d.ID)
			}
			disclosureIDs[d.ID] = true
			if !interactableIDs[d.TriggerObjectID] {
				report("%s %q triggers on unknown interactable %q", kind, d.ID, d.TriggerObjectID)
			}
			if d.UnlocksLocationID != "" && !locationIDs[d.UnlocksLocationID] {
				report("%s %q unlocks unknown location %q", kind, d.ID, d.UnlocksLocationID)
			}
		}
	}
	checkDisclosures("evidence", b.EvidenceTruth)
	for _, d := range b.EvidenceTruth {
		evidenceIDs[d.ID] = true
	}
	checkDisclosures("suspect info", b.SuspectTruth)

	suspectIDs := map[string]bool{}
	for _, suspect := range b.Suspects {
		if suspectIDs[suspect.ID] {
			report("duplicate suspect id %q", suspect.ID)
		}
		suspectIDs[suspect.ID] = true
	}

	if !suspectIDs[b.CorrectAccusation.SuspectID] {
		report("accusation names unknown suspect %q", b.CorrectAccusation.SuspectID)
	}
	if !evidenceIDs[b.CorrectAccusation.EvidenceID] {
		report("accusation names unknown evidence %q", b.CorrectAccusation.EvidenceID)
	}

	return problems
}

// ToCase converts a validated bundle into the stored case document.
func (b *Bundle) ToCase() *models.Case {
	c := &models.Case{
		ID:              b.ID,
		CaseNumber:      b.CaseNumber,
		Title:           b.Title,
		Synopsis:        b.Synopsis,
		StartLocationID: b.StartLocationID,
		CorrectAccusation: models.Accusation{
			SuspectID:  b.CorrectAccusation.SuspectID,
			EvidenceID: b.CorrectAccusation.EvidenceID,
		},
	}

	for _, v := range b.Victims {
		c.Victims = append(c.Victims, models.Victim{ID: v.ID, Name: v.Name, Description: v.Description})
	}
	for _, s := range b.Suspects {
		c.Suspects = append(c.Suspects, models.Suspect{
			ID:               s.ID,
			Name:             s.Name,
			Trait:            s.Trait,
			Description:      s.Description,
			RelationToVictim: s.RelationToVictim,
		})
	}
	for _, l := range b.Locations {
		location := models.Location{
			ID:               l.ID,
			Name:             l.Name,
			SceneDescription: l.SceneDescription,
			Keywords:         l.Keywords,
		}
		for _, i := range l.Interactables {
			location.Interactables = append(location.Interactables, models.Interactable{ID: i.ID, Keywords: i.Keywords})
		}
		c.Locations = append(c.Locations, location)
	}
	c.EvidenceTruth = toDisclosures(b.EvidenceTruth)
	c.SuspectTruth = toDisclosures(b.SuspectTruth)

	return c
}

func toDisclosures(in []bundleDisclosure) []models.Disclosure {
	out := make([]models.Disclosure, 0, len(in))
	for _, d := range in {
		out = append(out, models.Disclosure{
			ID:                d.ID,
			TriggerObjectID:   d.TriggerObjectID,
			Name:              d.Name,
			Description:       d.Description,
			UnlocksLocationID: d.UnlocksLocationID,
		})
	}
	return out
}

package game

import (
	"fmt"
	"strings"

	"github.com/EnesGoktekin/detective-ai/internal/models"
)

// maxAccumulatedDescriptionRunes truncates descriptions of previously unlocked
// items in the accumulated section. Newly revealed descriptions are always
// verbatim: those are the facts the model must relay this turn.
const maxAccumulatedDescriptionRunes = 280

// RenderContext builds the context block handed to the model. This block is the
// only channel through which the model learns game facts: it is reconstructed
// fresh every turn from authoritative state, so the model is never trusted to
// remember or infer unrevealed truth. The correct accusation never appears
// here.
func RenderContext(
	result *TransitionResult,
	records *models.ImmutableRecords,
	initial *models.InitialData,
) string {
	var b strings.Builder

	b.WriteString("=== INVESTIGATION STATE ===\n")
	if location := records.LocationByID(result.Progress.CurrentLocation); location != nil {
		fmt.Fprintf(&b, "Current location: %s\n", location.Name)
	}

	if len(initial.Suspects) > 0 {
		b.WriteString("\nSuspects:\n")
		for _, s := range initial.Suspects {
			fmt.Fprintf(&b, "- %s (%s, %s): %s\n", s.Name, s.RelationToVictim, s.Trait, s.Description)
		}
	}

	writeLogSection(&b, "Evidence discovered so far", result.Progress.EvidenceLog, result.NewEvidence)
	writeLogSection(&b, "Suspect information discovered so far", result.Progress.SuspectLog, result.NewSuspectInfo)

	if len(result.NewEvidence) > 0 || len(result.NewSuspectInfo) > 0 {
		b.WriteString("\n--- NEWLY DISCOVERED THIS TURN ---\n")
		b.WriteString("Describe these to the detective now, using the text essentially verbatim:\n")
		for _, d := range result.NewEvidence {
			fmt.Fprintf(&b, "* %s: %s\n", d.Name, d.Description)
		}
		for _, d := range result.NewSuspectInfo {
			fmt.Fprintf(&b, "* %s: %s\n", d.Name, d.Description)
		}
		b.WriteString("--- END NEWLY DISCOVERED ---\n")
	}

	if result.LocationChangeNote != "" {
		fmt.Fprintf(&b, "\nThe detective has just arrived here. Scene: %s\n", result.LocationChangeNote)
	}

	b.WriteString("=== END INVESTIGATION STATE ===\n")
	return b.String()
}

// writeLogSection lists accumulated unlocks so the model has continuity across
// turns. Entries revealed this very turn are skipped here: they appear in the
// newly-discovered section with their full text.
func writeLogSection(b *strings.Builder, title string, log, fresh []models.Disclosure) {
	older := make([]models.Disclosure, 0, len(log))
	for _, d := range log {
		isFresh := false
		for _, f := range fresh {
			if f.ID == d.ID {
				isFresh = true
				break
			}
		}
		if !isFresh {
			older = append(older, d)
		}
	}
	if len(older) == 0 {
		return
	}

	fmt.Fprintf(b, "\n%s:\n", title)
	for _, d := range older {
		fmt.Fprintf(b, "- %s: %s\n", d.Name, truncateRunes(d.Description, maxAccumulatedDescriptionRunes))
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

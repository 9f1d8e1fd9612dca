package game_test

import (
	"github.com/EnesGoktekin/detective-ai/internal/models"
)

// manorRecords mirrors the Blackwood Manor fixture case used by the
// repository tests.
func manorRecords() *models.ImmutableRecords {
	return &models.ImmutableRecords{
		StartLocationID: "study",
		Locations: []models.Location{
			{
				ID:               "study",
				Name:             "The Study",
				SceneDescription: "Heavy curtains keep the study dim.",
				Keywords:         []string{"study", "office"},
				Interactables: []models.Interactable{
					{ID: "desk", Keywords: []string{"desk", "drawer", "drawers"}},
					{ID: "bookshelf", Keywords: []string{"bookshelf", "books", "shelf"}},
					{ID: "fireplace", Keywords: []string{"fireplace", "mantel", "ashes"}},
				},
			},
			{
				ID:               "kitchen",
				Name:             "The Kitchen",
				SceneDescription: "Copper pots hang in rows.",
				Keywords:         []string{"kitchen", "pantry"},
				Interactables: []models.Interactable{
					{ID: "knife-block", Keywords: []string{"knife block", "knives", "knife"}},
				},
			},
			{
				ID:               "garden",
				Name:             "The Walled Garden",
				SceneDescription: "Rain has turned the flowerbeds to mud.",
				Keywords:         []string{"garden", "greenhouse"},
				Interactables: []models.Interactable{
					{ID: "flowerbed", Keywords: []string{"flowerbed", "flowers", "soil", "prints"}},
				},
			},
		},
		EvidenceTruth: []models.Disclosure{
			{ID: "clue_letter", TriggerObjectID: "desk", Name: "Torn Letter",
				Description: "A half-burned letter demanding repayment of a gambling debt, signed with the initials J.C."},
			{ID: "ash_fragment", TriggerObjectID: "fireplace", Name: "Burnt Ledger Page",
				Description: "A ledger page showing payments routed through the kitchen accounts.", UnlocksLocationID: "kitchen"},
			{ID: "missing_knife", TriggerObjectID: "knife-block", Name: "Missing Carving Knife",
				Description: "The block's largest knife is gone.", UnlocksLocationID: "garden"},
			{ID: "muddy_print", TriggerObjectID: "flowerbed", Name: "Muddy Boot Print",
				Description: "A size-nine boot print pressed deep into the flowerbed."},
		},
		SuspectTruth: []models.Disclosure{
			{ID: "crane_debts", TriggerObjectID: "desk", Name: "Crane's Debts",
				Description: "Correspondence in the drawer shows James Crane owed Lord Blackwood a ruinous sum."},
			{ID: "hollis_boots", TriggerObjectID: "flowerbed", Name: "Hollis's Boots",
				Description: "The print matches the gardener's boots, but the stride is too long for him."},
		},
		CorrectAccusation: models.Accusation{SuspectID: "james-crane", EvidenceID: "clue_letter"},
	}
}

func manorInitialData() *models.InitialData {
	return &models.InitialData{
		CaseID:          "blackwood-manor",
		Title:           "The Blackwood Manor Affair",
		Synopsis:        "Lord Blackwood lies dead in his study.",
		StartLocationID: "study",
		Suspects: []models.Suspect{
			{ID: "james-crane", Name: "James Crane", Trait: "evasive",
				Description: "A wiry man in an immaculate valet's uniform.", RelationToVictim: "valet"},
			{ID: "eleanor-blackwood", Name: "Eleanor Blackwood", Trait: "composed",
				Description: "The widow.", RelationToVictim: "wife"},
		},
		EvidenceShells: []models.EvidenceShell{
			{ID: "clue_letter", Name: "Torn Letter"},
		},
	}
}

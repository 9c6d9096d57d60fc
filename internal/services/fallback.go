package services

import (
	"fmt"
	"sort"

	"github.com/projektl/projekt-l-backend/internal/leveling"
)

// Static recommendation catalogs used by the deterministic fallback
// generator whenever the model is unavailable, slow or misconfigured.
var fallbackSkillCatalog = map[string][]string{
	"karriere": {"Zeitmanagement", "Networking", "Präsentieren"},
	"koerper":  {"Krafttraining", "Ausdauer", "Ernährungsplanung"},
	"geist":    {"Meditation", "Journaling", "Stressbewältigung"},
	"finanzen": {"Budgetieren", "Investieren", "Steuergrundlagen"},
	"sozial":   {"Aktives Zuhören", "Kontakte pflegen", "Smalltalk"},
	"wissen":   {"Schnelllesen", "Notiztechnik", "Sprachenlernen"},
	"hobby":    {"Musizieren", "Zeichnen", "Fotografie"},
}

var fallbackHabitCatalog = map[string]string{
	"karriere": "Täglich die wichtigste Aufgabe zuerst erledigen",
	"koerper":  "30 Minuten Bewegung",
	"geist":    "10 Minuten Meditation",
	"finanzen": "Ausgaben des Tages notieren",
	"sozial":   "Einer Person eine Nachricht schreiben",
	"wissen":   "20 Minuten lesen",
	"hobby":    "15 Minuten am Hobbyprojekt arbeiten",
}

// fallbackAnalysis derives an analysis purely from the questionnaire
// numbers. Same input, same output; no randomness in this path.
func fallbackAnalysis(req AnalyzeRequest) *AIAnalysisResult {
	levels := make(map[string]int, len(req.FactionRatings))
	importance := make(map[string]int, len(req.FactionRatings))
	for _, rating := range req.FactionRatings {
		levels[rating.FactionID] = leveling.FactionLevel(rating.CurrentStatus, rating.YearsExperience)
		importance[rating.FactionID] = rating.Importance
	}

	ratings := append([]FactionRating(nil), req.FactionRatings...)
	sort.Slice(ratings, func(i, j int) bool {
		if ratings[i].Importance != ratings[j].Importance {
			return ratings[i].Importance > ratings[j].Importance
		}
		return ratings[i].FactionID < ratings[j].FactionID
	})

	var skills []RecommendedSkill
	var habits []RecommendedHabit
	for i, rating := range ratings {
		if i >= 3 {
			break
		}
		tier := tierForStatus(rating.CurrentStatus)
		for _, name := range fallbackSkillCatalog[rating.FactionID] {
			skills = append(skills, RecommendedSkill{
				Name:       name,
				FactionID:  rating.FactionID,
				Experience: tier,
			})
		}
		if habit, ok := fallbackHabitCatalog[rating.FactionID]; ok {
			habits = append(habits, RecommendedHabit{
				Name:      habit,
				FactionID: rating.FactionID,
				HabitType: "positive",
			})
		}
	}

	class := leveling.CharacterClassFromImportance(importance)
	return &AIAnalysisResult{
		FactionLevels:     levels,
		CharacterClass:    class,
		RecommendedSkills: skills,
		RecommendedHabits: habits,
		Summary:           fmt.Sprintf("Basierend auf deinen Angaben startest du als %s.", class),
	}
}

func tierForStatus(status int) string {
	switch {
	case status >= 8:
		return string(leveling.TierExpert)
	case status >= 4:
		return string(leveling.TierIntermediate)
	default:
		return string(leveling.TierBeginner)
	}
}

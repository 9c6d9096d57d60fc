package leveling

import (
	"math"
	"time"
)

var questBaseXP = map[string]int{
	"daily":  100,
	"weekly": 300,
	"story":  600,
}

var difficultyFactor = map[string]float64{
	"easy":   0.7,
	"medium": 1.0,
	"hard":   1.5,
	"epic":   2.5,
}

// DefaultQuestXP computes the reward used when the model omits one. Unknown
// types fall back to daily, unknown difficulties to medium.
func DefaultQuestXP(questType, difficulty string) int {
	base, ok := questBaseXP[questType]
	if !ok {
		base = questBaseXP["daily"]
	}
	factor, ok := difficultyFactor[difficulty]
	if !ok {
		factor = 1.0
	}
	return int(math.Round(float64(base) * factor))
}

// QuestExpiry returns the expiry timestamp for a quest generated at now.
// Daily quests expire in 24h, weekly in 7 days, story quests never.
func QuestExpiry(questType string, now time.Time) *time.Time {
	switch questType {
	case "daily":
		t := now.Add(24 * time.Hour)
		return &t
	case "weekly":
		t := now.Add(7 * 24 * time.Hour)
		return &t
	default:
		return nil
	}
}

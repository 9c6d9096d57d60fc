// Package leveling holds the pure XP and level arithmetic shared by
// onboarding, quest generation and progress aggregation. Nothing in here
// touches the database; all inputs are clamped instead of rejected.
package leveling

import (
	"math"
	"math/rand"
	"time"
)

// ExperienceTier is the qualitative self-assessment collected during
// onboarding.
type ExperienceTier string

const (
	TierBeginner     ExperienceTier = "beginner"
	TierIntermediate ExperienceTier = "intermediate"
	TierExpert       ExperienceTier = "expert"
)

const (
	// XPBaseCoef drives the cumulative threshold curve:
	// XP for level n = sum over i=1..n of floor(XPBaseCoef * i^1.5).
	XPBaseCoef = 100.0

	// MaxLevel caps every computed level.
	MaxLevel = 100

	// MaxExperienceBonus caps the years-of-experience contribution to a
	// faction level.
	MaxExperienceBonus = 20
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FactionLevel maps a questionnaire rating to a starting faction level.
// Base level is floor(currentStatus*5) for currentStatus in [1,10], plus an
// experience bonus of 3 per year capped at MaxExperienceBonus. Importance
// does not enter here; it only feeds XPMultiplier.
func FactionLevel(currentStatus int, yearsExperience float64) int {
	status := clampInt(currentStatus, 1, 10)
	base := status * 5
	if yearsExperience < 0 {
		yearsExperience = 0
	}
	bonus := int(math.Min(yearsExperience*3, MaxExperienceBonus))
	return clampInt(base+bonus, 1, MaxLevel)
}

// XPMultiplier converts importance (1-5) into the per-faction XP multiplier
// (0.33 - 1.67).
func XPMultiplier(importance int) float64 {
	return float64(clampInt(importance, 1, 5)) / 3.0
}

// SkillLevel draws a starting level from the fixed range of the given tier.
// The random source is injected so callers that need reproducibility (tests,
// the deterministic fallback generator) can supply a seeded one. A nil rng
// falls back to a time-seeded source.
func SkillLevel(tier ExperienceTier, rng *rand.Rand) int {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var lo, hi int
	switch tier {
	case TierIntermediate:
		lo, hi = 20, 40
	case TierExpert:
		lo, hi = 50, 70
	default:
		lo, hi = 1, 10
	}
	return lo + rng.Intn(hi-lo+1)
}

// XPForLevel returns the cumulative XP threshold for the given level.
// Level 0 (and below) requires 0 XP; the sum is strictly increasing.
func XPForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	total := 0
	for i := 1; i <= level; i++ {
		total += int(math.Floor(XPBaseCoef * math.Pow(float64(i), 1.5)))
	}
	return total
}

// LevelForXP is the inverse of XPForLevel: the highest level whose cumulative
// threshold is covered by totalXP, floored at 1.
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	level := 1
	for level < MaxLevel && XPForLevel(level+1) <= totalXP {
		level++
	}
	return level
}

package leveling

import "sort"

// DefaultCharacterClass is used when no pairing matches or fewer than two
// faction ratings exist.
const DefaultCharacterClass = "Abenteurer"

// characterClassPairs maps the user's two most important factions to a
// character class. Both orderings of each pair are listed.
var characterClassPairs = map[[2]string]string{
	{"karriere", "finanzen"}: "Händler",
	{"finanzen", "karriere"}: "Händler",
	{"karriere", "geist"}:    "Stratege",
	{"geist", "karriere"}:    "Stratege",
	{"karriere", "sozial"}:   "Anführer",
	{"sozial", "karriere"}:   "Anführer",
	{"koerper", "geist"}:     "Mönch",
	{"geist", "koerper"}:     "Mönch",
	{"koerper", "hobby"}:     "Athlet",
	{"hobby", "koerper"}:     "Athlet",
	{"koerper", "karriere"}:  "Krieger",
	{"karriere", "koerper"}:  "Krieger",
	{"wissen", "geist"}:      "Gelehrter",
	{"geist", "wissen"}:      "Gelehrter",
	{"wissen", "karriere"}:   "Forscher",
	{"karriere", "wissen"}:   "Forscher",
	{"finanzen", "wissen"}:   "Investor",
	{"wissen", "finanzen"}:   "Investor",
	{"sozial", "hobby"}:      "Entertainer",
	{"hobby", "sozial"}:      "Entertainer",
	{"sozial", "geist"}:      "Mentor",
	{"geist", "sozial"}:      "Mentor",
	{"hobby", "wissen"}:      "Künstler",
	{"wissen", "hobby"}:      "Künstler",
}

// CharacterClassForPair resolves a class from an ordered faction pair.
func CharacterClassForPair(first, second string) string {
	if cls, ok := characterClassPairs[[2]string{first, second}]; ok {
		return cls
	}
	return DefaultCharacterClass
}

// CharacterClassFromImportance picks the two factions with the highest
// importance and resolves the pair. Ties break on faction ID so the result
// is stable for equal ratings.
func CharacterClassFromImportance(importanceByFaction map[string]int) string {
	if len(importanceByFaction) < 2 {
		return DefaultCharacterClass
	}
	ids := make([]string, 0, len(importanceByFaction))
	for id := range importanceByFaction {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if importanceByFaction[ids[i]] != importanceByFaction[ids[j]] {
			return importanceByFaction[ids[i]] > importanceByFaction[ids[j]]
		}
		return ids[i] < ids[j]
	})
	return CharacterClassForPair(ids[0], ids[1])
}

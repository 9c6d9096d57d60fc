package types

import (
	"time"
)

// Faction is one of the seven fixed life domains. The slug doubles as the
// primary key so onboarding payloads and the character class table can refer
// to factions without an extra lookup.
type Faction struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	SortOrder int       `gorm:"not null;default:0;column:sort_order" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Faction) TableName() string {
	return "faction"
}

const (
	FactionKarriere = "karriere"
	FactionKoerper  = "koerper"
	FactionGeist    = "geist"
	FactionFinanzen = "finanzen"
	FactionSozial   = "sozial"
	FactionWissen   = "wissen"
	FactionHobby    = "hobby"
)

// AllFactions returns the fixed seed rows in display order.
func AllFactions() []Faction {
	return []Faction{
		{ID: FactionKarriere, Name: "Karriere", SortOrder: 1},
		{ID: FactionKoerper, Name: "Körper", SortOrder: 2},
		{ID: FactionGeist, Name: "Geist", SortOrder: 3},
		{ID: FactionFinanzen, Name: "Finanzen", SortOrder: 4},
		{ID: FactionSozial, Name: "Sozial", SortOrder: 5},
		{ID: FactionWissen, Name: "Wissen", SortOrder: 6},
		{ID: FactionHobby, Name: "Hobby", SortOrder: 7},
	}
}

func IsKnownFaction(id string) bool {
	switch id {
	case FactionKarriere, FactionKoerper, FactionGeist, FactionFinanzen, FactionSozial, FactionWissen, FactionHobby:
		return true
	}
	return false
}

// Package catalog holds the static sport catalog the registration wizard and
// profile screens select from. Read-only; the slice order is display order.
package catalog

import "sort"

// Sport is one selectable sport.
type Sport struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Emoji    string `json:"emoji"`
}

// Sport categories.
const (
	CategoryEndurance = "endurance"
	CategoryStrength  = "strength"
	CategoryTeam      = "team"
	CategoryRacket    = "racket"
	CategoryMind      = "mind_body"
	CategoryWater     = "water"
)

var allSports = []Sport{
	{ID: "running", Name: "Running", Category: CategoryEndurance, Emoji: "🏃"},
	{ID: "cycling", Name: "Cycling", Category: CategoryEndurance, Emoji: "🚴"},
	{ID: "hiking", Name: "Hiking", Category: CategoryEndurance, Emoji: "🥾"},
	{ID: "weightlifting", Name: "Weightlifting", Category: CategoryStrength, Emoji: "🏋️"},
	{ID: "crossfit", Name: "CrossFit", Category: CategoryStrength, Emoji: "💪"},
	{ID: "calisthenics", Name: "Calisthenics", Category: CategoryStrength, Emoji: "🤸"},
	{ID: "football", Name: "Football", Category: CategoryTeam, Emoji: "⚽"},
	{ID: "basketball", Name: "Basketball", Category: CategoryTeam, Emoji: "🏀"},
	{ID: "volleyball", Name: "Volleyball", Category: CategoryTeam, Emoji: "🏐"},
	{ID: "tennis", Name: "Tennis", Category: CategoryRacket, Emoji: "🎾"},
	{ID: "badminton", Name: "Badminton", Category: CategoryRacket, Emoji: "🏸"},
	{ID: "padel", Name: "Padel", Category: CategoryRacket, Emoji: "🎾"},
	{ID: "yoga", Name: "Yoga", Category: CategoryMind, Emoji: "🧘"},
	{ID: "pilates", Name: "Pilates", Category: CategoryMind, Emoji: "🧘"},
	{ID: "swimming", Name: "Swimming", Category: CategoryWater, Emoji: "🏊"},
	{ID: "surfing", Name: "Surfing", Category: CategoryWater, Emoji: "🏄"},
}

var sportsByID = func() map[string]Sport {
	m := make(map[string]Sport, len(allSports))
	for _, s := range allSports {
		m[s.ID] = s
	}
	return m
}()

// All returns every sport in display order.
func All() []Sport {
	out := make([]Sport, len(allSports))
	copy(out, allSports)
	return out
}

// ByID looks up a sport by identifier.
func ByID(id string) (Sport, bool) {
	s, ok := sportsByID[id]
	return s, ok
}

// IsValidID reports whether the identifier exists in the catalog.
func IsValidID(id string) bool {
	_, ok := sportsByID[id]
	return ok
}

// ByCategory groups the catalog by category. Within a category the display
// order is preserved; categories themselves are sorted for stable output.
func ByCategory() map[string][]Sport {
	m := make(map[string][]Sport)
	for _, s := range allSports {
		m[s.Category] = append(m[s.Category], s)
	}
	return m
}

// Categories returns the sorted list of category names present.
func Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range allSports {
		if !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	sort.Strings(out)
	return out
}

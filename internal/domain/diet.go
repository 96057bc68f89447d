package domain

import "encoding/json"

// Meal identifies one of the four slots of a DietPlan.
type Meal string

// Meal slots in plan order.
const (
	Breakfast Meal = "breakfast"
	Lunch     Meal = "lunch"
	Dinner    Meal = "dinner"
	Snacks    Meal = "snacks"
)

// Meals lists the slots in plan order.
var Meals = []Meal{Breakfast, Lunch, Dinner, Snacks}

// DietPlan holds the food items recommended for each meal slot.
type DietPlan struct {
	Breakfast []string `json:"breakfast"`
	Lunch     []string `json:"lunch"`
	Dinner    []string `json:"dinner"`
	Snacks    []string `json:"snacks"`
}

// NewDietPlan returns a plan with every slot empty but non-nil, so that it
// serialises as lists rather than nulls.
func NewDietPlan() DietPlan {
	return DietPlan{
		Breakfast: []string{},
		Lunch:     []string{},
		Dinner:    []string{},
		Snacks:    []string{},
	}
}

// Slot returns a pointer to the slot for m.
func (d *DietPlan) Slot(m Meal) *[]string {
	switch m {
	case Breakfast:
		return &d.Breakfast
	case Lunch:
		return &d.Lunch
	case Dinner:
		return &d.Dinner
	default:
		return &d.Snacks
	}
}

// Items returns the items of slot m.
func (d DietPlan) Items(m Meal) []string {
	return *d.Slot(m)
}

// Clone returns a deep copy.
func (d DietPlan) Clone() DietPlan {
	out := NewDietPlan()
	for _, m := range Meals {
		*out.Slot(m) = append(*out.Slot(m), d.Items(m)...)
	}
	return out
}

// ReferenceEntry is a reference profile with its precomputed diet plan.
type ReferenceEntry struct {
	Profile HealthProfile `json:"profile"`
	Diet    DietPlan      `json:"diet"`
}

// Population is an immutable, ordered reference table.
type Population struct {
	entries []ReferenceEntry
}

// NewPopulation copies entries into a new population.
func NewPopulation(entries []ReferenceEntry) *Population {
	cp := make([]ReferenceEntry, len(entries))
	for i, e := range entries {
		cp[i] = ReferenceEntry{Profile: e.Profile, Diet: e.Diet.Clone()}
	}
	return &Population{entries: cp}
}

// Len returns the number of entries. A nil population has none.
func (p *Population) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// At returns the i-th entry. The returned plan shares no memory with the population.
func (p *Population) At(i int) ReferenceEntry {
	e := p.entries[i]
	return ReferenceEntry{Profile: e.Profile, Diet: e.Diet.Clone()}
}

// Profile returns the profile of the i-th entry without copying its plan.
func (p *Population) Profile(i int) HealthProfile {
	return p.entries[i].Profile
}

// Entries returns a copy of all entries.
func (p *Population) Entries() []ReferenceEntry {
	out := make([]ReferenceEntry, p.Len())
	for i := range out {
		out[i] = p.At(i)
	}
	return out
}

// UnmarshalJSON decodes a plan, turning missing or null slots into empty ones.
func (d *DietPlan) UnmarshalJSON(data []byte) error {
	type plain DietPlan
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = DietPlan(p)
	for _, m := range Meals {
		if *d.Slot(m) == nil {
			*d.Slot(m) = []string{}
		}
	}
	return nil
}

package domain

// Condition is a health category that selects a food catalog.
type Condition string

// Conditions in the order their foods are appended to a plan.
const (
	Diabetes        Condition = "diabetes"
	HighCholesterol Condition = "cholesterol"
	Thyroid         Condition = "thyroid"
	GeneralHealth   Condition = "general_health"
)

// Conditions lists every category in evaluation order.
var Conditions = []Condition{Diabetes, HighCholesterol, Thyroid, GeneralHealth}

var catalogs = map[Condition][]string{
	Diabetes: {
		"Bitter gourd (Karela) curry",
		"Fenugreek (Methi) leaves",
		"Whole grain roti",
		"Moong dal",
		"Curd with flaxseeds",
		"Sprouted salads",
		"Green leafy vegetables",
		"Cinnamon tea",
		"Jamun (Indian blackberry)",
		"Amla (Indian gooseberry)",
	},
	HighCholesterol: {
		"Oats porridge",
		"Green tea",
		"Garlic in meals",
		"Turmeric milk",
		"Flaxseed chutney",
		"Walnuts",
		"Almonds",
		"Olive oil cooking",
		"Green leafy vegetables",
		"Whole grains",
	},
	Thyroid: {
		"Coconut oil",
		"Seafood",
		"Dairy products",
		"Nuts and seeds",
		"Whole grains",
		"Fresh fruits",
		"Green vegetables",
		"Lentils",
		"Eggs",
		"Berries",
	},
	GeneralHealth: {
		"Khichdi with vegetables",
		"Daliya (broken wheat)",
		"Sprouts salad",
		"Buttermilk",
		"Fresh fruits",
		"Nuts and seeds",
		"Green vegetables",
		"Whole grain roti",
		"Lentil soup",
		"Herbal teas",
	},
}

// Catalog returns a copy of the candidate foods for c.
func Catalog(c Condition) []string {
	return append([]string(nil), catalogs[c]...)
}

// InAnyCatalog reports whether item belongs to at least one catalog.
func InAnyCatalog(item string) bool {
	for _, c := range Conditions {
		for _, food := range catalogs[c] {
			if food == item {
				return true
			}
		}
	}
	return false
}

// Portions is the number of catalog items drawn per meal for each triggered condition.
var Portions = map[Meal]int{
	Breakfast: 2,
	Lunch:     2,
	Dinner:    2,
	Snacks:    1,
}

// HasDiabetesMarkers reports elevated fasting or post-prandial sugar.
func (p HealthProfile) HasDiabetesMarkers() bool {
	return p.FastingBloodSugar > 100 || p.PostPrandialBloodSugar > 140
}

// HasCholesterolMarkers reports elevated total or LDL cholesterol.
func (p HealthProfile) HasCholesterolMarkers() bool {
	return p.Cholesterol > 200 || p.LDLCholesterol > 130
}

// HasThyroidMarkers reports thyroxine outside 0.9–2.3 ng/dL.
func (p HealthProfile) HasThyroidMarkers() bool {
	return p.Thyroxine < 0.9 || p.Thyroxine > 2.3
}

// Conditions returns the triggered categories in evaluation order.
// GeneralHealth is returned alone when nothing else triggers.
func (p HealthProfile) Conditions() []Condition {
	var out []Condition
	if p.HasDiabetesMarkers() {
		out = append(out, Diabetes)
	}
	if p.HasCholesterolMarkers() {
		out = append(out, HighCholesterol)
	}
	if p.HasThyroidMarkers() {
		out = append(out, Thyroid)
	}
	if len(out) == 0 {
		out = append(out, GeneralHealth)
	}
	return out
}

package domain_test

import (
	"errors"
	"testing"

	"labdiet/internal/domain"
)

func profile(fbs, ppbs, t4, chol, ldl, hdl float64) domain.HealthProfile {
	return domain.ProfileFromVector([domain.NumFields]float64{fbs, ppbs, t4, chol, ldl, hdl})
}

func TestProfileFromFields(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]string
		want      domain.HealthProfile
		defaulted int
	}{
		{"empty", map[string]string{}, domain.DefaultProfile(), 6},
		{"nil", nil, domain.DefaultProfile(), 6},
		{
			"one label",
			map[string]string{"Fasting Blood Sugar": "250"},
			profile(250, 120, 1.5, 180, 90, 50),
			5,
		},
		{
			"column keys",
			map[string]string{"LDL_Cholesterol": "140", "Thyroxine": "0.7"},
			profile(90, 120, 0.7, 180, 140, 50),
			4,
		},
		{
			"unparsable falls back",
			map[string]string{"Cholesterol": "high", "HDL Cholesterol": " 61 "},
			profile(90, 120, 1.5, 180, 90, 61),
			5,
		},
		{
			"non-finite falls back",
			map[string]string{"Thyroxine": "NaN", "Cholesterol": "+Inf"},
			domain.DefaultProfile(),
			6,
		},
		{
			"label wins over column",
			map[string]string{"Post Prandial Blood Sugar": "150", "Post_Prandial_Blood_Sugar": "130"},
			profile(90, 150, 1.5, 180, 90, 50),
			5,
		},
		{
			"unknown keys ignored",
			map[string]string{"Hemoglobin": "10.7"},
			domain.DefaultProfile(),
			6,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, defaulted := domain.ProfileFromFields(tc.fields)
			if got != tc.want {
				t.Errorf("profile = %+v; want %+v", got, tc.want)
			}
			if len(defaulted) != tc.defaulted {
				t.Errorf("defaulted %d fields; want %d", len(defaulted), tc.defaulted)
			}
		})
	}
}

func TestParseFieldValue(t *testing.T) {
	if v, err := domain.ParseFieldValue("1.25"); err != nil || v != 1.25 {
		t.Fatalf("ParseFieldValue(1.25) = %v, %v", v, err)
	}
	for _, raw := range []string{"", "  ", "abc", "NaN", "-Inf", "12mg"} {
		if _, err := domain.ParseFieldValue(raw); !errors.Is(err, domain.ErrInvalidFieldValue) {
			t.Errorf("ParseFieldValue(%q) err = %v; want ErrInvalidFieldValue", raw, err)
		}
	}
}

func TestLookupField(t *testing.T) {
	for _, f := range domain.Fields {
		if got, ok := domain.LookupField(f.Label()); !ok || got != f {
			t.Errorf("LookupField(%q) = %v, %v", f.Label(), got, ok)
		}
		if got, ok := domain.LookupField(f.Column()); !ok || got != f {
			t.Errorf("LookupField(%q) = %v, %v", f.Column(), got, ok)
		}
	}
	if _, ok := domain.LookupField("Glucose"); ok {
		t.Error("expected unknown field")
	}
}

func TestConditions(t *testing.T) {
	tests := []struct {
		name    string
		profile domain.HealthProfile
		want    []domain.Condition
	}{
		{"defaults are healthy", domain.DefaultProfile(), []domain.Condition{domain.GeneralHealth}},
		{"fasting", profile(101, 120, 1.5, 180, 90, 50), []domain.Condition{domain.Diabetes}},
		{"boundary is not elevated", profile(100, 140, 0.9, 200, 130, 50), []domain.Condition{domain.GeneralHealth}},
		{"ldl", profile(90, 120, 1.5, 180, 131, 50), []domain.Condition{domain.HighCholesterol}},
		{"low thyroxine", profile(90, 120, 0.8, 180, 90, 50), []domain.Condition{domain.Thyroid}},
		{
			"all three",
			profile(90, 141, 2.4, 201, 90, 50),
			[]domain.Condition{domain.Diabetes, domain.HighCholesterol, domain.Thyroid},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.profile.Conditions()
			if len(got) != len(tc.want) {
				t.Fatalf("Conditions() = %v; want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("Conditions()[%d] = %v; want %v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestPopulationIsImmutable(t *testing.T) {
	plan := domain.NewDietPlan()
	plan.Breakfast = append(plan.Breakfast, "Oats porridge")
	entries := []domain.ReferenceEntry{{Profile: domain.DefaultProfile(), Diet: plan}}

	pop := domain.NewPopulation(entries)
	entries[0].Diet.Breakfast[0] = "Mutated"
	got := pop.At(0)
	got.Diet.Breakfast[0] = "Also mutated"

	if b := pop.At(0).Diet.Breakfast[0]; b != "Oats porridge" {
		t.Errorf("population entry changed to %q", b)
	}
	var nilPop *domain.Population
	if nilPop.Len() != 0 {
		t.Error("nil population should be empty")
	}
}

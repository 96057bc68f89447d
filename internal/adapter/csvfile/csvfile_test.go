package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"labdiet/internal/domain"
	"labdiet/internal/generator"
)

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	s := New(filepath.Join(t.TempDir(), "data", "indian_diet_dataset.csv"))

	if _, err := s.LoadPopulation(ctx); !errors.Is(err, domain.ErrDatasetUnavailable) {
		t.Fatalf("LoadPopulation before save: err = %v", err)
	}

	pop := generator.Generate(50)
	if err := s.SavePopulation(ctx, pop); err != nil {
		t.Fatalf("SavePopulation: %v", err)
	}
	got, err := s.LoadPopulation(ctx)
	if err != nil {
		t.Fatalf("LoadPopulation: %v", err)
	}
	if !reflect.DeepEqual(got.Entries(), pop.Entries()) {
		t.Fatal("loaded population differs from the saved one")
	}

	entries, _ := os.ReadDir(filepath.Dir(s.Path()))
	if len(entries) != 1 {
		t.Errorf("expected only the table in the directory, found %d files", len(entries))
	}
}

func TestRead_PandasExport(t *testing.T) {
	data := `,Fasting_Blood_Sugar,Post_Prandial_Blood_Sugar,Thyroxine,Cholesterol,LDL_Cholesterol,HDL_Cholesterol,Diet_Recommendations
0,97.45,117.2,1.61,224.9,88.1,47.3,"{'breakfast': ['Oats porridge', 'Walnuts'], 'lunch': ['Green tea', 'Almonds'], 'dinner': ['Whole grains', 'Turmeric milk'], 'snacks': ['Garlic in meals']}"
`
	pop, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if pop.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", pop.Len())
	}
	e := pop.At(0)
	if e.Profile.Cholesterol != 224.9 || e.Profile.FastingBloodSugar != 97.45 {
		t.Errorf("unexpected profile %+v", e.Profile)
	}
	if len(e.Diet.Breakfast) != 2 || e.Diet.Snacks[0] != "Garlic in meals" {
		t.Errorf("unexpected diet %+v", e.Diet)
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing column", "Fasting_Blood_Sugar,Diet_Recommendations\n90,{}\n"},
		{"bad number", "Fasting_Blood_Sugar,Post_Prandial_Blood_Sugar,Thyroxine,Cholesterol,LDL_Cholesterol,HDL_Cholesterol,Diet_Recommendations\nabc,1,1,1,1,1,{}\n"},
		{"nan", "Fasting_Blood_Sugar,Post_Prandial_Blood_Sugar,Thyroxine,Cholesterol,LDL_Cholesterol,HDL_Cholesterol,Diet_Recommendations\nNaN,1,1,1,1,1,{}\n"},
		{"bad diet", "Fasting_Blood_Sugar,Post_Prandial_Blood_Sugar,Thyroxine,Cholesterol,LDL_Cholesterol,HDL_Cholesterol,Diet_Recommendations\n1,1,1,1,1,1,oats\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tc.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDecodeDiet_NullSlots(t *testing.T) {
	plan, err := DecodeDiet(`{"breakfast":["Eggs"],"snacks":null}`)
	if err != nil {
		t.Fatalf("DecodeDiet: %v", err)
	}
	if plan.Lunch == nil || plan.Snacks == nil {
		t.Errorf("expected empty slots, got %+v", plan)
	}
}

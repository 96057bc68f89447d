// Package generator synthesizes the reference population of health profiles
// and their rule-based diet plans.
package generator

import (
	"math/rand/v2"

	"labdiet/internal/domain"
)

const (
	// DefaultSamples is the size of the reference population.
	DefaultSamples = 2000
	// DefaultSeed makes the population reproducible across runs.
	DefaultSeed uint64 = 42
)

// Distribution is a normal distribution for one field.
type Distribution struct {
	Mean   float64
	StdDev float64
}

// Distributions holds the per-field distributions in feature order.
var Distributions = [domain.NumFields]Distribution{
	domain.FastingBloodSugar:      {90, 15},
	domain.PostPrandialBloodSugar: {120, 20},
	domain.Thyroxine:              {1.5, 0.3},
	domain.Cholesterol:            {180, 30},
	domain.LDLCholesterol:         {90, 20},
	domain.HDLCholesterol:         {50, 10},
}

// Generate builds n reference entries with the default seed.
func Generate(n int) *domain.Population {
	return GenerateWithSeed(n, DefaultSeed)
}

// GenerateWithSeed builds n reference entries. The same (n, seed) always
// yields identical profiles and plans.
func GenerateWithSeed(n int, seed uint64) *domain.Population {
	if n <= 0 {
		return domain.NewPopulation(nil)
	}
	profiles := Profiles(n, seed)

	// plans draw from their own stream so profile values do not depend on them
	sampler := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	entries := make([]domain.ReferenceEntry, n)
	for i, p := range profiles {
		entries[i] = domain.ReferenceEntry{Profile: p, Diet: Plan(p, sampler)}
	}
	return domain.NewPopulation(entries)
}

// Profiles draws n profiles, one field column at a time.
func Profiles(n int, seed uint64) []domain.HealthProfile {
	r := rand.New(rand.NewPCG(seed, 0))
	cols := make([][]float64, domain.NumFields)
	for _, f := range domain.Fields {
		d := Distributions[f]
		col := make([]float64, n)
		for i := range col {
			col[i] = d.Mean + d.StdDev*r.NormFloat64()
		}
		cols[f] = col
	}

	out := make([]domain.HealthProfile, n)
	for i := range out {
		var v [domain.NumFields]float64
		for _, f := range domain.Fields {
			v[f] = cols[f][i]
		}
		out[i] = domain.ProfileFromVector(v)
	}
	return out
}

// Plan assembles the diet plan for p, sampling from the catalog of every
// triggered condition.
func Plan(p domain.HealthProfile, r *rand.Rand) domain.DietPlan {
	plan := domain.NewDietPlan()
	for _, c := range p.Conditions() {
		catalog := domain.Catalog(c)
		for _, m := range domain.Meals {
			slot := plan.Slot(m)
			*slot = append(*slot, sample(catalog, domain.Portions[m], r)...)
		}
	}
	return plan
}

// sample draws k distinct items using a partial Fisher-Yates shuffle.
func sample(items []string, k int, r *rand.Rand) []string {
	pool := append([]string(nil), items...)
	if k > len(pool) {
		k = len(pool)
	}
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// Package matcher locates the reference profile most similar to a query
// profile: features are standardized against the reference population, the
// population is clustered with k-means, and the nearest neighbour is taken
// from the query's cluster.
package matcher

import (
	"math"

	"labdiet/internal/domain"
)

// Match identifies the reference entry chosen for a query.
type Match struct {
	Index    int                   `json:"index"`
	Cluster  int                   `json:"cluster"`
	Distance float64               `json:"distance"`
	Entry    domain.ReferenceEntry `json:"entry"`
}

// Result is a match together with the defaulted query profile.
type Result struct {
	Profile   domain.HealthProfile
	Defaulted []domain.Field
	Match
}

// Model is a fitted, read-only matcher for one population snapshot. It is
// safe for concurrent use.
type Model struct {
	pop        *domain.Population
	scaler     Scaler
	scaled     []Vector
	clustering Clustering
}

// Fit standardizes and clusters pop. It returns ErrDatasetUnavailable for a
// nil or empty population.
func Fit(pop *domain.Population, opts KMeansOptions) (*Model, error) {
	if pop.Len() == 0 {
		return nil, domain.ErrDatasetUnavailable
	}
	raw := make([]Vector, pop.Len())
	for i := range raw {
		raw[i] = pop.Profile(i).Vector()
	}
	scaler := FitScaler(raw)
	scaled := make([]Vector, len(raw))
	for i, v := range raw {
		scaled[i] = scaler.Transform(v)
	}
	return &Model{
		pop:        pop,
		scaler:     scaler,
		scaled:     scaled,
		clustering: KMeans(scaled, opts),
	}, nil
}

// Population returns the snapshot the model was fitted on.
func (m *Model) Population() *domain.Population { return m.pop }

// Scaler returns the feature statistics.
func (m *Model) Scaler() Scaler { return m.scaler }

// ClusterSizes returns the number of reference entries in each cluster.
func (m *Model) ClusterSizes() []int { return m.clustering.Sizes() }

// Label returns the cluster of the i-th reference entry.
func (m *Model) Label(i int) int { return m.clustering.Labels[i] }

// Assign returns the cluster whose centroid is closest to p.
func (m *Model) Assign(p domain.HealthProfile) int {
	return m.clustering.Nearest(m.scaler.Transform(p.Vector()))
}

// Match finds the nearest reference entry within p's cluster. Ties go to
// the lowest population index. If the cluster has no members the whole
// population is searched.
func (m *Model) Match(p domain.HealthProfile) Match {
	q := m.scaler.Transform(p.Vector())
	cluster := m.clustering.Nearest(q)

	best, bestD := m.nearestIn(q, cluster)
	if best < 0 {
		best, bestD = m.nearestIn(q, -1)
	}
	return Match{
		Index:    best,
		Cluster:  cluster,
		Distance: math.Sqrt(bestD),
		Entry:    m.pop.At(best),
	}
}

// nearestIn scans entries labelled cluster, or every entry when cluster < 0.
func (m *Model) nearestIn(q Vector, cluster int) (int, float64) {
	best, bestD := -1, math.Inf(1)
	for i, v := range m.scaled {
		if cluster >= 0 && m.clustering.Labels[i] != cluster {
			continue
		}
		if d := sqDist(q, v); d < bestD || best < 0 {
			best, bestD = i, d
		}
	}
	return best, bestD
}

// Recommend defaults the query fields and matches the resulting profile.
func (m *Model) Recommend(fields map[string]string) Result {
	p, defaulted := domain.ProfileFromFields(fields)
	return Result{Profile: p, Defaulted: defaulted, Match: m.Match(p)}
}

// Recommend fits a model on pop and returns the diet plan of the closest
// reference entry for the query. Callers serving many queries against the
// same population should Fit once and reuse the Model.
func Recommend(fields map[string]string, pop *domain.Population) (domain.DietPlan, error) {
	m, err := Fit(pop, DefaultKMeansOptions())
	if err != nil {
		return domain.DietPlan{}, err
	}
	return m.Recommend(fields).Entry.Diet, nil
}

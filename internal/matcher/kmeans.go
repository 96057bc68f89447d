package matcher

import (
	"math"
	"math/rand/v2"
)

// KMeansOptions configures clustering.
type KMeansOptions struct {
	K       int
	NInit   int
	MaxIter int
	Tol     float64
	Seed    uint64
}

// DefaultKMeansOptions partitions into five clusters with a fixed seed.
func DefaultKMeansOptions() KMeansOptions {
	return KMeansOptions{K: 5, NInit: 10, MaxIter: 300, Tol: 1e-4, Seed: 42}
}

// Clustering is the result of a k-means fit.
type Clustering struct {
	Centroids []Vector
	Labels    []int
	Inertia   float64
}

// Nearest returns the index of the centroid closest to v. Ties go to the
// lowest index.
func (c Clustering) Nearest(v Vector) int {
	return nearest(c.Centroids, v)
}

// Sizes returns the number of points per cluster.
func (c Clustering) Sizes() []int {
	out := make([]int, len(c.Centroids))
	for _, l := range c.Labels {
		out[l]++
	}
	return out
}

// KMeans partitions points with k-means++ seeding and Lloyd iterations,
// keeping the lowest-inertia result over NInit restarts. K is clamped to
// [1, len(points)]; points must be non-empty.
func KMeans(points []Vector, opts KMeansOptions) Clustering {
	k := opts.K
	if k > len(points) {
		k = len(points)
	}
	if k < 1 {
		k = 1
	}
	nInit := max(opts.NInit, 1)
	maxIter := max(opts.MaxIter, 1)
	tol := opts.Tol * meanVariance(points)

	r := rand.New(rand.NewPCG(opts.Seed, 0))
	var best Clustering
	for run := 0; run < nInit; run++ {
		c := lloyd(points, seedCentroids(points, k, r), maxIter, tol)
		if run == 0 || c.Inertia < best.Inertia {
			best = c
		}
	}
	return best
}

func seedCentroids(points []Vector, k int, r *rand.Rand) []Vector {
	n := len(points)
	centroids := make([]Vector, 0, k)
	centroids = append(centroids, points[r.IntN(n)])

	d2 := make([]float64, n)
	for i, p := range points {
		d2[i] = sqDist(p, centroids[0])
	}
	for len(centroids) < k {
		var total float64
		for _, d := range d2 {
			total += d
		}
		next := r.IntN(n)
		if total > 0 {
			target := r.Float64() * total
			var acc float64
			for i, d := range d2 {
				acc += d
				if acc > target {
					next = i
					break
				}
			}
		}
		c := points[next]
		centroids = append(centroids, c)
		for i, p := range points {
			if d := sqDist(p, c); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centroids
}

func lloyd(points []Vector, centroids []Vector, maxIter int, tol float64) Clustering {
	k := len(centroids)
	labels := make([]int, len(points))
	for iter := 0; iter < maxIter; iter++ {
		assign(points, centroids, labels)

		next := make([]Vector, k)
		counts := make([]int, k)
		for i, p := range points {
			l := labels[i]
			counts[l]++
			for j, x := range p {
				next[l][j] += x
			}
		}
		relocated := map[int]bool{}
		for c := range next {
			if counts[c] == 0 {
				i := farthest(points, centroids, labels, relocated)
				relocated[i] = true
				next[c] = points[i]
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
			}
		}

		var shift float64
		for c := range next {
			shift += sqDist(next[c], centroids[c])
		}
		centroids = next
		if shift <= tol {
			break
		}
	}

	inertia := assign(points, centroids, labels)
	return Clustering{Centroids: centroids, Labels: labels, Inertia: inertia}
}

// assign labels every point with its nearest centroid and returns the inertia.
func assign(points []Vector, centroids []Vector, labels []int) float64 {
	var inertia float64
	for i, p := range points {
		l := nearest(centroids, p)
		labels[i] = l
		inertia += sqDist(p, centroids[l])
	}
	return inertia
}

func nearest(centroids []Vector, v Vector) int {
	best, bestD := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(v, centroid); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

// farthest returns the point furthest from its assigned centroid, skipping
// points already used to refill an empty cluster.
func farthest(points []Vector, centroids []Vector, labels []int, skip map[int]bool) int {
	best, bestD := 0, -1.0
	for i, p := range points {
		if skip[i] {
			continue
		}
		if d := sqDist(p, centroids[labels[i]]); d > bestD {
			best, bestD = i, d
		}
	}
	return best
}

func meanVariance(points []Vector) float64 {
	s := FitScaler(points)
	var v float64
	for _, sd := range s.StdDev {
		v += sd * sd
	}
	return v / float64(len(s.StdDev))
}

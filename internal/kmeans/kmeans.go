// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kmeans partitions vectors into k groups with Lloyd's algorithm,
// k-means++ seeding, and several seeded restarts.
//
// Restarts run in parallel but each draws from its own seed, derived up
// front from Config.Seed, so the result never depends on scheduling. The
// run with the lowest inertia wins; ties go to the earliest run.
package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidK is returned when Config.K is not positive.
var ErrInvalidK = errors.New("kmeans: k must be positive")

// Config controls a fit. Zero fields take the defaults noted below.
type Config struct {
	K         int
	Seed      int64
	Restarts  int     // default 10
	MaxIter   int     // default 300
	Tolerance float64 // relative to mean feature variance; default 1e-4

	// Workers caps concurrent restarts. Zero means GOMAXPROCS.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.Restarts <= 0 {
		c.Restarts = 10
	}
	if c.MaxIter <= 0 {
		c.MaxIter = 300
	}
	if c.Tolerance <= 0 {
		c.Tolerance = 1e-4
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Result is the winning partition.
type Result struct {
	Labels     []int
	Centroids  [][]float64
	Sizes      []int
	Inertia    float64
	Iterations int
	Run        int
}

// Fit clusters the rows of x into cfg.K groups. Rows must share one
// dimension. Fewer distinct rows than K is not an error: the surplus
// clusters end up empty and keep their seed centroid.
func Fit(ctx context.Context, x [][]float64, cfg Config) (*Result, error) {
	if cfg.K <= 0 {
		return nil, ErrInvalidK
	}
	cfg = cfg.withDefaults()

	pts, err := newPoints(x)
	if err != nil {
		return nil, err
	}
	if pts.n() == 0 {
		return &Result{
			Labels:    []int{},
			Centroids: make([][]float64, cfg.K),
			Sizes:     make([]int, cfg.K),
		}, nil
	}

	tol := cfg.Tolerance * pts.meanVariance()

	master := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.Restarts)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	runs := make([]*Result, cfg.Restarts)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range seeds {
		g.Go(func() error {
			r, err := lloyd(gctx, pts, cfg.K, cfg.MaxIter, tol, seeds[i])
			if err != nil {
				return fmt.Errorf("restart %d: %w", i, err)
			}
			r.Run = i
			runs[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := runs[0]
	for _, r := range runs[1:] {
		if r.Inertia < best.Inertia {
			best = r
		}
	}
	return best, nil
}

// points caches the nonzero layout and squared norms of the input so that
// sparse TF-IDF rows cost O(nnz) per distance.
type points struct {
	rows [][]float64
	nz   [][]int
	sq   []float64
	dim  int
}

func newPoints(x [][]float64) (*points, error) {
	p := &points{rows: x, nz: make([][]int, len(x)), sq: make([]float64, len(x))}
	if len(x) > 0 {
		p.dim = len(x[0])
	}
	for i, row := range x {
		if len(row) != p.dim {
			return nil, fmt.Errorf("row %d has dimension %d, want %d", i, len(row), p.dim)
		}
		for j, v := range row {
			if v != 0 {
				p.nz[i] = append(p.nz[i], j)
				p.sq[i] += v * v
			}
		}
	}
	return p, nil
}

func (p *points) n() int { return len(p.rows) }

func (p *points) dot(i int, c []float64) float64 {
	var s float64
	row := p.rows[i]
	for _, j := range p.nz[i] {
		s += row[j] * c[j]
	}
	return s
}

// dist2 is the squared Euclidean distance between row i and centroid c,
// given the squared norm of c.
func (p *points) dist2(i int, c []float64, csq float64) float64 {
	d := p.sq[i] + csq - 2*p.dot(i, c)
	if d < 0 {
		return 0
	}
	return d
}

func (p *points) meanVariance() float64 {
	if p.dim == 0 {
		return 0
	}
	sum := make([]float64, p.dim)
	sumSq := make([]float64, p.dim)
	for i, row := range p.rows {
		for _, j := range p.nz[i] {
			sum[j] += row[j]
			sumSq[j] += row[j] * row[j]
		}
	}
	n := float64(p.n())
	var total float64
	for j := range sum {
		m := sum[j] / n
		total += sumSq[j]/n - m*m
	}
	return total / float64(p.dim)
}

func sqNorm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return s
}

// seedPlusPlus picks k initial centroids with k-means++ weighting. When every
// remaining point coincides with a chosen centroid, the next pick is uniform.
func seedPlusPlus(p *points, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	pick := func(i int) {
		c := make([]float64, p.dim)
		copy(c, p.rows[i])
		centroids = append(centroids, c)
	}

	pick(rng.Intn(p.n()))
	d2 := make([]float64, p.n())
	for i := range d2 {
		d2[i] = p.dist2(i, centroids[0], sqNorm(centroids[0]))
	}

	for len(centroids) < k {
		var total float64
		for _, d := range d2 {
			total += d
		}
		next := -1
		if total > 0 {
			r := rng.Float64() * total
			for i, d := range d2 {
				r -= d
				if r < 0 {
					next = i
					break
				}
			}
			if next < 0 {
				// Rounding left r at or just above zero.
				for i := len(d2) - 1; i >= 0; i-- {
					if d2[i] > 0 {
						next = i
						break
					}
				}
			}
		} else {
			next = rng.Intn(p.n())
		}
		pick(next)

		c := centroids[len(centroids)-1]
		csq := sqNorm(c)
		for i := range d2 {
			if d := p.dist2(i, c, csq); d < d2[i] {
				d2[i] = d
			}
		}
	}
	return centroids
}

// assign sets labels to the nearest centroid (lowest index on ties) and
// returns how many labels changed and the total inertia.
func assign(p *points, centroids [][]float64, labels []int) (int, float64) {
	csq := make([]float64, len(centroids))
	for c, v := range centroids {
		csq[c] = sqNorm(v)
	}
	changed := 0
	var inertia float64
	for i := range labels {
		best, bestD := 0, math.Inf(1)
		for c, v := range centroids {
			if d := p.dist2(i, v, csq[c]); d < bestD {
				best, bestD = c, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed++
		}
		inertia += bestD
	}
	return changed, inertia
}

// update recomputes centroids as member means. Empty clusters keep their
// previous centroid. It returns the new centroids, sizes, and the summed
// squared centroid shift.
func update(p *points, prev [][]float64, labels []int) ([][]float64, []int, float64) {
	k := len(prev)
	next := make([][]float64, k)
	sizes := make([]int, k)
	for c := range next {
		next[c] = make([]float64, p.dim)
	}
	for i, c := range labels {
		sizes[c]++
		row := p.rows[i]
		for _, j := range p.nz[i] {
			next[c][j] += row[j]
		}
	}
	var shift float64
	for c := range next {
		if sizes[c] == 0 {
			copy(next[c], prev[c])
			continue
		}
		inv := 1 / float64(sizes[c])
		for j := range next[c] {
			next[c][j] *= inv
			d := next[c][j] - prev[c][j]
			shift += d * d
		}
	}
	return next, sizes, shift
}

func lloyd(ctx context.Context, p *points, k, maxIter int, tol float64, seed int64) (*Result, error) {
	rng := rand.New(rand.NewSource(seed))
	centroids := seedPlusPlus(p, k, rng)
	labels := make([]int, p.n())
	for i := range labels {
		labels[i] = -1
	}

	iter := 0
	for iter < maxIter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iter++
		changed, _ := assign(p, centroids, labels)
		var shift float64
		centroids, _, shift = update(p, centroids, labels)
		if changed == 0 || shift <= tol {
			break
		}
	}

	// Labels must agree with the centroids that are returned.
	_, inertia := assign(p, centroids, labels)
	sizes := make([]int, k)
	for _, c := range labels {
		sizes[c]++
	}
	return &Result{
		Labels:     labels,
		Centroids:  centroids,
		Sizes:      sizes,
		Inertia:    inertia,
		Iterations: iter,
	}, nil
}

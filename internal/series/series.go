package series

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultSeed is the fixed seed used for the noise sequence.
	DefaultSeed uint64 = 42

	// MinRows and MaxRows bound the row count accepted from the sidebar.
	MinRows = 10
	MaxRows = 200
	// DefaultRows is the initial slider value.
	DefaultRows = 50
	// PreviewRows is the number of rows shown in the sample table.
	PreviewRows = 10
)

// ErrRowsOutOfRange is returned by ValidateRows.
var ErrRowsOutOfRange = errors.New("row count out of range")

// Point is a single dated value of the walk.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is an ascending-by-date random walk.
type Series struct {
	Points []Point `json:"points"`
	Seed   uint64  `json:"seed"`
}

// Generate builds rowCount points ending at reference's calendar date, oldest
// first. Values are the cumulative sum of standard normal draws from a
// generator seeded with seed. A non-positive rowCount yields an empty series.
func Generate(rowCount int, reference time.Time, seed uint64) Series {
	if rowCount <= 0 {
		return Series{Points: []Point{}, Seed: seed}
	}

	noise := Noise(rowCount, seed)
	values := floats.CumSum(make([]float64, rowCount), noise)

	points := make([]Point, rowCount)
	for i := range points {
		points[i] = Point{
			Date:  reference.AddDate(0, 0, i-(rowCount-1)),
			Value: values[i],
		}
	}

	return Series{Points: points, Seed: seed}
}

// Noise returns n standard normal samples from a generator seeded with seed.
// The same (n, seed) always produces the same samples, and a longer run
// shares its prefix with a shorter one.
func Noise(n int, seed uint64) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, seed)}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Points)
}

// Head returns at most the first n points.
func (s Series) Head(n int) []Point {
	if n < 0 {
		n = 0
	}
	if n > len(s.Points) {
		n = len(s.Points)
	}
	return s.Points[:n]
}

// Values returns the value column.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Last returns the most recent point and false for an empty series.
func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// ValidateRows reports whether n lies within [MinRows, MaxRows].
func ValidateRows(n int) error {
	if n < MinRows || n > MaxRows {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrRowsOutOfRange, n, MinRows, MaxRows)
	}
	return nil
}

// ClampRows forces n into [MinRows, MaxRows].
func ClampRows(n int) int {
	switch {
	case n < MinRows:
		return MinRows
	case n > MaxRows:
		return MaxRows
	default:
		return n
	}
}

// Package geo scatters sample coordinates around a map center.
package geo

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Generate draws count points whose latitude and longitude offsets from
// center are independent normal samples with standard deviation sigma.
// A non-positive count returns an empty slice.
func Generate(center Point, count int, sigma float64, src rand.Source) []Point {
	if count <= 0 {
		return []Point{}
	}

	offset := distuv.Normal{Mu: 0, Sigma: math.Max(sigma, 0), Src: src}
	points := make([]Point, count)
	for i := range points {
		points[i] = Point{
			Lat: center.Lat + offset.Rand(),
			Lon: center.Lon + offset.Rand(),
		}
	}
	return points
}

// Box is the bounding rectangle of a set of points.
type Box struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Bounds returns the smallest box holding every point, and false when
// points is empty.
func Bounds(points []Point) (Box, bool) {
	if len(points) == 0 {
		return Box{}, false
	}
	b := Box{MinLat: points[0].Lat, MaxLat: points[0].Lat, MinLon: points[0].Lon, MaxLon: points[0].Lon}
	for _, p := range points[1:] {
		b.MinLat = math.Min(b.MinLat, p.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Lat)
		b.MinLon = math.Min(b.MinLon, p.Lon)
		b.MaxLon = math.Max(b.MaxLon, p.Lon)
	}
	return b, true
}

// Center returns the midpoint of the box.
func (b Box) Center() Point {
	return Point{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// Package series generates the synthetic time series shown on the dashboard.
//
// A series is a random walk over consecutive calendar days ending at a
// reference time. The noise comes from a standard normal distribution drawn
// from a generator seeded with an explicit value, so the values for a given
// row count are identical on every call while the dates follow the
// reference time.
//
//	s := series.Generate(50, time.Now(), series.DefaultSeed)
//	for _, p := range s.Head(10) {
//	    fmt.Println(p.Date.Format("2006-01-02"), p.Value)
//	}
//
// Chart selection (line, area or bar) is carried as a ChartType and passed
// through to the renderer untouched.
package series

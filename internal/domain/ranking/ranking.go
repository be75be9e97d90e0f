// Package ranking computes percentile standings and dense ordinal ranks
// over chapter populations.
package ranking

import (
	"math"
	"sort"

	"github.com/amshq/pulse/internal/domain/model"
)

// Direction sets which end of a metric counts as best.
type Direction int

const (
	// Descending ranks higher values first. It is the default for every
	// shipped dimension.
	Descending Direction = iota
	// Ascending ranks lower values first.
	Ascending
)

const (
	// neutralPercentile is reported when a population is too small to
	// compare against: a lone chapter is neither ahead nor behind.
	neutralPercentile = 50.0

	percentilePrecision = 10 // one decimal
	percentScale        = 100
)

// Member is one chapter's value for the metric being ranked.
type Member struct {
	ID    string
	Value float64
}

// Ranked is a member with its computed standing.
type Ranked struct {
	ID         string
	Value      float64
	Rank       int
	Percentile float64
}

// PercentileRank reports the share of the population the value strictly
// beats, 0..100 to one decimal. The population is expected to include the
// subject itself; ties do not count as beaten. Populations of fewer than
// two finite members yield the neutral 50. Non-finite population members
// are ignored; a non-finite value reads as neutral.
func PercentileRank(value float64, population []float64, dir Direction) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return neutralPercentile
	}

	n, beaten := 0, 0
	for _, p := range population {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		n++
		if beats(value, p, dir) {
			beaten++
		}
	}
	if n <= 1 {
		return neutralPercentile
	}

	return roundPercentile(float64(beaten) / float64(n) * percentScale)
}

// Table sorts the members best-first and assigns dense ranks: ties share a
// rank and the next distinct value takes the following one. Each row also
// carries its percentile against the whole table. Order is deterministic,
// value first and ID ascending within ties.
func Table(members []Member, dir Direction) []Ranked {
	if len(members) == 0 {
		return nil
	}

	ranked := make([]Ranked, len(members))
	for i, m := range members {
		ranked[i] = Ranked{ID: m.ID, Value: m.Value}
	}
	sortRanked(ranked, dir)

	n := len(ranked)
	rank := 1
	for start := 0; start < n; {
		end := start
		for end < n && ranked[end].Value == ranked[start].Value {
			end++
		}
		percentile := neutralPercentile
		if n > 1 {
			// Everything after the tie group is strictly worse.
			percentile = roundPercentile(float64(n-end) / float64(n) * percentScale)
		}
		for i := start; i < end; i++ {
			ranked[i].Rank = rank
			ranked[i].Percentile = percentile
		}
		rank++
		start = end
	}

	return ranked
}

// Rank locates one member's standing within the population. The population
// must be non-empty and contain the member.
func Rank(id string, members []Member, dir Direction) (model.RankResult, error) {
	if len(members) == 0 {
		return model.RankResult{}, ErrInvalidArgument
	}

	for _, row := range Table(members, dir) {
		if row.ID == id {
			return model.RankResult{
				Percentile: row.Percentile,
				Rank:       row.Rank,
				OutOf:      len(members),
			}, nil
		}
	}

	return model.RankResult{}, ErrNotFound
}

func beats(value, other float64, dir Direction) bool {
	if dir == Ascending {
		return other > value
	}
	return other < value
}

func sortRanked(ranked []Ranked, dir Direction) {
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			if dir == Ascending {
				return ranked[i].Value < ranked[j].Value
			}
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].ID < ranked[j].ID
	})
}

func roundPercentile(v float64) float64 {
	return math.Round(v*percentilePrecision) / percentilePrecision
}

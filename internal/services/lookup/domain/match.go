package domain

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// NormalizeName lowercases a name and collapses interior whitespace so
// matching ignores case and spacing differences.
func NormalizeName(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}

// Score rates how closely candidate matches query.
//
// exact holds iff the two are equal under case-insensitive,
// whitespace-normalized comparison. similarity is in [0, 1] and decreases
// monotonically with edit distance. Score is total: empty inputs score 0
// unless both are empty, which is an exact match.
func Score(query, candidate string) (exact bool, similarity float64) {
	q := NormalizeName(query)
	c := NormalizeName(candidate)

	if q == c {
		return true, 1
	}
	if q == "" || c == "" {
		return false, 0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(q, c, false)
	distance := dmp.DiffLevenshtein(diffs)

	longest := len([]rune(q))
	if l := len([]rune(c)); l > longest {
		longest = l
	}
	if distance >= longest {
		return false, 0
	}
	return false, 1 - float64(distance)/float64(longest)
}

// Scored pairs an entity with its match classification for one query.
type Scored struct {
	Entity     Entity
	Exact      bool
	Similarity float64
}

// ScoreAll scores every entity against query.
func ScoreAll(entities []Entity, query string) []Scored {
	out := make([]Scored, 0, len(entities))
	for _, e := range entities {
		exact, similarity := Score(query, e.Name)
		out = append(out, Scored{Entity: e, Exact: exact, Similarity: similarity})
	}
	return out
}

// SortScored orders candidates by similarity descending, breaking ties by
// shorter name, then lexicographic normalized name, then collection id, so
// equal-similarity candidates always display in the same order.
func SortScored(list []Scored) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		an, bn := NormalizeName(a.Entity.Name), NormalizeName(b.Entity.Name)
		if len(an) != len(bn) {
			return len(an) < len(bn)
		}
		if an != bn {
			return an < bn
		}
		return a.Entity.CollectionID < b.Entity.CollectionID
	})
}

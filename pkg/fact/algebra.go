package fact

import (
	"strings"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

// maxGroupPairScan bounds the pairwise contradiction scan within one
// subject:attribute group. Groups are small in practice; a runaway group is
// truncated instead of going quadratic.
const maxGroupPairScan = 25

// Union returns the set union of two claim collections keyed by the claim
// identity key, preserving one representative claim per key. Claims from a
// win over claims from b on key collisions.
func Union(a, b []common.FactClaim) []common.FactClaim {
	out := make([]common.FactClaim, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, c := range a {
		key := c.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	for _, c := range b {
		key := c.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Intersection returns the claims of a whose identity key also appears in b.
func Intersection(a, b []common.FactClaim) []common.FactClaim {
	inB := make(map[string]struct{}, len(b))
	for _, c := range b {
		inB[c.Key()] = struct{}{}
	}

	out := make([]common.FactClaim, 0)
	seen := make(map[string]struct{})
	for _, c := range a {
		key := c.Key()
		if _, ok := inB[key]; !ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Difference returns the claims of a whose identity key does not appear in b.
func Difference(a, b []common.FactClaim) []common.FactClaim {
	inB := make(map[string]struct{}, len(b))
	for _, c := range b {
		inB[c.Key()] = struct{}{}
	}

	out := make([]common.FactClaim, 0)
	seen := make(map[string]struct{})
	for _, c := range a {
		key := c.Key()
		if _, ok := inB[key]; ok {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Deduplicate removes claims with duplicate identity keys, first seen wins.
func Deduplicate(claims []common.FactClaim) []common.FactClaim {
	out := make([]common.FactClaim, 0, len(claims))
	seen := make(map[string]struct{}, len(claims))
	for _, c := range claims {
		key := c.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// ContradictionPair is a pair of claims about the same subject and attribute
// holding different values.
type ContradictionPair struct {
	A common.FactClaim
	B common.FactClaim
}

// FindContradictions groups claims by subject:attribute and emits a pair for
// every two claims within a group whose values differ case-insensitively.
func FindContradictions(claims []common.FactClaim) []ContradictionPair {
	grouped := make(map[string][]common.FactClaim)
	for _, c := range claims {
		key := c.PairKey()
		grouped[key] = append(grouped[key], c)
	}

	var pairs []ContradictionPair
	for _, group := range grouped {
		if len(group) > maxGroupPairScan {
			group = group[:maxGroupPairScan]
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if !strings.EqualFold(group[i].Value, group[j].Value) {
					pairs = append(pairs, ContradictionPair{A: group[i], B: group[j]})
				}
			}
		}
	}
	return pairs
}

// GroupBySubject partitions claims by lowercased subject.
func GroupBySubject(claims []common.FactClaim) map[string][]common.FactClaim {
	out := make(map[string][]common.FactClaim)
	for _, c := range claims {
		key := strings.ToLower(c.Subject)
		out[key] = append(out[key], c)
	}
	return out
}

// GroupByAttribute partitions claims by lowercased attribute.
func GroupByAttribute(claims []common.FactClaim) map[string][]common.FactClaim {
	out := make(map[string][]common.FactClaim)
	for _, c := range claims {
		key := strings.ToLower(c.Attribute)
		out[key] = append(out[key], c)
	}
	return out
}

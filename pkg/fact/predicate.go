package fact

import (
	"strings"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"

	"github.com/araddon/dateparse"
)

// DefaultDateTolerance treats two date values within one calendar day as
// equivalent rather than contradictory.
const DefaultDateTolerance = 24 * time.Hour

// Comparer implements the fuzzy support/contradiction predicate over claim
// pairs. The date tolerance is configurable; beyond same-day dates and
// substring containment no further equivalence rules are applied.
type Comparer struct {
	DateTolerance time.Duration
}

// NewComparer returns a Comparer with the default tolerance.
func NewComparer() Comparer {
	return Comparer{DateTolerance: DefaultDateTolerance}
}

// Supports reports whether b asserts the same fact as a: identical identity
// keys.
func (c Comparer) Supports(a, b common.FactClaim) bool {
	return a.Key() == b.Key()
}

// Contradicts reports whether a and b talk about the same subject and
// attribute but hold incompatible values. The check is symmetric.
func (c Comparer) Contradicts(a, b common.FactClaim) bool {
	if !strings.EqualFold(a.Subject, b.Subject) || !strings.EqualFold(a.Attribute, b.Attribute) {
		return false
	}
	return !c.equivalentValues(a.Value, b.Value)
}

// SupportedBy returns the first candidate that supports f, if any.
func (c Comparer) SupportedBy(f common.FactClaim, candidates []common.FactClaim) (common.FactClaim, bool) {
	for _, cand := range candidates {
		if c.Supports(f, cand) {
			return cand, true
		}
	}
	return common.FactClaim{}, false
}

// ContradictsAny returns the first candidate that contradicts f, if any.
func (c Comparer) ContradictsAny(f common.FactClaim, candidates []common.FactClaim) (common.FactClaim, bool) {
	for _, cand := range candidates {
		if c.Contradicts(f, cand) {
			return cand, true
		}
	}
	return common.FactClaim{}, false
}

func (c Comparer) equivalentValues(a, b string) bool {
	av := strings.TrimSpace(a)
	bv := strings.TrimSpace(b)
	if strings.EqualFold(av, bv) {
		return true
	}

	if at, aok := parseDateValue(av); aok {
		if bt, bok := parseDateValue(bv); bok {
			tolerance := c.DateTolerance
			if tolerance <= 0 {
				tolerance = DefaultDateTolerance
			}
			diff := at.Sub(bt)
			if diff < 0 {
				diff = -diff
			}
			return diff <= tolerance
		}
	}

	// Partial location and name matches count as agreement.
	al := strings.ToLower(av)
	bl := strings.ToLower(bv)
	return strings.Contains(al, bl) || strings.Contains(bl, al)
}

// parseDateValue parses a claim value as a date. Bare numbers are rejected:
// dateparse would happily read "42" as a year, which is never what a claim
// value means.
func parseDateValue(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if _, err := time.Parse("2006", value); err == nil {
		return time.Time{}, false
	}
	if !strings.ContainsAny(value, "-/ .,:") {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

package fact

import (
	"testing"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

func claim(subject, attribute, value string) common.FactClaim {
	return common.FactClaim{
		ClaimType: common.ClaimTypeOther,
		Subject:   subject,
		Attribute: attribute,
		Value:     value,
	}
}

func TestKey_CaseInsensitiveAndStable(t *testing.T) {
	a := claim("A", "B", "C")
	b := claim("a", "b", "c")
	if a.Key() != b.Key() {
		t.Fatalf("expected equal keys, got %q vs %q", a.Key(), b.Key())
	}
	if a.Key() != "a:b:c" {
		t.Fatalf("unexpected key: %q", a.Key())
	}
}

func TestUnion_InclusionExclusion(t *testing.T) {
	tests := []struct {
		name string
		a    []common.FactClaim
		b    []common.FactClaim
	}{
		{
			name: "disjoint",
			a:    []common.FactClaim{claim("s1", "a1", "v1"), claim("s2", "a2", "v2")},
			b:    []common.FactClaim{claim("s3", "a3", "v3")},
		},
		{
			name: "overlapping",
			a:    []common.FactClaim{claim("s1", "a1", "v1"), claim("s2", "a2", "v2")},
			b:    []common.FactClaim{claim("S1", "A1", "V1"), claim("s3", "a3", "v3")},
		},
		{
			name: "identical",
			a:    []common.FactClaim{claim("s1", "a1", "v1")},
			b:    []common.FactClaim{claim("s1", "a1", "v1")},
		},
		{
			name: "one empty",
			a:    nil,
			b:    []common.FactClaim{claim("s1", "a1", "v1")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			union := Union(tt.a, tt.b)
			inter := Intersection(tt.a, tt.b)
			aSize := len(Deduplicate(tt.a))
			bSize := len(Deduplicate(tt.b))
			if len(union) != aSize+bSize-len(inter) {
				t.Fatalf("|union|=%d, want |A|+|B|-|inter| = %d+%d-%d", len(union), aSize, bSize, len(inter))
			}
		})
	}
}

func TestDifference(t *testing.T) {
	a := []common.FactClaim{claim("s1", "a1", "v1"), claim("s2", "a2", "v2")}
	b := []common.FactClaim{claim("S1", "A1", "V1")}

	diff := Difference(a, b)
	if len(diff) != 1 {
		t.Fatalf("expected 1 claim in difference, got %d", len(diff))
	}
	if diff[0].Subject != "s2" {
		t.Fatalf("expected s2 to survive, got %q", diff[0].Subject)
	}
}

func TestDeduplicate_FirstSeenWins(t *testing.T) {
	first := claim("s", "a", "v")
	first.Confidence = 0.9
	second := claim("S", "A", "V")
	second.Confidence = 0.1

	out := Deduplicate([]common.FactClaim{first, second})
	if len(out) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(out))
	}
	if out[0].Confidence != 0.9 {
		t.Fatalf("expected first-seen claim to win, got confidence %v", out[0].Confidence)
	}
}

func TestFindContradictions(t *testing.T) {
	claims := []common.FactClaim{
		claim("narrator", "location", "Chicago"),
		claim("Narrator", "Location", "Portland"),
		claim("narrator", "location", "chicago"),
		claim("Sarah", "relationship", "sister"),
	}

	pairs := FindContradictions(claims)
	// Chicago/Portland and Portland/chicago clash; Chicago/chicago agree.
	if len(pairs) != 2 {
		t.Fatalf("expected 2 contradiction pairs, got %d", len(pairs))
	}
	for _, p := range pairs {
		if p.A.PairKey() != p.B.PairKey() {
			t.Fatalf("pair spans different groups: %q vs %q", p.A.PairKey(), p.B.PairKey())
		}
	}
}

func TestGroupBySubjectAndAttribute(t *testing.T) {
	claims := []common.FactClaim{
		claim("Sarah", "relationship", "sister"),
		claim("sarah", "location", "Denver"),
		claim("narrator", "location", "Chicago"),
	}

	bySubject := GroupBySubject(claims)
	if len(bySubject["sarah"]) != 2 {
		t.Fatalf("expected 2 claims for sarah, got %d", len(bySubject["sarah"]))
	}

	byAttribute := GroupByAttribute(claims)
	if len(byAttribute["location"]) != 2 {
		t.Fatalf("expected 2 location claims, got %d", len(byAttribute["location"]))
	}
}

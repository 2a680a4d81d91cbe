package fact

import (
	"context"
	"errors"
	"testing"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

func findClaim(claims []common.FactClaim, attribute string) (common.FactClaim, bool) {
	for _, c := range claims {
		if c.Attribute == attribute {
			return c, true
		}
	}
	return common.FactClaim{}, false
}

func TestRuleExtractor_Location(t *testing.T) {
	e := NewRuleExtractor()
	claims, err := e.Extract(context.Background(), "We finally moved to Chicago last week.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loc, ok := findClaim(claims, "location")
	if !ok {
		t.Fatalf("expected a location claim, got %v", claims)
	}
	if loc.Subject != NarratorSubject || loc.Value != "Chicago last week" && loc.Value != "Chicago" {
		t.Fatalf("unexpected location claim: %+v", loc)
	}
	if loc.ClaimType != common.ClaimTypeLocation {
		t.Fatalf("unexpected claim type: %v", loc.ClaimType)
	}
}

func TestRuleExtractor_Relationship(t *testing.T) {
	e := NewRuleExtractor()
	claims, err := e.Extract(context.Background(), "Sarah is my sister, and she lives nearby.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rel, ok := findClaim(claims, "relationship")
	if !ok {
		t.Fatalf("expected a relationship claim, got %v", claims)
	}
	if rel.Subject != "Sarah" || rel.Value != "sister" {
		t.Fatalf("unexpected relationship claim: %+v", rel)
	}
}

func TestRuleExtractor_Date(t *testing.T) {
	e := NewRuleExtractor()
	claims, err := e.Extract(context.Background(), "The wedding was on 2024-06-03.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	date, ok := findClaim(claims, "date")
	if !ok {
		t.Fatalf("expected a date claim, got %v", claims)
	}
	if date.Value != "2024-06-03" {
		t.Fatalf("unexpected date value: %q", date.Value)
	}
}

func TestRuleExtractor_SelfDescription(t *testing.T) {
	e := NewRuleExtractor()
	claims, err := e.Extract(context.Background(), "I am a very confident person. I am going home now.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var selfClaims []common.FactClaim
	for _, c := range claims {
		if c.Attribute == "self_description" {
			selfClaims = append(selfClaims, c)
		}
	}
	if len(selfClaims) != 1 {
		t.Fatalf("expected exactly 1 self-description claim, got %d (%v)", len(selfClaims), selfClaims)
	}
}

func TestRuleExtractor_NoMatch(t *testing.T) {
	e := NewRuleExtractor()
	claims, err := e.Extract(context.Background(), "The weather. Nothing else.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(claims) != 0 {
		t.Fatalf("expected no claims, got %v", claims)
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("First sentence. Second one! Third?")
	if len(got) != 3 {
		t.Fatalf("expected 3 sentences, got %d: %v", len(got), got)
	}
}

type fixedExtractor struct {
	claims []common.FactClaim
	err    error
	calls  int
}

func (f *fixedExtractor) Extract(_ context.Context, _ string) ([]common.FactClaim, error) {
	f.calls++
	return f.claims, f.err
}

func TestCachingExtractor_CacheHit(t *testing.T) {
	rules := &fixedExtractor{claims: []common.FactClaim{claim("narrator", "location", "Chicago")}}
	e := NewCachingExtractor(rules, nil)

	ctx := context.Background()
	if _, err := e.Extract(ctx, "same text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := e.Extract(ctx, "same text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules.calls != 1 {
		t.Fatalf("expected 1 rule extraction for identical text, got %d", rules.calls)
	}
}

func TestCachingExtractor_FallbackOnlyWhenEmpty(t *testing.T) {
	rules := &fixedExtractor{claims: []common.FactClaim{claim("narrator", "location", "Chicago")}}
	fallback := &fixedExtractor{claims: []common.FactClaim{claim("narrator", "location", "Portland")}}
	e := NewCachingExtractor(rules, fallback)

	got, err := e.Extract(context.Background(), "rules found something")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.calls != 0 {
		t.Fatal("fallback must not run when rules produced claims")
	}
	if len(got) != 1 || got[0].Value != "Chicago" {
		t.Fatalf("unexpected claims: %v", got)
	}

	empty := &fixedExtractor{}
	e2 := NewCachingExtractor(empty, fallback)
	got, err = e2.Extract(context.Background(), "rules found nothing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback.calls != 1 {
		t.Fatalf("expected fallback to run once, got %d", fallback.calls)
	}
	if len(got) != 1 || got[0].Value != "Portland" {
		t.Fatalf("unexpected claims: %v", got)
	}
}

func TestCachingExtractor_FallbackErrorDegrades(t *testing.T) {
	empty := &fixedExtractor{}
	failing := &fixedExtractor{err: errors.New("provider timeout")}
	e := NewCachingExtractor(empty, failing)

	got, err := e.Extract(context.Background(), "anything")
	if err != nil {
		t.Fatalf("extractor must never surface provider errors, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty claim set, got %v", got)
	}
}

func TestSanitizeLLMClaim(t *testing.T) {
	tests := []struct {
		name   string
		input  llmClaim
		wantOK bool
		check  func(t *testing.T, c common.FactClaim)
	}{
		{
			name:   "valid claim",
			input:  llmClaim{ClaimType: "location", Subject: "narrator", Attribute: "location", Value: "Chicago", Confidence: 0.9},
			wantOK: true,
			check: func(t *testing.T, c common.FactClaim) {
				if c.ClaimType != common.ClaimTypeLocation || c.Confidence != 0.9 {
					t.Fatalf("unexpected claim: %+v", c)
				}
			},
		},
		{
			name:   "missing value rejected",
			input:  llmClaim{ClaimType: "location", Subject: "narrator", Attribute: "location"},
			wantOK: false,
		},
		{
			name:   "invented type downweighted",
			input:  llmClaim{ClaimType: "vibes", Subject: "narrator", Attribute: "mood", Value: "good", Confidence: 1.0},
			wantOK: true,
			check: func(t *testing.T, c common.FactClaim) {
				if c.ClaimType != common.ClaimTypeOther {
					t.Fatalf("expected type other, got %v", c.ClaimType)
				}
				if c.Confidence >= 1.0 {
					t.Fatalf("expected down-weighted confidence, got %v", c.Confidence)
				}
			},
		},
		{
			name:   "overrange confidence clamped",
			input:  llmClaim{ClaimType: "date", Subject: "s", Attribute: "a", Value: "v", Confidence: 3.0},
			wantOK: true,
			check: func(t *testing.T, c common.FactClaim) {
				if c.Confidence != 1.0 {
					t.Fatalf("expected clamped confidence, got %v", c.Confidence)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sanitizeLLMClaim(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.check != nil && ok {
				tt.check(t, got)
			}
		})
	}
}

package fact

import (
	"context"
	"regexp"
	"strings"

	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
)

// NarratorSubject is the subject assigned to first-person assertions.
const NarratorSubject = "narrator"

// Extractor turns free text into fact claims. Implementations must drop
// claims with missing identity fields silently and never fail the caller for
// quality reasons.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]common.FactClaim, error)
}

type rulePattern struct {
	re         *regexp.Regexp
	claimType  common.ClaimType
	confidence float64
	// build maps a regexp match to a claim; returning an invalid claim
	// drops the match.
	build func(match []string) common.FactClaim
}

// RuleExtractor is the deterministic pattern-based claim extractor. It is the
// cheap default strategy; the LLM path only runs when this one finds nothing.
type RuleExtractor struct {
	patterns []rulePattern
}

// NewRuleExtractor creates a rule extractor with the built-in pattern set.
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{patterns: builtinPatterns()}
}

// Extract runs every pattern over each sentence of text and returns the
// deduplicated claims. It never returns an error; the signature keeps it
// interchangeable with the LLM extractor.
func (e *RuleExtractor) Extract(_ context.Context, text string) ([]common.FactClaim, error) {
	var claims []common.FactClaim
	for _, sentence := range SplitSentences(text) {
		for _, p := range e.patterns {
			matches := p.re.FindAllStringSubmatch(sentence, -1)
			for _, m := range matches {
				claim := p.build(m)
				if !claim.Valid() {
					continue
				}
				claim.ClaimType = p.claimType
				claim.Confidence = p.confidence
				claim.Context = strings.TrimSpace(sentence)
				claims = append(claims, claim)
			}
		}
	}
	return Deduplicate(claims), nil
}

var (
	reLocation = regexp.MustCompile(`\b(?i:moved to|moving to|move to|live in|living in|arrived in|landed in|staying in|back in)\s+([A-Z][\w .'-]{1,40}?)(?:[,.;!?]|$)`)
	reDate     = regexp.MustCompile(`\b([A-Z][\w '-]{1,40}?)\s+(?i:was|is|happened|took place)\s+on\s+((?:\d{4}-\d{2}-\d{2})|(?:[A-Z][a-z]+ \d{1,2}(?:st|nd|rd|th)?(?:,? \d{4})?))`)
	reRelation = regexp.MustCompile(`\b([A-Z][a-z]+)\s+is\s+my\s+([a-z][a-z -]{2,30}?)(?:[,.;!?]|$)`)
	reMet      = regexp.MustCompile(`\b(?i:met|saw|talked to|spoke with|visited|ran into|had (?:lunch|dinner|coffee) with)\s+([A-Z][a-z]+(?: [A-Z][a-z]+)?)\b`)
	reSelf     = regexp.MustCompile(`(?i)\bI(?:'m| am)\s+(?:a |an |very |really |such a |so )?([a-z][a-z -]{2,40}?)(?:[,.;!?]|$)`)
	reEvent    = regexp.MustCompile(`(?i)\bI\s+(started|quit|finished|signed|graduated|married|bought|sold|joined|left)\s+([\w][\w .'-]{1,50}?)(?:[,.;!?]|$)`)
)

func builtinPatterns() []rulePattern {
	return []rulePattern{
		{
			re:         reLocation,
			claimType:  common.ClaimTypeLocation,
			confidence: 0.75,
			build: func(m []string) common.FactClaim {
				return common.FactClaim{
					Subject:   NarratorSubject,
					Attribute: "location",
					Value:     strings.TrimSpace(m[1]),
				}
			},
		},
		{
			re:         reDate,
			claimType:  common.ClaimTypeDate,
			confidence: 0.8,
			build: func(m []string) common.FactClaim {
				return common.FactClaim{
					Subject:   strings.TrimSpace(m[1]),
					Attribute: "date",
					Value:     strings.TrimSpace(m[2]),
				}
			},
		},
		{
			re:         reRelation,
			claimType:  common.ClaimTypeRelationship,
			confidence: 0.85,
			build: func(m []string) common.FactClaim {
				return common.FactClaim{
					Subject:   strings.TrimSpace(m[1]),
					Attribute: "relationship",
					Value:     strings.TrimSpace(m[2]),
				}
			},
		},
		{
			re:         reMet,
			claimType:  common.ClaimTypeCharacter,
			confidence: 0.6,
			build: func(m []string) common.FactClaim {
				return common.FactClaim{
					Subject:   strings.TrimSpace(m[1]),
					Attribute: "interaction",
					Value:     "met",
				}
			},
		},
		{
			re:         reSelf,
			claimType:  common.ClaimTypeAttribute,
			confidence: 0.55,
			build: func(m []string) common.FactClaim {
				value := strings.TrimSpace(m[1])
				if isStopSelfDescription(value) {
					return common.FactClaim{}
				}
				return common.FactClaim{
					Subject:   NarratorSubject,
					Attribute: "self_description",
					Value:     value,
				}
			},
		},
		{
			re:         reEvent,
			claimType:  common.ClaimTypeEvent,
			confidence: 0.7,
			build: func(m []string) common.FactClaim {
				return common.FactClaim{
					Subject:   NarratorSubject,
					Attribute: strings.ToLower(strings.TrimSpace(m[1])),
					Value:     strings.TrimSpace(m[2]),
				}
			},
		},
	}
}

// isStopSelfDescription filters auxiliary phrases that the self-description
// pattern over-matches ("I am going", "I am not sure").
func isStopSelfDescription(value string) bool {
	first := value
	if idx := strings.IndexByte(value, ' '); idx > 0 {
		first = value[:idx]
	}
	switch strings.ToLower(first) {
	case "going", "gonna", "about", "not", "still", "just", "also", "sure", "here", "there", "back", "trying":
		return true
	}
	return false
}

// SplitSentences breaks text into sentences with a simple terminator
// heuristic. Fragments shorter than a few characters are skipped.
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder
	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if len(sentence) >= 3 {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\t' {
				flush()
			}
		}
	}
	flush()

	return sentences
}

package fact

import (
	"context"
	"strings"

	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/util"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/ai"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
)

type llmClaim struct {
	ClaimType  string  `json:"claim_type" jsonschema_description:"One of: date, location, character, event, relationship, attribute, other"`
	Subject    string  `json:"subject" jsonschema_description:"Who or what the claim is about; 'narrator' for first-person statements"`
	Attribute  string  `json:"attribute" jsonschema_description:"The property being asserted, e.g. location, relationship, date"`
	Value      string  `json:"value" jsonschema_description:"The asserted value of the attribute"`
	Confidence float64 `json:"confidence" jsonschema_description:"Certainty the claim is genuinely asserted, between 0 and 1"`
}

type llmClaimsResponse struct {
	Claims []llmClaim `json:"claims" jsonschema_description:"Atomic factual claims found in the journal entry"`
}

// unknownTypePenalty down-weights claims whose type the model invented.
const unknownTypePenalty = 0.8

// extractMaxRetries bounds attempts against a provider returning malformed
// structured output.
const extractMaxRetries = 3

// LLMExtractor asks the language model for claims. It is the expensive
// fallback strategy; output is parsed against a strict schema and validated
// field by field, never trusted as-is.
type LLMExtractor struct {
	client ai.ContinuityAIClient
}

// NewLLMExtractor creates an extractor backed by the given AI client.
func NewLLMExtractor(client ai.ContinuityAIClient) *LLMExtractor {
	return &LLMExtractor{client: client}
}

// Extract requests claims from the model. Provider failures and malformed
// responses yield an empty claim set, not an error: the caller degrades to
// whatever the rule-based path produced.
func (e *LLMExtractor) Extract(ctx context.Context, text string) ([]common.FactClaim, error) {
	if e.client == nil || strings.TrimSpace(text) == "" {
		return nil, nil
	}

	prompt := util.TruncateRunes(text, ai.EmbedMaxChars)

	var res llmClaimsResponse
	err := util.RetryErrWithContext(ctx, extractMaxRetries, func(ctx context.Context) error {
		res = llmClaimsResponse{}
		return e.client.GenerateCompletionWithFormat(
			ctx,
			"extract_fact_claims",
			"Extract atomic factual claims from a journal entry.",
			prompt,
			&res,
			ai.WithSystemPrompts(ai.ExtractClaimsPrompt),
		)
	})
	if err != nil {
		logger.Warn("[Fact][LLMExtract] Model extraction failed, degrading to empty claim set", "err", err)
		return nil, nil
	}

	claims := make([]common.FactClaim, 0, len(res.Claims))
	for _, raw := range res.Claims {
		claim, ok := sanitizeLLMClaim(raw)
		if !ok {
			continue
		}
		claims = append(claims, claim)
	}
	return Deduplicate(claims), nil
}

// sanitizeLLMClaim validates one model-produced claim. Claims with missing
// identity fields are rejected; unrecognized types and out-of-range
// confidences are corrected and down-weighted rather than trusted.
func sanitizeLLMClaim(raw llmClaim) (common.FactClaim, bool) {
	claim := common.FactClaim{
		Subject:   strings.TrimSpace(raw.Subject),
		Attribute: strings.TrimSpace(raw.Attribute),
		Value:     strings.TrimSpace(raw.Value),
	}
	if !claim.Valid() {
		return common.FactClaim{}, false
	}

	confidence := raw.Confidence
	if confidence <= 0 {
		confidence = 0.5
	}
	confidence = common.ClampUnit(confidence)

	switch common.ClaimType(strings.ToLower(strings.TrimSpace(raw.ClaimType))) {
	case common.ClaimTypeDate, common.ClaimTypeLocation, common.ClaimTypeCharacter,
		common.ClaimTypeEvent, common.ClaimTypeRelationship, common.ClaimTypeAttribute,
		common.ClaimTypeOther:
		claim.ClaimType = common.ClaimType(strings.ToLower(strings.TrimSpace(raw.ClaimType)))
	default:
		claim.ClaimType = common.ClaimTypeOther
		confidence *= unknownTypePenalty
	}

	claim.Confidence = confidence
	return claim, true
}

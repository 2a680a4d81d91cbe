package verify

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/util"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/fact"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"
)

const (
	// CandidateWindow bounds the temporal neighborhood searched for
	// evidence around the entry under verification.
	CandidateWindow = 30 * 24 * time.Hour

	// maxSubjectSearches caps how many distinct claim subjects are used
	// for full-text candidate lookup.
	maxSubjectSearches = 5

	// subjectSearchLimit caps hits per subject search.
	subjectSearchLimit = 20

	// maxCandidates caps the total candidate set.
	maxCandidates = 50

	// snippetLength bounds evidence snippets.
	snippetLength = 160
)

// Status confidence weights. The aggregate confidence is the weighted mean
// over per-claim outcomes.
var statusWeights = map[common.VerificationStatus]float64{
	common.StatusVerified:     1,
	common.StatusUnverified:   0.5,
	common.StatusAmbiguous:    0.3,
	common.StatusContradicted: 0,
}

// Verifier checks entries and single claims against the owner's history.
// Evidence gathering is best-effort: failures in any one source shrink the
// candidate set instead of failing the verification.
type Verifier struct {
	store     store.ContinuityStorage
	extractor fact.Extractor
	cmp       fact.Comparer
}

// NewVerifier creates a Verifier over the given storage and extractor.
func NewVerifier(st store.ContinuityStorage, extractor fact.Extractor, cmp fact.Comparer) *Verifier {
	return &Verifier{store: st, extractor: extractor, cmp: cmp}
}

// VerifyEntry verifies one entry against the owner's history: extract the
// entry's claims, gather candidate entries near in time or mentioning the
// same subjects, classify each claim against the candidates' claims, and
// persist both the claims and the aggregate result.
//
// A missing entry surfaces ErrNotFound. Any other failure degrades the
// result to unverified with zero confidence rather than erroring.
func (v *Verifier) VerifyEntry(ctx context.Context, entryID string) (common.VerificationResult, error) {
	entry, err := v.store.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return common.VerificationResult{}, err
		}
		logger.Error("[Verify] Failed to load entry, degrading", "entry", entryID, "err", err)
		return degradedResult(), nil
	}

	claims, err := v.store.GetClaimsByEntry(ctx, entryID)
	if err != nil {
		logger.Warn("[Verify] Stored claim lookup failed", "entry", entryID, "err", err)
		claims = nil
	}
	if len(claims) == 0 {
		claims, err = v.extractor.Extract(ctx, entry.Content)
		if err != nil {
			logger.Warn("[Verify] Claim extraction failed, degrading", "entry", entryID, "err", err)
			claims = nil
		}
	}
	for i := range claims {
		claims[i].EntryID = entry.ID
	}

	if len(claims) == 0 {
		result := common.VerificationResult{
			Status:          common.StatusUnverified,
			ConfidenceScore: statusWeights[common.StatusUnverified],
		}
		v.persist(ctx, entry, claims, &result)
		return result, nil
	}

	candidates := v.gatherCandidates(ctx, entry, claims)
	candidateClaims := v.extractCandidateClaims(ctx, candidates)

	result := v.aggregate(ctx, entry, claims, candidates, candidateClaims)
	v.persist(ctx, entry, claims, &result)
	return result, nil
}

// VerifyClaim checks one claim against the owner's stored claim history
// without persisting anything.
func (v *Verifier) VerifyClaim(ctx context.Context, ownerID string, claim common.FactClaim) (common.FactCheckDetail, error) {
	detail := common.FactCheckDetail{Claim: claim, Status: common.StatusUnverified}
	if !claim.Valid() {
		return detail, nil
	}

	history, err := v.store.FindClaimsByPair(ctx, ownerID, claim.Subject, claim.Attribute)
	if err != nil {
		logger.Warn("[Verify] Claim history lookup failed, degrading", "owner", ownerID, "err", err)
		return detail, nil
	}

	for _, h := range history {
		if h.EntryID == claim.EntryID && claim.EntryID != "" {
			continue
		}
		ev := common.Evidence{EntryID: h.EntryID, Snippet: util.Snippet(h.Context, snippetLength)}
		switch {
		case v.cmp.Supports(claim, h):
			detail.Supporting = append(detail.Supporting, ev)
		case v.cmp.Contradicts(claim, h):
			detail.Contradicting = append(detail.Contradicting, ev)
		}
	}

	detail.Status = classify(len(detail.Supporting), len(detail.Contradicting))
	return detail, nil
}

// gatherCandidates collects candidate evidence entries: the temporal
// neighborhood of the entry plus full-text hits for the most frequent claim
// subjects, deduplicated and capped.
func (v *Verifier) gatherCandidates(ctx context.Context, entry common.Entry, claims []common.FactClaim) []common.Entry {
	var candidates []common.Entry
	seen := map[string]bool{entry.ID: true}

	around := time.Now()
	if entry.Timestamp != nil {
		around = *entry.Timestamp
	}

	near, err := v.store.GetEntriesNear(ctx, entry.OwnerID, around, CandidateWindow, entry.ID)
	if err != nil {
		logger.Warn("[Verify] Temporal candidate lookup failed", "entry", entry.ID, "err", err)
	}
	for _, c := range near {
		if !seen[c.ID] {
			seen[c.ID] = true
			candidates = append(candidates, c)
		}
	}

	for _, subject := range topSubjects(claims, maxSubjectSearches) {
		hits, err := v.store.SearchEntriesBySubject(ctx, entry.OwnerID, subject, subjectSearchLimit)
		if err != nil {
			logger.Warn("[Verify] Subject candidate lookup failed", "subject", subject, "err", err)
			continue
		}
		for _, c := range hits {
			if !seen[c.ID] {
				seen[c.ID] = true
				candidates = append(candidates, c)
			}
		}
	}

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

// extractCandidateClaims runs extraction over each candidate entry. Entries
// whose extraction fails contribute nothing.
func (v *Verifier) extractCandidateClaims(ctx context.Context, candidates []common.Entry) map[string][]common.FactClaim {
	out := make(map[string][]common.FactClaim, len(candidates))
	for _, c := range candidates {
		claims, err := v.extractor.Extract(ctx, c.Content)
		if err != nil {
			logger.Warn("[Verify] Candidate extraction failed", "entry", c.ID, "err", err)
			continue
		}
		if len(claims) > 0 {
			out[c.ID] = claims
		}
	}
	return out
}

// aggregate classifies every claim against the candidate claims plus the
// owner's stored claim history and folds the per-claim outcomes into one
// result.
func (v *Verifier) aggregate(ctx context.Context, entry common.Entry, claims []common.FactClaim, candidates []common.Entry, candidateClaims map[string][]common.FactClaim) common.VerificationResult {
	result := common.VerificationResult{
		Status:         common.StatusUnverified,
		ExtractedFacts: claims,
	}

	var confidenceSum float64
	supporting := map[string]bool{}
	contradicting := map[string]bool{}
	var hasContradicted, hasAmbiguous, hasVerified bool

	for _, claim := range claims {
		detail := common.FactCheckDetail{Claim: claim}

		for _, candidate := range candidates {
			for _, h := range candidateClaims[candidate.ID] {
				ev := common.Evidence{
					EntryID:   candidate.ID,
					Timestamp: candidate.Timestamp,
					Snippet:   util.Snippet(h.Context, snippetLength),
				}
				switch {
				case v.cmp.Supports(claim, h):
					detail.Supporting = append(detail.Supporting, ev)
				case v.cmp.Contradicts(claim, h):
					detail.Contradicting = append(detail.Contradicting, ev)
				}
			}
		}

		if claim.Valid() {
			history, err := v.store.FindClaimsByPair(ctx, entry.OwnerID, claim.Subject, claim.Attribute)
			if err != nil {
				logger.Warn("[Verify] Claim history lookup failed", "entry", entry.ID, "err", err)
			}
			for _, h := range history {
				if h.EntryID == "" || h.EntryID == entry.ID {
					continue
				}
				if _, fresh := candidateClaims[h.EntryID]; fresh {
					continue
				}
				ev := common.Evidence{EntryID: h.EntryID, Snippet: util.Snippet(h.Context, snippetLength)}
				switch {
				case v.cmp.Supports(claim, h):
					detail.Supporting = append(detail.Supporting, ev)
				case v.cmp.Contradicts(claim, h):
					detail.Contradicting = append(detail.Contradicting, ev)
				}
			}
		}

		detail.Status = classify(len(detail.Supporting), len(detail.Contradicting))
		confidenceSum += statusWeights[detail.Status]

		switch detail.Status {
		case common.StatusContradicted:
			hasContradicted = true
		case common.StatusAmbiguous:
			hasAmbiguous = true
		case common.StatusVerified:
			hasVerified = true
		}

		for _, ev := range detail.Supporting {
			supporting[ev.EntryID] = true
		}
		for _, ev := range detail.Contradicting {
			contradicting[ev.EntryID] = true
		}
		result.ContradictionCount += len(detail.Contradicting)
		result.EvidenceCount += len(detail.Supporting) + len(detail.Contradicting)
		result.PerFactDetails = append(result.PerFactDetails, detail)
	}

	// Any contradiction dominates. Ambiguity only dominates when nothing
	// verified cleanly.
	switch {
	case hasContradicted:
		result.Status = common.StatusContradicted
	case hasAmbiguous && !hasVerified:
		result.Status = common.StatusAmbiguous
	case hasVerified:
		result.Status = common.StatusVerified
	}

	if len(claims) > 0 {
		result.ConfidenceScore = confidenceSum / float64(len(claims))
	}
	result.SupportingEntries = keys(supporting)
	result.ContradictingEntries = keys(contradicting)
	return result
}

func (v *Verifier) persist(ctx context.Context, entry common.Entry, claims []common.FactClaim, result *common.VerificationResult) {
	if err := v.store.SaveClaims(ctx, entry.OwnerID, claims); err != nil {
		logger.Error("[Verify] Failed to persist claims", "entry", entry.ID, "err", err)
	}
	if err := v.store.SaveVerification(ctx, entry.ID, *result); err != nil {
		logger.Error("[Verify] Failed to persist verification", "entry", entry.ID, "err", err)
	}
}

// classify maps evidence counts to a per-claim status. Mixed evidence is
// ambiguous; contradiction alone dominates support absence.
func classify(supporting, contradicting int) common.VerificationStatus {
	switch {
	case supporting > 0 && contradicting > 0:
		return common.StatusAmbiguous
	case contradicting > 0:
		return common.StatusContradicted
	case supporting > 0:
		return common.StatusVerified
	default:
		return common.StatusUnverified
	}
}

// topSubjects returns up to limit distinct claim subjects, most frequent
// first, ties by first appearance.
func topSubjects(claims []common.FactClaim, limit int) []string {
	counts := map[string]int{}
	var order []string
	for _, c := range claims {
		key := c.Subject
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order
}

func keys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func degradedResult() common.VerificationResult {
	return common.VerificationResult{Status: common.StatusUnverified, ConfidenceScore: 0}
}

package common

import (
	"strings"
	"time"
)

// ClaimType categorizes what kind of assertion a fact claim makes.
type ClaimType string

const (
	ClaimTypeDate         ClaimType = "date"
	ClaimTypeLocation     ClaimType = "location"
	ClaimTypeCharacter    ClaimType = "character"
	ClaimTypeEvent        ClaimType = "event"
	ClaimTypeRelationship ClaimType = "relationship"
	ClaimTypeAttribute    ClaimType = "attribute"
	ClaimTypeOther        ClaimType = "other"
)

// FactClaim is an atomic (subject, attribute, value) assertion extracted from
// a record's text. Claims are immutable once stored except for confidence
// revision, and are owned by the entry they were extracted from.
type FactClaim struct {
	ID         string    `json:"id,omitempty"`
	EntryID    string    `json:"entry_id,omitempty"`
	ClaimType  ClaimType `json:"claim_type"`
	Subject    string    `json:"subject"`
	Attribute  string    `json:"attribute"`
	Value      string    `json:"value"`
	Confidence float64   `json:"confidence"`
	Context    string    `json:"context,omitempty"`
}

// Key returns the case-insensitive identity key of the claim. Key equality is
// the basis for deduplication and support.
func (f FactClaim) Key() string {
	return strings.ToLower(f.Subject) + ":" + strings.ToLower(f.Attribute) + ":" + strings.ToLower(f.Value)
}

// PairKey returns the case-insensitive subject:attribute key used to group
// claims that talk about the same thing.
func (f FactClaim) PairKey() string {
	return strings.ToLower(f.Subject) + ":" + strings.ToLower(f.Attribute)
}

// Valid reports whether the claim carries all three identity fields. Claims
// failing this check are dropped, not surfaced as errors.
func (f FactClaim) Valid() bool {
	return strings.TrimSpace(f.Subject) != "" &&
		strings.TrimSpace(f.Attribute) != "" &&
		strings.TrimSpace(f.Value) != ""
}

// MemoryComponent is a typed, tagged unit of extracted meaning belonging to a
// record. Components are produced by an upstream extraction step and consumed
// read-only by the graph builder and drift detectors.
type MemoryComponent struct {
	ID                 string     `json:"id"`
	OwnerID            string     `json:"owner_id"`
	EntryID            string     `json:"entry_id,omitempty"`
	ComponentType      string     `json:"component_type"`
	Text               string     `json:"text"`
	CharactersInvolved []string   `json:"characters_involved,omitempty"`
	Location           string     `json:"location,omitempty"`
	Timestamp          *time.Time `json:"timestamp,omitempty"`
	Tags               []string   `json:"tags,omitempty"`
	ImportanceScore    float64    `json:"importance_score"`
	Embedding          []float32  `json:"embedding,omitempty"`
}

// RelationshipType names the signal that produced a graph edge.
type RelationshipType string

const (
	RelationshipSemantic  RelationshipType = "semantic"
	RelationshipSocial    RelationshipType = "social"
	RelationshipThematic  RelationshipType = "thematic"
	RelationshipNarrative RelationshipType = "narrative"
	RelationshipTemporal  RelationshipType = "temporal"
)

// MinEdgeWeight is the minimum signal strength worth persisting.
const MinEdgeWeight = 0.3

// GraphEdge is a directed, weighted, typed edge between two memory
// components. At most one edge exists per (source, target, type) tuple;
// violating inserts are treated as no-ops.
type GraphEdge struct {
	SourceID         string           `json:"source_id"`
	TargetID         string           `json:"target_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Weight           float64          `json:"weight"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
}

// EventType names the class of a detected continuity event.
type EventType string

const (
	EventContradiction       EventType = "contradiction"
	EventIdentityDrift       EventType = "identity_drift"
	EventEmotionalTransition EventType = "emotional_transition"
	EventEmotionalLoop       EventType = "emotional_loop"
)

// ContinuityEvent is a persisted detection result. The log is append-only:
// detection never mutates a stored event's core fields, though an external
// workflow may later mark it resolved.
type ContinuityEvent struct {
	ID               string         `json:"id,omitempty"`
	OwnerID          string         `json:"owner_id"`
	EventType        EventType      `json:"event_type"`
	Description      string         `json:"description"`
	SourceComponents []string       `json:"source_components"`
	Severity         int            `json:"severity"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	Resolved         bool           `json:"resolved"`
	CreatedAt        time.Time      `json:"created_at,omitempty"`
}

// VerificationStatus classifies how a claim or record compares to history.
type VerificationStatus string

const (
	StatusVerified     VerificationStatus = "verified"
	StatusUnverified   VerificationStatus = "unverified"
	StatusContradicted VerificationStatus = "contradicted"
	StatusAmbiguous    VerificationStatus = "ambiguous"
)

// Evidence is one historical record supporting or contradicting a claim.
type Evidence struct {
	EntryID   string     `json:"entry_id"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Snippet   string     `json:"snippet,omitempty"`
}

// FactCheckDetail is the per-claim outcome inside a verification result.
type FactCheckDetail struct {
	Claim         FactClaim          `json:"claim"`
	Status        VerificationStatus `json:"status"`
	Supporting    []Evidence         `json:"supporting,omitempty"`
	Contradicting []Evidence         `json:"contradicting,omitempty"`
}

// VerificationResult is the aggregate outcome of verifying one record
// against history. It is recomputed on demand and idempotent for unchanged
// inputs.
type VerificationResult struct {
	Status               VerificationStatus `json:"status"`
	ConfidenceScore      float64            `json:"confidence_score"`
	EvidenceCount        int                `json:"evidence_count"`
	ContradictionCount   int                `json:"contradiction_count"`
	SupportingEntries    []string           `json:"supporting_entries"`
	ContradictingEntries []string           `json:"contradicting_entries"`
	ExtractedFacts       []FactClaim        `json:"extracted_facts"`
	PerFactDetails       []FactCheckDetail  `json:"per_fact_details"`
}

// Entry is the schema-relevant view of a journaling record this core reads.
type Entry struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ClampUnit clamps confidences and similarities to [0, 1].
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampSeverity clamps severities to [1, 10].
func ClampSeverity(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

// ClampWeight clamps edge weights to [MinEdgeWeight, 1].
func ClampWeight(v float64) float64 {
	if v < MinEdgeWeight {
		return MinEdgeWeight
	}
	if v > 1 {
		return 1
	}
	return v
}

package ai

// ExtractClaimsPrompt instructs the model to pull atomic factual claims out of
// a journal entry. Used only when the rule-based extractor found nothing.
const ExtractClaimsPrompt = `
You extract atomic factual claims from a personal journal entry.

A claim is a single (subject, attribute, value) assertion that could later be
checked against other entries. Examples:
- "I moved to Portland last month" -> subject: "narrator", attribute: "location", value: "Portland", claim_type: "location"
- "Sarah is my sister" -> subject: "Sarah", attribute: "relationship", value: "sister", claim_type: "relationship"
- "The wedding was on June 3rd" -> subject: "wedding", attribute: "date", value: "June 3rd", claim_type: "date"

Rules:
- claim_type must be one of: date, location, character, event, relationship, attribute, other.
- Use "narrator" as the subject for first-person statements.
- Every claim needs a non-empty subject, attribute and value. Skip anything vague.
- confidence is your certainty the claim is genuinely asserted by the text, between 0 and 1.
- Do not invent facts that are not in the text.

Return only the claims found in the entry below.
`

// ResolutionSuggestionPrompt asks the model for a short suggestion on how a
// logged contradiction could be resolved.
const ResolutionSuggestionPrompt = `
You help a journaling user reconcile a contradiction between their own entries.

You are given a detected contradiction with its description and the text of the
entries involved. Suggest, in two or three sentences, how the user might
resolve it: which version looks more reliable and why, or what clarifying
detail would settle it. Be concrete and neutral. Never tell the user what to
believe; point at the evidence.
`

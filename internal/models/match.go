package models

const (
	MinScore = 0
	MaxScore = 100

	// FallbackExplanation is reported when a candidate could not be scored.
	FallbackExplanation = "Unable to calculate match score"
)

// MatchResult is one candidate's score against one job description.
type MatchResult struct {
	CandidateID       string   `json:"candidate_id"`
	CandidateName     string   `json:"candidate_name,omitempty"`
	ResumeURL         string   `json:"resume_url,omitempty"`
	Score             int      `json:"score"`
	MatchedQualifiers []string `json:"matched_qualifiers"`
	Explanation       string   `json:"explanation"`
}

// FallbackMatch is the deterministic result for a failed scoring call.
func FallbackMatch(candidateID string) MatchResult {
	return MatchResult{
		CandidateID:       candidateID,
		Score:             0,
		MatchedQualifiers: []string{},
		Explanation:       FallbackExplanation,
	}
}

// ClampScore bounds an untrusted score to [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

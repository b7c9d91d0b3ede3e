package domain

import "time"

// ScoredCandidate is one candidate with their computed compatibility score.
type ScoredCandidate struct {
	CandidateID string  `json:"candidate_id"`
	Score       float64 `json:"score"`
}

// CandidateBatch is the ordered result of one batch draw, highest score
// first. Immutable once returned.
type CandidateBatch []ScoredCandidate

// CandidateIDs returns the candidate IDs in batch order.
func (b CandidateBatch) CandidateIDs() []string {
	ids := make([]string, 0, len(b))
	for _, c := range b {
		ids = append(ids, c.CandidateID)
	}
	return ids
}

// MatchRecord is the persisted outcome of a batch entry. Weekly batches are
// written with staggered [CreatedAt, ExpiresAt) windows, so at any moment at
// most one batch per user is live; records expire regardless of interaction.
type MatchRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CandidateID string    `json:"candidate_id"`
	Score       float64   `json:"score"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Active reports whether now falls inside the record's live window.
func (m MatchRecord) Active(now time.Time) bool {
	return !now.Before(m.CreatedAt) && now.Before(m.ExpiresAt)
}

// SimilarProfile is a coarse recall result from a profile vector index.
type SimilarProfile struct {
	UserID string
	Score  float64
}

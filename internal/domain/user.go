package domain

import (
	"time"
)

// Gender is a user's stated gender, or a match-preference value.
type Gender string

const (
	GenderMale      Gender = "male"
	GenderFemale    Gender = "female"
	GenderNonBinary Gender = "non_binary"

	// GenderAny is valid only as a preference value and matches every gender.
	GenderAny Gender = "any"
)

// MatchPreferences are the hard bounds a user sets on who they can be
// matched with.
type MatchPreferences struct {
	MinAge   int    `json:"min_age"`
	MaxAge   int    `json:"max_age"`
	Gender   Gender `json:"gender"`
	Location string `json:"location"`
}

// User is the slice of a user record the matching core consumes. The
// surrounding service owns the full profile.
type User struct {
	ID          string           `json:"id"`
	Age         int              `json:"age"`
	Gender      Gender           `json:"gender"`
	Location    string           `json:"location"`
	LastActive  time.Time        `json:"last_active"`
	Premium     bool             `json:"premium"`
	Preferences MatchPreferences `json:"preferences"`
}

// Photo is a user photo with an optionally cached feature vector. A cached
// vector is only valid for the extractor version it was computed with.
type Photo struct {
	ID       string `json:"id"`
	OwnerID  string `json:"owner_id"`
	ImageURL string `json:"image_url"`

	FeatureVector    []float64 `json:"-"`
	ExtractorVersion string    `json:"-"`
}

// PhotoRating is one user's explicit rating of one photo on a 1-5 scale.
// Unique per (user, photo); re-rating overwrites in place.
type PhotoRating struct {
	UserID  string    `json:"user_id"`
	PhotoID string    `json:"photo_id"`
	Rating  int       `json:"rating"`
	RatedAt time.Time `json:"rated_at"`
}

// Rating scale bounds for PhotoRating values.
const (
	RatingScaleMin = 1
	RatingScaleMax = 5
)

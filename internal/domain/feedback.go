package domain

import (
	"time"
)

// FeedbackKind is a closed enumeration of the feedback signals the engine
// understands. Explicit kinds come from deliberate user actions on a match;
// implicit kinds are inferred from behaviour.
type FeedbackKind string

const (
	FeedbackLike    FeedbackKind = "like"
	FeedbackDislike FeedbackKind = "dislike"

	FeedbackProfileView   FeedbackKind = "profile_view"
	FeedbackChatInitiated FeedbackKind = "chat_initiated"
	FeedbackChatReplied   FeedbackKind = "chat_replied"
	FeedbackExtendedChat  FeedbackKind = "extended_chat"
)

var explicitFeedbackWeights = map[FeedbackKind]float64{
	FeedbackLike:    1.0,
	FeedbackDislike: -1.0,
}

var implicitFeedbackWeights = map[FeedbackKind]float64{
	FeedbackProfileView:   0.2,
	FeedbackChatInitiated: 0.5,
	FeedbackChatReplied:   0.8,
	FeedbackExtendedChat:  1.0,
}

// ParseExplicitFeedbackKind validates s as an explicit feedback kind.
func ParseExplicitFeedbackKind(s string) (FeedbackKind, error) {
	kind := FeedbackKind(s)
	if _, ok := explicitFeedbackWeights[kind]; !ok {
		return "", &InvalidFeedbackKindError{Kind: s}
	}
	return kind, nil
}

// ParseImplicitFeedbackKind validates s as an implicit feedback kind.
func ParseImplicitFeedbackKind(s string) (FeedbackKind, error) {
	kind := FeedbackKind(s)
	if _, ok := implicitFeedbackWeights[kind]; !ok {
		return "", &InvalidFeedbackKindError{Kind: s}
	}
	return kind, nil
}

// ParseFeedbackKind validates s as any known feedback kind.
func ParseFeedbackKind(s string) (FeedbackKind, error) {
	if kind, err := ParseExplicitFeedbackKind(s); err == nil {
		return kind, nil
	}
	return ParseImplicitFeedbackKind(s)
}

// Explicit reports whether the kind is an explicit signal.
func (k FeedbackKind) Explicit() bool {
	_, ok := explicitFeedbackWeights[k]
	return ok
}

// Weight returns the fixed score associated with the kind. Zero for
// unknown kinds; construct kinds through the Parse functions.
func (k FeedbackKind) Weight() float64 {
	if w, ok := explicitFeedbackWeights[k]; ok {
		return w
	}
	return implicitFeedbackWeights[k]
}

// FeedbackEvent is one recorded signal from ActorID about TargetID.
type FeedbackEvent struct {
	ActorID  string       `json:"actor_id"`
	TargetID string       `json:"target_id"`
	Kind     FeedbackKind `json:"kind"`
	Score    float64      `json:"score"`
	At       time.Time    `json:"at"`
}

// Recency decay constants for training weights: each event's score is
// scaled by max(minRecencyWeight, 1 - ageDays/recencyDecayDays).
const (
	recencyDecayDays  = 30.0
	minRecencyWeight  = 0.5
	trainingWeightMin = 0.1
)

// TrainingWeights converts a user's feedback history into per-target
// training sample weights. Targets with feedback get their recency-decayed
// score sums min-max normalized into [trainingWeightMin, 1.0]; targets with
// no feedback get a neutral 1.0. If every target with feedback has the same
// aggregate score, normalization is skipped and all weights are 1.0.
func TrainingWeights(events []FeedbackEvent, targetIDs []string, now time.Time) map[string]float64 {
	wanted := make(map[string]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		wanted[id] = struct{}{}
	}

	sums := make(map[string]float64)
	for _, ev := range events {
		if _, ok := wanted[ev.TargetID]; !ok {
			continue
		}
		ageDays := now.Sub(ev.At).Hours() / 24
		decay := 1 - ageDays/recencyDecayDays
		if decay < minRecencyWeight {
			decay = minRecencyWeight
		}
		sums[ev.TargetID] += ev.Score * decay
	}

	weights := make(map[string]float64, len(targetIDs))

	if len(sums) > 0 {
		minSum, maxSum := minMax(sums)
		for id, sum := range sums {
			if minSum == maxSum {
				weights[id] = 1.0
				continue
			}
			w := (sum - minSum) / (maxSum - minSum)
			if w < trainingWeightMin {
				w = trainingWeightMin
			}
			weights[id] = w
		}
	}

	for _, id := range targetIDs {
		if _, ok := weights[id]; !ok {
			weights[id] = 1.0
		}
	}

	return weights
}

func minMax(m map[string]float64) (minV, maxV float64) {
	first := true
	for _, v := range m {
		if first {
			minV, maxV = v, v
			first = false
			continue
		}
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return minV, maxV
}

// Retrain eligibility: a user becomes eligible once enough recent feedback
// has accumulated.
const (
	RetrainWindowDays       = 7
	DefaultRetrainThreshold = 10
)

// ShouldRetrain reports whether the trailing-window event count has reached
// the retrain threshold.
func ShouldRetrain(events []FeedbackEvent, now time.Time, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultRetrainThreshold
	}

	cutoff := now.AddDate(0, 0, -RetrainWindowDays)
	recent := 0
	for _, ev := range events {
		if !ev.At.Before(cutoff) {
			recent++
		}
	}

	return recent >= threshold
}

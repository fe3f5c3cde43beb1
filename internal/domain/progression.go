package domain

import "errors"

// Progression rule kinds, as they appear on the wire.
const (
	ProgressionLinear            = "linear"
	ProgressionDoubleProgression = "doubleProgression"
	ProgressionWave              = "wave"
)

var ErrAmbiguousProgression = errors.New("progression rule must carry exactly one variant")

// LinearProgression increases load by Increment each week from Start.
type LinearProgression struct {
	Start     float64 `bson:"start" json:"start"`
	Increment float64 `bson:"increment" json:"increment"`
}

// DoubleProgressionRule climbs reps from StartReps to EndReps before the
// load moves up by LoadIncrement and the rep count resets.
type DoubleProgressionRule struct {
	StartReps     int     `bson:"startReps" json:"startReps"`
	EndReps       int     `bson:"endReps" json:"endReps"`
	LoadIncrement float64 `bson:"loadIncrement" json:"loadIncrement"`
}

// WaveProgression increases load every WaveSize weeks, resetting within
// each wave.
type WaveProgression struct {
	WaveSize  int     `bson:"waveSize" json:"waveSize"`
	Increment float64 `bson:"increment" json:"increment"`
}

// ProgressionRule is a closed one-of: exactly one variant pointer is set.
// The struct shape serializes to {"linear": {...}} style documents in both
// JSON and BSON without custom codecs.
type ProgressionRule struct {
	Linear            *LinearProgression     `bson:"linear,omitempty" json:"linear,omitempty"`
	DoubleProgression *DoubleProgressionRule `bson:"doubleProgression,omitempty" json:"doubleProgression,omitempty"`
	Wave              *WaveProgression       `bson:"wave,omitempty" json:"wave,omitempty"`
}

// NewLinearProgression builds a linear rule.
func NewLinearProgression(start, increment float64) ProgressionRule {
	return ProgressionRule{Linear: &LinearProgression{Start: start, Increment: increment}}
}

// NewDoubleProgression builds a double-progression rule.
func NewDoubleProgression(startReps, endReps int, loadIncrement float64) ProgressionRule {
	return ProgressionRule{DoubleProgression: &DoubleProgressionRule{
		StartReps:     startReps,
		EndReps:       endReps,
		LoadIncrement: loadIncrement,
	}}
}

// NewWaveProgression builds a wave rule.
func NewWaveProgression(waveSize int, increment float64) ProgressionRule {
	return ProgressionRule{Wave: &WaveProgression{WaveSize: waveSize, Increment: increment}}
}

// Kind returns the wire name of the variant that is set, or "" when none is.
func (p ProgressionRule) Kind() string {
	switch {
	case p.Linear != nil:
		return ProgressionLinear
	case p.DoubleProgression != nil:
		return ProgressionDoubleProgression
	case p.Wave != nil:
		return ProgressionWave
	}
	return ""
}

// Validate ensures exactly one variant is populated.
func (p ProgressionRule) Validate() error {
	count := 0
	if p.Linear != nil {
		count++
	}
	if p.DoubleProgression != nil {
		count++
	}
	if p.Wave != nil {
		count++
	}
	if count != 1 {
		return ErrAmbiguousProgression
	}
	return nil
}

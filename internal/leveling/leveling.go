// Package leveling maps accumulated points onto levels and milestone rewards.
//
// Every function here is pure: callers own persistence of the returned progress.
package leveling

import (
	"math"

	"feedbackquest/internal/model"
)

const (
	basePointsPerLevel = 100
	levelMultiplier    = 1.5

	// seedTotalPoints places a fresh participant at level 5
	seedTotalPoints = 850
)

// MaxTotalPoints is the ceiling on accumulated points. Totals saturate here so they
// never wrap and stay exact as leaderboard scores (float64).
const MaxTotalPoints = 1<<53 - 1

// AddPointsResult is the outcome of awarding points
type AddPointsResult struct {
	Progress  model.UserProgress
	LeveledUp bool
	Rewards   []model.LevelReward // Milestones crossed by this award, ascending by level
}

// PointsRequiredForLevel returns the points needed to complete the given level.
// Level must be >= 1.
func PointsRequiredForLevel(level int) int {
	return int(math.Floor(basePointsPerLevel * math.Pow(levelMultiplier, float64(level-1))))
}

// CumulativePointsToReachLevel returns the total points at which the given level starts
func CumulativePointsToReachLevel(level int) int {
	total := 0
	for i := 1; i < level; i++ {
		total += PointsRequiredForLevel(i)
	}
	return total
}

// LevelForTotalPoints returns the level a participant with totalPoints sits at.
// Negative totals are treated as zero.
func LevelForTotalPoints(totalPoints int) int {
	if totalPoints < 0 {
		totalPoints = 0
	}

	level := 1
	threshold := 0
	for {
		required := PointsRequiredForLevel(level)
		if required > math.MaxInt-threshold || totalPoints < threshold+required {
			return level
		}
		threshold += required
		level++
	}
}

// CurrentLevelPoints returns the points earned inside the current level
func CurrentLevelPoints(totalPoints int) int {
	if totalPoints < 0 {
		totalPoints = 0
	}
	return totalPoints - CumulativePointsToReachLevel(LevelForTotalPoints(totalPoints))
}

// ProgressForTotal derives a consistent progress record from a point total.
// Totals are clamped to [0, MaxTotalPoints].
func ProgressForTotal(totalPoints int) model.UserProgress {
	if totalPoints < 0 {
		totalPoints = 0
	}
	if totalPoints > MaxTotalPoints {
		totalPoints = MaxTotalPoints
	}
	level := LevelForTotalPoints(totalPoints)
	return model.UserProgress{
		Level:     level,
		CurrentXP: totalPoints - CumulativePointsToReachLevel(level),
		TotalXP:   totalPoints,
	}
}

// DefaultProgress is the seeded progress of a participant with no stored record
func DefaultProgress() model.UserProgress {
	return ProgressForTotal(seedTotalPoints)
}

// Normalize rebuilds progress from its total so level and current points agree with the curve
func Normalize(p model.UserProgress) model.UserProgress {
	return ProgressForTotal(p.TotalXP)
}

// IsConsistent reports whether p satisfies the leveling invariants
func IsConsistent(p model.UserProgress) bool {
	if p.Level < 1 || p.CurrentXP < 0 || p.TotalXP < 0 {
		return false
	}
	return p.TotalXP == CumulativePointsToReachLevel(p.Level)+p.CurrentXP &&
		p.CurrentXP < PointsRequiredForLevel(p.Level)
}

// AddPoints applies delta to progress. Negative deltas are ignored.
// When the level changes, every reward in (old level, new level] is returned exactly once.
func AddPoints(progress model.UserProgress, delta int) AddPointsResult {
	if delta < 0 {
		delta = 0
	}

	next := ProgressForTotal(saturatingAdd(progress.TotalXP, delta))
	result := AddPointsResult{
		Progress:  next,
		LeveledUp: next.Level > progress.Level,
		Rewards:   []model.LevelReward{},
	}
	if result.LeveledUp {
		result.Rewards = RewardsInRange(progress.Level, next.Level)
	}
	return result
}

// saturatingAdd returns total+delta capped at MaxTotalPoints; delta must be >= 0
func saturatingAdd(total, delta int) int {
	if total < 0 {
		total = 0
	}
	if total >= MaxTotalPoints || delta > MaxTotalPoints-total {
		return MaxTotalPoints
	}
	return total + delta
}

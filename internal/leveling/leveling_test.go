package leveling

import (
	"math"
	"testing"

	"feedbackquest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsRequiredForLevel(t *testing.T) {
	tests := []struct {
		level    int
		expected int
	}{
		{level: 1, expected: 100},
		{level: 2, expected: 150},
		{level: 3, expected: 225},
		{level: 4, expected: 337},
		{level: 5, expected: 506},
		{level: 6, expected: 759},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PointsRequiredForLevel(tt.level), "level %d", tt.level)
	}
}

func TestPointsRequiredForLevel_StrictlyIncreasing(t *testing.T) {
	for level := 1; level < 60; level++ {
		assert.Greater(t, PointsRequiredForLevel(level+1), PointsRequiredForLevel(level), "level %d", level)
	}
}

func TestCumulativePointsToReachLevel(t *testing.T) {
	assert.Equal(t, 0, CumulativePointsToReachLevel(1))
	assert.Equal(t, 100, CumulativePointsToReachLevel(2))
	assert.Equal(t, 250, CumulativePointsToReachLevel(3))
	assert.Equal(t, 475, CumulativePointsToReachLevel(4))
	assert.Equal(t, 812, CumulativePointsToReachLevel(5))
	assert.Equal(t, 1318, CumulativePointsToReachLevel(6))
}

func TestLevelForTotalPoints(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		expected int
	}{
		{name: "zero", total: 0, expected: 1},
		{name: "negative treated as zero", total: -40, expected: 1},
		{name: "just below level 2", total: 99, expected: 1},
		{name: "exactly level 2", total: 100, expected: 2},
		{name: "middle of level 3", total: 300, expected: 3},
		{name: "exactly level 5", total: 812, expected: 5},
		{name: "seed total", total: 850, expected: 5},
		{name: "exactly level 6", total: 1318, expected: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevelForTotalPoints(tt.total))
		})
	}
}

func TestLevelForTotalPoints_Properties(t *testing.T) {
	for total := 0; total < 20000; total += 37 {
		level := LevelForTotalPoints(total)
		start := CumulativePointsToReachLevel(level)
		assert.LessOrEqual(t, start, total, "total %d", total)
		assert.Less(t, total, start+PointsRequiredForLevel(level), "total %d", total)

		current := CurrentLevelPoints(total)
		assert.GreaterOrEqual(t, current, 0)
		assert.Less(t, current, PointsRequiredForLevel(level))
	}
}

func TestLevelForTotalPoints_BoundaryStep(t *testing.T) {
	for level := 1; level < 15; level++ {
		boundary := CumulativePointsToReachLevel(level + 1)
		assert.Equal(t, level, LevelForTotalPoints(boundary-1))
		assert.Equal(t, level+1, LevelForTotalPoints(boundary))
	}
}

func TestLevelForTotalPoints_Terminates(t *testing.T) {
	level := LevelForTotalPoints(int(^uint(0) >> 1))
	assert.Greater(t, level, 1)
}

func TestDefaultProgress(t *testing.T) {
	p := DefaultProgress()

	assert.Equal(t, model.UserProgress{Level: 5, CurrentXP: 38, TotalXP: 850}, p)
	assert.True(t, IsConsistent(p))
}

func TestNormalize(t *testing.T) {
	p := Normalize(model.UserProgress{Level: 9, CurrentXP: 4, TotalXP: 260})

	assert.Equal(t, model.UserProgress{Level: 3, CurrentXP: 10, TotalXP: 260}, p)
}

func TestIsConsistent(t *testing.T) {
	assert.True(t, IsConsistent(model.UserProgress{Level: 1, CurrentXP: 0, TotalXP: 0}))
	assert.True(t, IsConsistent(model.UserProgress{Level: 2, CurrentXP: 20, TotalXP: 120}))
	assert.False(t, IsConsistent(model.UserProgress{Level: 5, CurrentXP: 850, TotalXP: 1662}))
	assert.False(t, IsConsistent(model.UserProgress{Level: 0, CurrentXP: 0, TotalXP: 0}))
	assert.False(t, IsConsistent(model.UserProgress{Level: 2, CurrentXP: 10, TotalXP: 100}))
}

func TestAddPoints_ReachesLevelTwo(t *testing.T) {
	start := model.UserProgress{Level: 1, CurrentXP: 0, TotalXP: 0}

	result := AddPoints(start, 100)

	assert.Equal(t, model.UserProgress{Level: 2, CurrentXP: 0, TotalXP: 100}, result.Progress)
	assert.True(t, result.LeveledUp)
	require.Len(t, result.Rewards, 1)
	assert.Equal(t, 2, result.Rewards[0].Level)
	assert.Equal(t, "First Steps", result.Rewards[0].Title)
}

func TestAddPoints_ZeroIsNoop(t *testing.T) {
	start := ProgressForTotal(640)

	result := AddPoints(start, 0)

	assert.Equal(t, start, result.Progress)
	assert.False(t, result.LeveledUp)
	assert.Empty(t, result.Rewards)
	assert.NotNil(t, result.Rewards)
}

func TestAddPoints_NegativeIgnored(t *testing.T) {
	start := ProgressForTotal(300)

	result := AddPoints(start, -50)

	assert.Equal(t, start, result.Progress)
	assert.False(t, result.LeveledUp)
}

func TestAddPoints_HugeDeltaSaturates(t *testing.T) {
	tests := []struct {
		name  string
		start model.UserProgress
		delta int
	}{
		{name: "max int from default", start: DefaultProgress(), delta: math.MaxInt},
		{name: "just below max int", start: DefaultProgress(), delta: math.MaxInt - 10},
		{name: "crosses the ceiling", start: ProgressForTotal(MaxTotalPoints - 5), delta: 10},
		{name: "already at the ceiling", start: ProgressForTotal(MaxTotalPoints), delta: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AddPoints(tt.start, tt.delta)

			assert.Equal(t, MaxTotalPoints, result.Progress.TotalXP)
			assert.GreaterOrEqual(t, result.Progress.TotalXP, tt.start.TotalXP)
			assert.GreaterOrEqual(t, result.Progress.Level, tt.start.Level)
			assert.True(t, IsConsistent(result.Progress))
		})
	}
}

func TestAddPoints_TotalNeverDecreases(t *testing.T) {
	deltas := []int{0, 1, 99, 1 << 20, 1 << 40, math.MaxInt / 2, math.MaxInt}

	p := DefaultProgress()
	for _, d := range deltas {
		next := AddPoints(p, d).Progress
		assert.GreaterOrEqual(t, next.TotalXP, p.TotalXP, "delta %d", d)
		assert.GreaterOrEqual(t, next.Level, p.Level, "delta %d", d)
		p = next
	}
}

func TestProgressForTotal_ClampsAboveCeiling(t *testing.T) {
	p := ProgressForTotal(math.MaxInt)

	assert.Equal(t, MaxTotalPoints, p.TotalXP)
	assert.True(t, IsConsistent(p))
}

func TestAddPoints_WithinLevel(t *testing.T) {
	result := AddPoints(model.UserProgress{Level: 2, CurrentXP: 10, TotalXP: 110}, 60)

	assert.Equal(t, model.UserProgress{Level: 2, CurrentXP: 70, TotalXP: 170}, result.Progress)
	assert.False(t, result.LeveledUp)
	assert.Empty(t, result.Rewards)
}

func TestAddPoints_MultiLevelJumpAwardsEachMilestoneOnce(t *testing.T) {
	start := model.UserProgress{Level: 1, CurrentXP: 0, TotalXP: 0}

	result := AddPoints(start, CumulativePointsToReachLevel(7))

	assert.Equal(t, 7, result.Progress.Level)
	assert.True(t, result.LeveledUp)
	levels := make([]int, 0, len(result.Rewards))
	for _, r := range result.Rewards {
		levels = append(levels, r.Level)
	}
	assert.Equal(t, []int{2, 3, 5, 7}, levels)
}

func TestAddPoints_SplitDeltasMatchSingleCall(t *testing.T) {
	start := model.UserProgress{Level: 1, CurrentXP: 0, TotalXP: 0}

	single := AddPoints(start, 2500)

	first := AddPoints(start, 900)
	second := AddPoints(first.Progress, 1600)

	assert.Equal(t, single.Progress, second.Progress)

	union := map[int]bool{}
	for _, r := range append(first.Rewards, second.Rewards...) {
		assert.False(t, union[r.Level], "reward %d awarded twice", r.Level)
		union[r.Level] = true
	}
	expected := map[int]bool{}
	for _, r := range single.Rewards {
		expected[r.Level] = true
	}
	assert.Equal(t, expected, union)
}

func TestUnlockedRewards(t *testing.T) {
	assert.Empty(t, UnlockedRewards(1))

	unlocked := UnlockedRewards(5)
	require.Len(t, unlocked, 3)
	assert.Equal(t, "First Steps", unlocked[0].Title)
	assert.Equal(t, 5, unlocked[2].Level)

	assert.Len(t, UnlockedRewards(100), len(Catalogue()))
}

func TestRewardsInRange(t *testing.T) {
	assert.Empty(t, RewardsInRange(5, 5))
	assert.Empty(t, RewardsInRange(5, 6))

	rewards := RewardsInRange(2, 5)
	require.Len(t, rewards, 2)
	assert.Equal(t, 3, rewards[0].Level)
	assert.Equal(t, 5, rewards[1].Level)
}

func TestCatalogue_ReturnsCopy(t *testing.T) {
	c := Catalogue()
	c[0].Title = "changed"

	assert.Equal(t, "First Steps", Catalogue()[0].Title)
}

package leveling

import "feedbackquest/internal/model"

var rewardCatalogue = []model.LevelReward{
	{Level: 2, Title: "First Steps", Description: "Answered your first questions", Icon: "🌱"},
	{Level: 3, Title: "Voice Heard", Description: "Your feedback is starting to shape the team", Icon: "📣"},
	{Level: 5, Title: "Insight Seeker", Description: "Unlocked the team trends dashboard", Icon: "🔍"},
	{Level: 7, Title: "Idea Generator", Description: "Unlocked extended ideation sprints", Icon: "💡"},
	{Level: 10, Title: "Feedback Champion", Description: "A consistent voice for change", Icon: "🏆"},
	{Level: 15, Title: "Culture Builder", Description: "Helped shape how the team works", Icon: "🏗️"},
	{Level: 20, Title: "Legend", Description: "Reached the top of the feedback ladder", Icon: "👑"},
}

// Catalogue returns a copy of every reward, ascending by level
func Catalogue() []model.LevelReward {
	out := make([]model.LevelReward, len(rewardCatalogue))
	copy(out, rewardCatalogue)
	return out
}

// UnlockedRewards returns the rewards available at or below level
func UnlockedRewards(level int) []model.LevelReward {
	out := []model.LevelReward{}
	for _, r := range rewardCatalogue {
		if r.Level <= level {
			out = append(out, r)
		}
	}
	return out
}

// RewardsInRange returns rewards with fromLevel < level <= toLevel
func RewardsInRange(fromLevel, toLevel int) []model.LevelReward {
	out := []model.LevelReward{}
	for _, r := range rewardCatalogue {
		if r.Level > fromLevel && r.Level <= toLevel {
			out = append(out, r)
		}
	}
	return out
}

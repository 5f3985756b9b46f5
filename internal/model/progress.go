package model

// UserProgress is a participant's position on the leveling curve
type UserProgress struct {
	Level     int `json:"level" bson:"level"`
	CurrentXP int `json:"currentXP" bson:"currentXP"`
	TotalXP   int `json:"totalXP" bson:"totalXP"`
}

// LevelReward is a milestone unlocked permanently once a level is reached
type LevelReward struct {
	Level       int    `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// AddPointsRequest is the request body for awarding points
type AddPointsRequest struct {
	Points int `json:"points"`
}

// AddPointsResponse is returned after points are applied
type AddPointsResponse struct {
	Progress  UserProgress  `json:"progress"`
	LeveledUp bool          `json:"leveledUp"`
	Rewards   []LevelReward `json:"rewards"`
}

// RewardsResponse lists the catalogue alongside what the caller has unlocked
type RewardsResponse struct {
	Level    int           `json:"level"`
	Unlocked []LevelReward `json:"unlocked"`
	All      []LevelReward `json:"all"`
}

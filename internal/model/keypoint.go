package model

import "time"

const (
	keypointBaseWeight  = 20
	keypointCountWeight = 15
	keypointLikeWeight  = 10
)

// Keypoint is a short theme label summarizing a cluster of free-text answers
type Keypoint struct {
	ID              string    `json:"id" bson:"_id"`
	QuestionID      string    `json:"questionId" bson:"questionId"`
	Text            string    `json:"text" bson:"text"`
	OccurrenceCount int       `json:"occurrenceCount" bson:"occurrenceCount"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
}

// KeypointLike records that a participant liked a keypoint; unique per (keypoint, user)
type KeypointLike struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	KeypointID string    `json:"keypointId" bson:"keypointId"`
	UserID     string    `json:"userId" bson:"userId"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// KeypointView is the word-cloud representation of a keypoint
type KeypointView struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Value int    `json:"value"` // Font weight driver
	Likes int    `json:"likes"`
	Count int    `json:"count"`
}

// KeypointWeight returns the word-cloud weight for a theme
func KeypointWeight(count, likes int) int {
	return keypointBaseWeight + count*keypointCountWeight + likes*keypointLikeWeight
}

// NewKeypointView builds the view for a keypoint with the given like count
func NewKeypointView(kp *Keypoint, likes int) KeypointView {
	return KeypointView{
		ID:    kp.ID,
		Text:  kp.Text,
		Value: KeypointWeight(kp.OccurrenceCount, likes),
		Likes: likes,
		Count: kp.OccurrenceCount,
	}
}

// ExtractKeypointsRequest is the request body for keypoint extraction
type ExtractKeypointsRequest struct {
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
}

// KeypointsResponse wraps the keypoints returned to the word cloud
type KeypointsResponse struct {
	Keypoints []KeypointView `json:"keypoints"`
}

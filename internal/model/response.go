package model

import "time"

// Response links a participant to a question with either a selected option or free text
type Response struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	QuestionID     string    `json:"questionId" bson:"questionId"`
	UserID         string    `json:"userId" bson:"userId"`
	SelectedOption string    `json:"selectedOption,omitempty" bson:"selectedOption,omitempty"`
	TextAnswer     string    `json:"textAnswer,omitempty" bson:"textAnswer,omitempty"`
	PointsEarned   int       `json:"pointsEarned" bson:"pointsEarned"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// HasAnswer reports whether the response carries an option or text
func (r *Response) HasAnswer() bool {
	return r.SelectedOption != "" || r.TextAnswer != ""
}

// SubmitResponseRequest is the request body for persisting a response
type SubmitResponseRequest struct {
	QuestionID     string `json:"questionId"`
	SelectedOption string `json:"selectedOption,omitempty"`
	TextAnswer     string `json:"textAnswer,omitempty"`
	PointsEarned   int    `json:"pointsEarned,omitempty"`
}

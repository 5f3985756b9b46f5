package model

import "time"

// QuestionType defines the kind of question shown to a participant
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
	QuestionTypeYesNo          QuestionType = "yes-no"
	QuestionTypeOpenEnded      QuestionType = "open-ended"
	QuestionTypeRanking        QuestionType = "ranking"
	QuestionTypeIdeation       QuestionType = "ideation" // Timed ideation sprint, free text
)

// IsValid reports whether t is one of the known question kinds
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeYesNo, QuestionTypeOpenEnded,
		QuestionTypeRanking, QuestionTypeIdeation:
		return true
	}
	return false
}

// IsFreeText reports whether answers of this kind are free text and graded by the model
func (t QuestionType) IsFreeText() bool {
	return t == QuestionTypeOpenEnded || t == QuestionTypeIdeation
}

// Question is a survey question owned by the datastore
type Question struct {
	ID        string       `json:"id" bson:"_id"`
	Text      string       `json:"text" bson:"text"`
	Type      QuestionType `json:"type" bson:"type"`
	Category  string       `json:"category" bson:"category"`
	Points    int          `json:"points" bson:"points"`
	Options   []string     `json:"options,omitempty" bson:"options,omitempty"` // multiple-choice and ranking only
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
}

package repository

import (
	"context"
	"time"

	"feedbackquest/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResponseRepository interface {
	Create(ctx context.Context, response *model.Response) error
	GetByQuestionID(ctx context.Context, questionID string) ([]*model.Response, error)
	// GetTextAnswers returns the non-empty free-text answers for a question, oldest first
	GetTextAnswers(ctx context.Context, questionID string) ([]string, error)
}

type responseRepository struct {
	collection *mongo.Collection
}

func NewResponseRepository(db *mongo.Database) ResponseRepository {
	return &responseRepository{
		collection: db.Collection("responses"),
	}
}

func (r *responseRepository) Create(ctx context.Context, response *model.Response) error {
	if response.ID == "" {
		response.ID = primitive.NewObjectID().Hex()
	}
	if response.CreatedAt.IsZero() {
		response.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, response)
	return err
}

func (r *responseRepository) GetByQuestionID(ctx context.Context, questionID string) ([]*model.Response, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"questionId": questionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	responses := make([]*model.Response, 0)
	if err = cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) GetTextAnswers(ctx context.Context, questionID string) ([]string, error) {
	filter := bson.M{
		"questionId": questionID,
		"textAnswer": bson.M{"$exists": true, "$nin": bson.A{nil, ""}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetProjection(bson.M{"textAnswer": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	answers := make([]string, 0)
	for cursor.Next(ctx) {
		var doc struct {
			TextAnswer string `bson:"textAnswer"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		if doc.TextAnswer != "" {
			answers = append(answers, doc.TextAnswer)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return answers, nil
}

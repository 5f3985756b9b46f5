package repository

import (
	"context"

	"feedbackquest/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type KeypointRepository interface {
	GetByQuestionID(ctx context.Context, questionID string) ([]*model.Keypoint, error)
	GetByID(ctx context.Context, id string) (*model.Keypoint, error)
	InsertMany(ctx context.Context, keypoints []*model.Keypoint) error
	DeleteByQuestionID(ctx context.Context, questionID string) (int64, error)
}

type keypointRepository struct {
	collection *mongo.Collection
}

func NewKeypointRepository(db *mongo.Database) KeypointRepository {
	return &keypointRepository{
		collection: db.Collection("keypoints"),
	}
}

// GetByQuestionID returns keypoints heaviest first
func (r *keypointRepository) GetByQuestionID(ctx context.Context, questionID string) ([]*model.Keypoint, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "occurrenceCount", Value: -1},
		{Key: "createdAt", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"questionId": questionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	keypoints := make([]*model.Keypoint, 0)
	if err = cursor.All(ctx, &keypoints); err != nil {
		return nil, err
	}
	return keypoints, nil
}

func (r *keypointRepository) GetByID(ctx context.Context, id string) (*model.Keypoint, error) {
	var kp model.Keypoint
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&kp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &kp, nil
}

func (r *keypointRepository) InsertMany(ctx context.Context, keypoints []*model.Keypoint) error {
	if len(keypoints) == 0 {
		return nil
	}
	docs := make([]interface{}, len(keypoints))
	for i, kp := range keypoints {
		docs[i] = kp
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *keypointRepository) DeleteByQuestionID(ctx context.Context, questionID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"questionId": questionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

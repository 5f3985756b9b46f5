package repository

import (
	"context"
	"errors"
	"time"

	"feedbackquest/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateLike is returned when a participant already liked a keypoint
var ErrDuplicateLike = errors.New("keypoint already liked")

type LikeRepository interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, like *model.KeypointLike) error
	// Delete removes a participant's like and reports whether one existed
	Delete(ctx context.Context, keypointID, userID string) (bool, error)
	InsertMany(ctx context.Context, likes []*model.KeypointLike) error
	CountByKeypointIDs(ctx context.Context, keypointIDs []string) (map[string]int, error)
	DeleteByKeypointIDs(ctx context.Context, keypointIDs []string) (int64, error)
}

type likeRepository struct {
	collection *mongo.Collection
}

func NewLikeRepository(db *mongo.Database) LikeRepository {
	return &likeRepository{
		collection: db.Collection("keypoint_likes"),
	}
}

// EnsureIndexes creates the unique (keypointId, userId) index
func (r *likeRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "keypointId", Value: 1}, {Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *likeRepository) Create(ctx context.Context, like *model.KeypointLike) error {
	prepareLike(like)
	_, err := r.collection.InsertOne(ctx, like)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateLike
	}
	return err
}

func (r *likeRepository) Delete(ctx context.Context, keypointID, userID string) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"keypointId": keypointID, "userId": userID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *likeRepository) InsertMany(ctx context.Context, likes []*model.KeypointLike) error {
	if len(likes) == 0 {
		return nil
	}
	docs := make([]interface{}, len(likes))
	for i, like := range likes {
		prepareLike(like)
		docs[i] = like
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// CountByKeypointIDs returns like counts keyed by keypoint ID; keypoints without likes are absent
func (r *likeRepository) CountByKeypointIDs(ctx context.Context, keypointIDs []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(keypointIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"keypointId": bson.M{"$in": keypointIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$keypointId", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			KeypointID string `bson:"_id"`
			Count      int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.KeypointID] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *likeRepository) DeleteByKeypointIDs(ctx context.Context, keypointIDs []string) (int64, error) {
	if len(keypointIDs) == 0 {
		return 0, nil
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"keypointId": bson.M{"$in": keypointIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func prepareLike(like *model.KeypointLike) {
	if like.ID == "" {
		like.ID = primitive.NewObjectID().Hex()
	}
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now()
	}
}

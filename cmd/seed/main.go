package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"feedbackquest/internal/config"
	"feedbackquest/internal/logger"
	"feedbackquest/internal/model"
	"feedbackquest/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// catalogue is the default question set, one section per question kind
var catalogue = []model.Question{
	{
		ID:       "q-satisfaction",
		Text:     "How satisfied are you with the product overall?",
		Type:     model.QuestionTypeMultipleChoice,
		Category: "Satisfaction",
		Points:   50,
		Options:  []string{"Very satisfied", "Satisfied", "Neutral", "Dissatisfied"},
	},
	{
		ID:       "q-recommend",
		Text:     "Would you recommend the product to a friend?",
		Type:     model.QuestionTypeYesNo,
		Category: "Loyalty",
		Points:   50,
		Options:  []string{"Yes", "No"},
	},
	{
		ID:       "q-priorities",
		Text:     "Rank these areas by how much they matter to you.",
		Type:     model.QuestionTypeRanking,
		Category: "Priorities",
		Points:   50,
		Options:  []string{"Price", "Performance", "Design", "Support"},
	},
	{
		ID:       "q-improve",
		Text:     "What is one thing you would improve about the product?",
		Type:     model.QuestionTypeOpenEnded,
		Category: "Improvement",
		Points:   100,
	},
	{
		ID:       "q-frustration",
		Text:     "Describe the last time the product frustrated you.",
		Type:     model.QuestionTypeOpenEnded,
		Category: "Experience",
		Points:   100,
	},
	{
		ID:       "q-ideas",
		Text:     "You have 60 seconds: pitch a feature you wish existed.",
		Type:     model.QuestionTypeIdeation,
		Category: "Ideation",
		Points:   100,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Logger

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	questions := repository.NewQuestionRepo(client.Database(cfg.Mongo.Database))

	// Stagger creation times so catalogue order survives the createdAt sort
	base := time.Now().UTC()
	for i := range catalogue {
		q := catalogue[i]
		q.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := questions.Upsert(ctx, &q); err != nil {
			log.Fatal("failed to upsert question", zap.String("question_id", q.ID), zap.Error(err))
		}
	}

	log.Info("seeded question catalogue", zap.Int("questions", len(catalogue)), zap.String("database", cfg.Mongo.Database))
}

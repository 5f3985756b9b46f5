package service

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"sync"

	"feedbackquest/internal/cache"
	"feedbackquest/internal/leveling"
	"feedbackquest/internal/model"

	"go.uber.org/zap"
)

const (
	defaultLeaderboardSize = 20
	maxLeaderboardSize     = 100
	progressLockStripes    = 64
)

var ErrInvalidDelta = errors.New("points must not be negative")

// ProgressStore loads and saves a participant's leveling state
type ProgressStore interface {
	Load(ctx context.Context, userID string) (*model.UserProgress, error)
	Save(ctx context.Context, userID string, progress *model.UserProgress) error
	AddPoints(ctx context.Context, userID string, delta int) (*leveling.AddPointsResult, error)
}

// LevelUpEvent is the payload of a level_up event
type LevelUpEvent struct {
	Level   int                 `json:"level"`
	Rewards []model.LevelReward `json:"rewards"`
}

// ProgressService is the Redis-backed ProgressStore; it also feeds the leaderboard
type ProgressService struct {
	progress    cache.ProgressCache
	leaderboard cache.LeaderboardCache
	broadcaster Broadcaster
	logger      *zap.Logger

	// serializes read-modify-write per user within this process
	stripes [progressLockStripes]sync.Mutex
}

// NewProgressService creates a new progress service
func NewProgressService(progress cache.ProgressCache, leaderboard cache.LeaderboardCache, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		progress:    progress,
		leaderboard: leaderboard,
		broadcaster: noopBroadcaster{},
		logger:      logger,
	}
}

// SetBroadcaster sets the event broadcaster
func (s *ProgressService) SetBroadcaster(b Broadcaster) {
	if b == nil {
		b = noopBroadcaster{}
	}
	s.broadcaster = b
}

// storedProgress is the slot layout; a missing or null totalXP counts as no record
type storedProgress struct {
	Level     int  `json:"level"`
	CurrentXP int  `json:"currentXP"`
	TotalXP   *int `json:"totalXP"`
}

// Load returns the stored progress, or the seeded default when the slot is absent or unreadable
func (s *ProgressService) Load(ctx context.Context, userID string) (*model.UserProgress, error) {
	data, err := s.progress.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		p := leveling.DefaultProgress()
		return &p, nil
	}

	var stored storedProgress
	if err := json.Unmarshal(data, &stored); err != nil {
		s.logger.Warn("corrupt progress slot, using default", zap.String("userId", userID), zap.Error(err))
		p := leveling.DefaultProgress()
		return &p, nil
	}
	if stored.TotalXP == nil || *stored.TotalXP < 0 {
		s.logger.Warn("progress slot has no usable total, using default", zap.String("userId", userID))
		p := leveling.DefaultProgress()
		return &p, nil
	}

	raw := model.UserProgress{Level: stored.Level, CurrentXP: stored.CurrentXP, TotalXP: *stored.TotalXP}
	if !leveling.IsConsistent(raw) {
		s.logger.Warn("inconsistent progress slot, normalized from total",
			zap.String("userId", userID),
			zap.Int("level", raw.Level),
			zap.Int("currentXP", raw.CurrentXP),
			zap.Int("totalXP", raw.TotalXP),
		)
	}

	p := leveling.Normalize(raw)
	return &p, nil
}

// Save overwrites the slot and notifies subscribers
func (s *ProgressService) Save(ctx context.Context, userID string, progress *model.UserProgress) error {
	normalized := leveling.Normalize(*progress)
	if err := s.progress.Set(ctx, userID, &normalized); err != nil {
		return err
	}

	if err := s.leaderboard.UpdateScore(ctx, userID, normalized.TotalXP); err != nil {
		s.logger.Warn("failed to update leaderboard", zap.String("userId", userID), zap.Error(err))
	}

	s.broadcaster.SendToUser(userID, EventProgressUpdated, normalized)
	return nil
}

// AddPoints applies a non-negative delta and persists the result
func (s *ProgressService) AddPoints(ctx context.Context, userID string, delta int) (*leveling.AddPointsResult, error) {
	if delta < 0 {
		return nil, ErrInvalidDelta
	}

	mu := s.stripe(userID)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := leveling.AddPoints(*current, delta)
	if err := s.Save(ctx, userID, &result.Progress); err != nil {
		return nil, err
	}

	if result.LeveledUp {
		s.logger.Info("participant leveled up",
			zap.String("userId", userID),
			zap.Int("from", current.Level),
			zap.Int("to", result.Progress.Level),
		)
		s.broadcaster.SendToUser(userID, EventLevelUp, LevelUpEvent{
			Level:   result.Progress.Level,
			Rewards: result.Rewards,
		})
	}

	return &result, nil
}

// Rewards returns the catalogue alongside what the participant has unlocked
func (s *ProgressService) Rewards(ctx context.Context, userID string) (*model.RewardsResponse, error) {
	p, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.RewardsResponse{
		Level:    p.Level,
		Unlocked: leveling.UnlockedRewards(p.Level),
		All:      leveling.Catalogue(),
	}, nil
}

// Leaderboard returns the top participants by total XP
func (s *ProgressService) Leaderboard(ctx context.Context, top int) ([]cache.LeaderboardEntry, error) {
	if top <= 0 {
		top = defaultLeaderboardSize
	}
	if top > maxLeaderboardSize {
		top = maxLeaderboardSize
	}
	return s.leaderboard.GetTop(ctx, top)
}

// Rank returns the participant's leaderboard position, nil when they have never scored
func (s *ProgressService) Rank(ctx context.Context, userID string) (*cache.LeaderboardEntry, error) {
	rank, err := s.leaderboard.GetRank(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rank < 0 {
		return nil, nil
	}

	p, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &cache.LeaderboardEntry{UserID: userID, TotalXP: p.TotalXP, Rank: int(rank)}, nil
}

func (s *ProgressService) stripe(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return &s.stripes[h.Sum32()%progressLockStripes]
}

package service

import (
	"context"
	"fmt"
	"time"

	"mathdojo_backend/internal/repository"
	"mathdojo_backend/internal/util"
	"mathdojo_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const dailyKeyTTL = 48 * time.Hour

// DailyStats is the activity snapshot returned alongside quiz responses and
// the daily report.
type DailyStats struct {
	Date           string `json:"date"`
	CorrectCount   int64  `json:"correctCount"`
	TotalActiveMs  int64  `json:"totalActiveMs"`
	AllTimeCorrect int64  `json:"allTimeCorrect"`
}

// ActivityService is the daily-activity aggregator: one row per user per
// Pacific-timezone calendar day, incremented atomically in the store with a
// redis mirror for the hot "today" reads.
type ActivityService struct {
	DailyRepo *repository.DailySummaryRepository
	UserRepo  *repository.UserRepository
	Redis     *redis.Client

	loc *time.Location
}

func NewActivityService(dailyRepo *repository.DailySummaryRepository, userRepo *repository.UserRepository, rdb *redis.Client) *ActivityService {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		logger.Log.Warn("Pacific timezone unavailable, using UTC", zap.Error(err))
		loc = time.UTC
	}
	return &ActivityService{
		DailyRepo: dailyRepo,
		UserRepo:  userRepo,
		Redis:     rdb,
		loc:       loc,
	}
}

// DayKey returns the Pacific calendar day for t.
func (s *ActivityService) DayKey(t time.Time) string {
	return t.In(s.loc).Format(util.DateFormat)
}

func dailyRedisKey(userID uint, date, field string) string {
	return fmt.Sprintf("daily:%d:%s:%s", userID, date, field)
}

// RecordCorrect registers one correct answer with its active time: daily
// summary, the user's all-time counter, and the redis mirrors.
func (s *ActivityService) RecordCorrect(userID uint, activeMs int64) error {
	date := s.DayKey(time.Now())
	if err := s.DailyRepo.Increment(userID, date, 1, activeMs); err != nil {
		return err
	}
	if err := s.UserRepo.IncrementAllTimeCorrect(userID); err != nil {
		return err
	}
	s.mirror(userID, date, 1, activeMs)
	return nil
}

// FlushActive adds tracked active time without touching the correct counters
// (pause and finalize paths).
func (s *ActivityService) FlushActive(userID uint, activeMs int64) error {
	if activeMs <= 0 {
		return nil
	}
	date := s.DayKey(time.Now())
	if err := s.DailyRepo.Increment(userID, date, 0, activeMs); err != nil {
		return err
	}
	s.mirror(userID, date, 0, activeMs)
	return nil
}

func (s *ActivityService) mirror(userID uint, date string, correct, activeMs int64) {
	if s.Redis == nil {
		return
	}
	ctx := context.Background()
	pipe := s.Redis.Pipeline()
	if correct != 0 {
		pipe.IncrBy(ctx, dailyRedisKey(userID, date, "correct"), correct)
		pipe.Expire(ctx, dailyRedisKey(userID, date, "correct"), dailyKeyTTL)
	}
	if activeMs != 0 {
		pipe.IncrBy(ctx, dailyRedisKey(userID, date, "activems"), activeMs)
		pipe.Expire(ctx, dailyRedisKey(userID, date, "activems"), dailyKeyTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		// Mirror only; the database row already holds the truth.
		logger.Log.Warn("daily redis mirror failed", zap.Uint("userId", userID), zap.Error(err))
	}
}

// TodayStats reads today's totals, preferring the redis mirror and falling
// back to the database row.
func (s *ActivityService) TodayStats(userID uint) (*DailyStats, error) {
	date := s.DayKey(time.Now())
	stats := &DailyStats{Date: date}

	fromMirror := false
	if s.Redis != nil {
		ctx := context.Background()
		correct, err1 := s.Redis.Get(ctx, dailyRedisKey(userID, date, "correct")).Int64()
		activeMs, err2 := s.Redis.Get(ctx, dailyRedisKey(userID, date, "activems")).Int64()
		if err1 == nil || err2 == nil {
			stats.CorrectCount = correct
			stats.TotalActiveMs = activeMs
			fromMirror = true
		}
	}
	if !fromMirror {
		summary, err := s.DailyRepo.GetByUserAndDate(userID, date)
		if err != nil {
			return nil, err
		}
		stats.CorrectCount = summary.CorrectCount
		stats.TotalActiveMs = summary.TotalActiveMs
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	stats.AllTimeCorrect = user.AllTimeCorrect
	return stats, nil
}

// ClearToday drops the redis mirrors for the current day; used by the
// destructive progress reset.
func (s *ActivityService) ClearToday(userID uint) {
	if s.Redis == nil {
		return
	}
	date := s.DayKey(time.Now())
	ctx := context.Background()
	if err := s.Redis.Del(ctx,
		dailyRedisKey(userID, date, "correct"),
		dailyRedisKey(userID, date, "activems"),
	).Err(); err != nil {
		logger.Log.Warn("daily redis clear failed", zap.Uint("userId", userID), zap.Error(err))
	}
}

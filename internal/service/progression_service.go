package service

import (
	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/repository"
	"mathdojo_backend/pkg/logger"

	"go.uber.org/zap"
)

// progressStore is the slice of the progress repository the unlock engine
// and progress views need.
type progressStore interface {
	GetOrCreateLevel(userID uint, level int) (*model.LevelProgress, error)
	SaveLevel(p *model.LevelProgress) error
	GetOrCreateBelt(userID uint, level int, belt model.Belt) (*model.BeltProgress, error)
	SaveBelt(b *model.BeltProgress) error
	ListLevels(userID uint) ([]model.LevelProgress, error)
	ListBelts(userID uint) ([]model.BeltProgress, error)
	InitDefault(userID uint) error
	DeleteAllForUser(userID uint) error
}

// ProgressionService owns the user progress map: unlocks applied on passing
// quiz completions, the assembled progress view, and the destructive reset.
// Unlocks are idempotent and only ever add; a pass never locks anything.
type ProgressionService struct {
	ProgressRepo progressStore
	QuizRunRepo  *repository.QuizRunRepository
	DailyRepo    *repository.DailySummaryRepository
	UserRepo     *repository.UserRepository
	Activity     *ActivityService
}

func NewProgressionService(
	progressRepo *repository.ProgressRepository,
	quizRunRepo *repository.QuizRunRepository,
	dailyRepo *repository.DailySummaryRepository,
	userRepo *repository.UserRepository,
	activity *ActivityService,
) *ProgressionService {
	return &ProgressionService{
		ProgressRepo: progressRepo,
		QuizRunRepo:  quizRunRepo,
		DailyRepo:    dailyRepo,
		UserRepo:     userRepo,
		Activity:     activity,
	}
}

// UnlockOnPass applies a passing quiz result: colored belts complete and
// unlock the next belt (brown unlocks the black degrees), black degrees mark
// off their slot, and degree 7 completes the level and unlocks the next one.
// No-op when the run was not passed.
func (s *ProgressionService) UnlockOnPass(userID uint, level int, belt model.Belt, passed bool) error {
	if !passed {
		return nil
	}

	if degree, ok := belt.BlackDegree(); ok {
		return s.unlockBlackDegree(userID, level, degree)
	}
	return s.unlockColoredBelt(userID, level, belt)
}

func (s *ProgressionService) unlockBlackDegree(userID uint, level, degree int) error {
	lp, err := s.ProgressRepo.GetOrCreateLevel(userID, level)
	if err != nil {
		return err
	}

	added := lp.AddDegree(degree)
	if degree == model.MaxBlackDegree {
		lp.Completed = true
	}
	if added || lp.Completed {
		if err := s.ProgressRepo.SaveLevel(lp); err != nil {
			return err
		}
	}

	if degree == model.MaxBlackDegree {
		next, err := s.ProgressRepo.GetOrCreateLevel(userID, level+1)
		if err != nil {
			return err
		}
		if !next.Unlocked {
			next.Unlocked = true
			if err := s.ProgressRepo.SaveLevel(next); err != nil {
				return err
			}
		}
		logger.Log.Info("level completed",
			zap.Uint("userId", userID), zap.Int("level", level))
	}
	return nil
}

func (s *ProgressionService) unlockColoredBelt(userID uint, level int, belt model.Belt) error {
	bp, err := s.ProgressRepo.GetOrCreateBelt(userID, level, belt)
	if err != nil {
		return err
	}
	bp.Completed = true
	bp.Unlocked = true
	if err := s.ProgressRepo.SaveBelt(bp); err != nil {
		return err
	}

	if next, ok := model.NextColoredBelt(belt); ok {
		nb, err := s.ProgressRepo.GetOrCreateBelt(userID, level, next)
		if err != nil {
			return err
		}
		if !nb.Unlocked {
			nb.Unlocked = true
			if err := s.ProgressRepo.SaveBelt(nb); err != nil {
				return err
			}
		}
		return nil
	}

	// Brown was the last colored belt: open the black degrees.
	lp, err := s.ProgressRepo.GetOrCreateLevel(userID, level)
	if err != nil {
		return err
	}
	if !lp.BlackUnlocked {
		lp.BlackUnlocked = true
		return s.ProgressRepo.SaveLevel(lp)
	}
	return nil
}

// GetProgress assembles the typed progress map. A user with no rows yet is
// healed to the day-one state first.
func (s *ProgressionService) GetProgress(userID uint) (model.ProgressMap, error) {
	levels, err := s.ProgressRepo.ListLevels(userID)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		if err := s.ProgressRepo.InitDefault(userID); err != nil {
			return nil, err
		}
		levels, err = s.ProgressRepo.ListLevels(userID)
		if err != nil {
			return nil, err
		}
	}

	belts, err := s.ProgressRepo.ListBelts(userID)
	if err != nil {
		return nil, err
	}

	out := make(model.ProgressMap, len(levels))
	for _, lp := range levels {
		view := model.LevelView{
			Level:     lp.Level,
			Unlocked:  lp.Unlocked,
			Completed: lp.Completed,
			Belts:     make(map[model.Belt]model.BeltState, 6),
			Black: model.BlackState{
				Unlocked:         lp.BlackUnlocked,
				CompletedDegrees: lp.Degrees(),
			},
		}
		for _, b := range model.ColoredBelts() {
			view.Belts[b] = model.BeltState{}
		}
		out[lp.Level] = view
	}

	for _, bp := range belts {
		view, ok := out[bp.Level]
		if !ok {
			continue
		}
		view.Belts[bp.Belt] = model.BeltState{
			Unlocked:  bp.Unlocked,
			Completed: bp.Completed,
		}
		out[bp.Level] = view
	}

	return out, nil
}

// ResetAllProgress wipes every run, summary and progress row for the user
// and reinitializes the day-one state. Irreversible; no soft delete.
func (s *ProgressionService) ResetAllProgress(userID uint) error {
	if err := s.QuizRunRepo.DeleteByUser(userID); err != nil {
		return err
	}
	if err := s.DailyRepo.DeleteByUser(userID); err != nil {
		return err
	}
	if err := s.ProgressRepo.DeleteAllForUser(userID); err != nil {
		return err
	}
	if err := s.ProgressRepo.InitDefault(userID); err != nil {
		return err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return err
	}
	user.AllTimeCorrect = 0
	if err := s.UserRepo.Update(user); err != nil {
		return err
	}

	s.Activity.ClearToday(userID)

	logger.Log.Info("progress reset", zap.Uint("userId", userID))
	return nil
}

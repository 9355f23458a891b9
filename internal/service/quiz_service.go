package service

import (
	"time"

	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/repository"
	"mathdojo_backend/internal/util"
	"mathdojo_backend/pkg/logger"
	"mathdojo_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// Completion reasons reported in terminal results and metrics.
const (
	ReasonFinished   = "finished"
	ReasonTimeout    = "timeout"
	ReasonWrong      = "wrong"
	ReasonInactivity = "inactivity"
	ReasonFinalized  = "finalized"
)

// TimerConfig mirrors the run's countdown so clients can render it without
// owning the clock. Colored belts carry a zero limit, meaning untimed.
type TimerConfig struct {
	LimitMs     int64 `json:"limitMs"`
	RemainingMs int64 `json:"remainingMs"`
}

// QuestionPayload is what the client sees for one question: the display text,
// the four shuffled choices and the correct answer. Grading still happens
// server-side when the answer comes back.
type QuestionPayload struct {
	ID            string             `json:"id"`
	Type          model.QuestionType `json:"type"`
	DisplayText   string             `json:"displayText"`
	Choices       []int              `json:"choices"`
	CorrectAnswer int                `json:"correctAnswer"`
	Position      int                `json:"position"`
	Total         int                `json:"total"`
}

// PrepareResult describes a freshly created run plus its warm-up practice
// questions. Black degrees skip the warm-up and get an empty practice set.
type PrepareResult struct {
	RunID      string            `json:"runId"`
	Operation  model.Operation   `json:"operation"`
	Level      int               `json:"level"`
	Belt       model.Belt        `json:"belt"`
	QuizLength int               `json:"quizLength"`
	Timer      TimerConfig       `json:"timer"`
	Practice   []QuestionPayload `json:"practice"`
}

// StartResult carries the first live question once the run is in progress.
type StartResult struct {
	RunID    string          `json:"runId"`
	Status   model.RunStatus `json:"status"`
	Question QuestionPayload `json:"question"`
	Timer    TimerConfig     `json:"timer"`
}

// CompletionResult is the terminal snapshot of a run. Repeated calls against
// a finished run echo the same snapshot instead of failing.
type CompletionResult struct {
	RunID         string          `json:"runId"`
	Status        model.RunStatus `json:"status"`
	Passed        bool            `json:"passed"`
	Reason        string          `json:"reason"`
	CorrectCount  int             `json:"correctCount"`
	WrongCount    int             `json:"wrongCount"`
	TotalActiveMs int64           `json:"totalActiveMs"`
	Stats         *DailyStats     `json:"stats,omitempty"`
}

// SubmitResult is the response to an answer, inactivity report or practice
// answer. Exactly one of Next or Completion is set when the run moves on;
// neither is set while the current slot still needs remedial practice.
type SubmitResult struct {
	RunID            string            `json:"runId"`
	Correct          bool              `json:"correct"`
	CorrectAnswer    int               `json:"correctAnswer"`
	PracticeRequired bool              `json:"practiceRequired"`
	Next             *QuestionPayload  `json:"next,omitempty"`
	Timer            *TimerConfig      `json:"timer,omitempty"`
	Completion       *CompletionResult `json:"completion,omitempty"`
}

// Narrow views of the stores and collaborators the state machine touches.
type runStore interface {
	Create(run *model.QuizRun) error
	Save(run *model.QuizRun) error
	FindByID(id string) (*model.QuizRun, error)
	CreateItems(items []model.QuizRunItem) error
	GetItems(runID string) ([]model.QuizRunItem, error)
	SaveItem(item *model.QuizRunItem) error
}

type questionStore interface {
	FindByID(id string) (*model.Question, error)
}

type attemptStore interface {
	Create(attempt *model.QuizAttempt) error
}

type quizComposer interface {
	BuildPracticeSet(op model.Operation, level int, belt model.Belt) ([]model.Question, error)
	BuildQuizSet(op model.Operation, level int, belt model.Belt) ([]model.Question, error)
}

type activitySink interface {
	RecordCorrect(userID uint, activeMs int64) error
	FlushActive(userID uint, activeMs int64) error
	TodayStats(userID uint) (*DailyStats, error)
}

type passUnlocker interface {
	UnlockOnPass(userID uint, level int, belt model.Belt, passed bool) error
}

// QuizService drives the run state machine prepared -> in_progress ->
// completed/failed. All mutating operations verify ownership, tolerate
// repeats against terminal runs, and keep the activity timer consistent:
// the clock only runs while a question is live.
type QuizService struct {
	RunRepo      runStore
	QuestionRepo questionStore
	AttemptRepo  attemptStore
	Composer     quizComposer
	Activity     activitySink
	Progression  passUnlocker
}

func NewQuizService(
	runRepo *repository.QuizRunRepository,
	questionRepo *repository.QuestionRepository,
	attemptRepo *repository.AttemptRepository,
	composer *ComposerService,
	activity *ActivityService,
	progression *ProgressionService,
) *QuizService {
	return &QuizService{
		RunRepo:      runRepo,
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		Composer:     composer,
		Activity:     activity,
		Progression:  progression,
	}
}

func payloadFor(q *model.Question, position, total int) QuestionPayload {
	return QuestionPayload{
		ID:            q.ID,
		Type:          q.Type,
		DisplayText:   q.DisplayText,
		Choices:       q.ChoiceValues(),
		CorrectAnswer: q.CorrectAnswer,
		Position:      position,
		Total:         total,
	}
}

func timerFor(run *model.QuizRun) TimerConfig {
	return TimerConfig{LimitMs: run.LimitMs, RemainingMs: run.RemainingMs}
}

func (s *QuizService) completion(run *model.QuizRun, passed bool, reason string, withStats bool) *CompletionResult {
	res := &CompletionResult{
		RunID:         run.ID,
		Status:        run.Status,
		Passed:        passed,
		Reason:        reason,
		CorrectCount:  run.CorrectCount,
		WrongCount:    run.WrongCount,
		TotalActiveMs: run.TotalActiveMs,
	}
	if withStats {
		if stats, err := s.Activity.TodayStats(run.UserID); err == nil {
			res.Stats = stats
		} else {
			logger.Log.Warn("daily stats unavailable for completion",
				zap.String("runId", run.ID), zap.Error(err))
		}
	}
	return res
}

// terminalEcho rebuilds the completion snapshot for a run that already
// finished, replaying the persisted reason. Passed is recomputed from the
// recorded counters; a forced finalize or a timeout never passes.
func (s *QuizService) terminalEcho(run *model.QuizRun) *CompletionResult {
	reason := run.Reason
	if reason == "" {
		reason = ReasonFinished
	}
	passed := run.Status == model.RunCompleted &&
		reason == ReasonFinished &&
		run.WrongCount == 0 &&
		!run.TimeUp()
	return s.completion(run, passed, reason, false)
}

func (s *QuizService) loadOwnedRun(userID uint, runID string) (*model.QuizRun, error) {
	run, err := s.RunRepo.FindByID(runID)
	if err != nil {
		return nil, err
	}
	if run.UserID != userID {
		return nil, util.ErrRunOwnerMismatch
	}
	return run, nil
}

// Prepare creates a new run in the prepared state and composes its warm-up
// practice questions. Nothing is timed yet; the clock starts at Start.
func (s *QuizService) Prepare(userID uint, op model.Operation, level int, belt model.Belt) (*PrepareResult, error) {
	if !op.Valid() {
		return nil, util.ErrInvalidOperation
	}
	if level < 1 || !belt.Valid() {
		return nil, util.ErrInvalidBelt
	}

	run := model.NewQuizRun(userID, op, level, belt)
	if err := s.RunRepo.Create(run); err != nil {
		return nil, err
	}

	practice, err := s.Composer.BuildPracticeSet(op, level, belt)
	if err != nil {
		return nil, err
	}

	res := &PrepareResult{
		RunID:      run.ID,
		Operation:  op,
		Level:      level,
		Belt:       belt,
		QuizLength: model.QuizLength(belt),
		Timer:      timerFor(run),
		Practice:   make([]QuestionPayload, 0, len(practice)),
	}
	for i := range practice {
		res.Practice = append(res.Practice, payloadFor(&practice[i], i, len(practice)))
	}

	logger.Log.Info("quiz run prepared",
		zap.String("runId", run.ID), zap.Uint("userId", userID),
		zap.Int("level", level), zap.String("belt", string(belt)))
	return res, nil
}

// Start composes the question sequence, moves the run to in_progress and
// starts the clock on the first question.
func (s *QuizService) Start(userID uint, runID string) (*StartResult, error) {
	run, err := s.loadOwnedRun(userID, runID)
	if err != nil {
		return nil, err
	}
	if run.Status != model.RunPrepared {
		return nil, util.ErrInvalidRunStatus
	}

	questions, err := s.Composer.BuildQuizSet(run.Operation, run.Level, run.Belt)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrQuestionNotFound
	}

	items := make([]model.QuizRunItem, 0, len(questions))
	for i := range questions {
		items = append(items, model.QuizRunItem{
			RunID:      run.ID,
			Position:   i,
			QuestionID: questions[i].ID,
		})
	}
	if err := s.RunRepo.CreateItems(items); err != nil {
		return nil, err
	}

	run.Status = model.RunInProgress
	run.StartTimer(time.Now())
	if err := s.RunRepo.Save(run); err != nil {
		return nil, err
	}

	monitoring.QuizRunsStarted.WithLabelValues(string(run.Belt)).Inc()
	return &StartResult{
		RunID:    run.ID,
		Status:   run.Status,
		Question: payloadFor(&questions[0], 0, len(questions)),
		Timer:    timerFor(run),
	}, nil
}

// currentItem returns the run's items and the item at CurrentIndex, after
// checking that questionID really is the live question.
func (s *QuizService) currentItem(run *model.QuizRun, questionID string) ([]model.QuizRunItem, *model.QuizRunItem, error) {
	items, err := s.RunRepo.GetItems(run.ID)
	if err != nil {
		return nil, nil, err
	}
	if run.CurrentIndex < 0 || run.CurrentIndex >= len(items) {
		return nil, nil, util.ErrInvalidRunStatus
	}
	item := &items[run.CurrentIndex]
	if item.QuestionID != questionID {
		return nil, nil, util.ErrQuestionMismatch
	}
	return items, item, nil
}

func (s *QuizService) finishRun(run *model.QuizRun, status model.RunStatus, passed bool, reason string) (*CompletionResult, error) {
	run.Status = status
	run.Reason = reason

	// Correct answers already flushed their intervals; only the remainder
	// (misses, practice pauses, the final interval) goes out here.
	flushMs := run.TotalActiveMs - run.FlushedActiveMs
	run.FlushedActiveMs = run.TotalActiveMs

	if err := s.RunRepo.Save(run); err != nil {
		return nil, err
	}

	if err := s.Activity.FlushActive(run.UserID, flushMs); err != nil {
		logger.Log.Warn("active time flush failed",
			zap.String("runId", run.ID), zap.Error(err))
	}

	if passed {
		if err := s.Progression.UnlockOnPass(run.UserID, run.Level, run.Belt, true); err != nil {
			logger.Log.Error("unlock after pass failed",
				zap.String("runId", run.ID), zap.Uint("userId", run.UserID), zap.Error(err))
		}
	}

	monitoring.QuizRunsFinished.WithLabelValues(string(run.Belt), reason).Inc()
	logger.Log.Info("quiz run finished",
		zap.String("runId", run.ID), zap.String("status", string(status)),
		zap.Bool("passed", passed), zap.String("reason", reason))

	return s.completion(run, passed, reason, true), nil
}

// SubmitAnswer grades the live question. Correct answers advance the run and
// restart the clock; wrong answers pause it and either flag the slot for
// remedial practice (colored belts) or fail the run outright (black degrees).
func (s *QuizService) SubmitAnswer(userID uint, runID, questionID string, answer int, responseMs int64) (*SubmitResult, error) {
	run, err := s.loadOwnedRun(userID, runID)
	if err != nil {
		return nil, err
	}
	if run.Terminal() {
		return &SubmitResult{RunID: run.ID, Completion: s.terminalEcho(run)}, nil
	}
	if run.Status != model.RunInProgress {
		return nil, util.ErrInvalidRunStatus
	}

	items, item, err := s.currentItem(run, questionID)
	if err != nil {
		return nil, err
	}
	if item.PracticeRequired {
		return nil, util.ErrInvalidRunStatus
	}

	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, err
	}

	activeMs := run.PauseTimer(time.Now())
	if run.TimeUp() {
		completion, err := s.finishRun(run, model.RunFailed, false, ReasonTimeout)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{RunID: run.ID, CorrectAnswer: question.CorrectAnswer, Completion: completion}, nil
	}

	correct := answer == question.CorrectAnswer
	attempt := &model.QuizAttempt{
		RunID:      run.ID,
		QuestionID: questionID,
		UserAnswer: answer,
		IsCorrect:  correct,
		ResponseMs: responseMs,
		Reason:     model.AttemptAnswer,
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	if !correct {
		return s.handleMiss(run, item, question, ReasonWrong)
	}

	run.CorrectCount++
	run.FlushedActiveMs += activeMs
	go func(uid uint, ms int64) {
		if err := s.Activity.RecordCorrect(uid, ms); err != nil {
			logger.Log.Warn("daily activity update failed",
				zap.Uint("userId", uid), zap.Error(err))
		}
	}(run.UserID, activeMs)

	return s.advance(run, items)
}

// ReportInactivity marks the live question missed because the child stalled.
// It behaves like a wrong answer except for the recorded reason.
func (s *QuizService) ReportInactivity(userID uint, runID, questionID string) (*SubmitResult, error) {
	run, err := s.loadOwnedRun(userID, runID)
	if err != nil {
		return nil, err
	}
	if run.Terminal() {
		return &SubmitResult{RunID: run.ID, Completion: s.terminalEcho(run)}, nil
	}
	if run.Status != model.RunInProgress {
		return nil, util.ErrInvalidRunStatus
	}

	_, item, err := s.currentItem(run, questionID)
	if err != nil {
		return nil, err
	}
	if item.PracticeRequired {
		return nil, util.ErrInvalidRunStatus
	}

	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, err
	}

	run.PauseTimer(time.Now())
	if run.TimeUp() {
		completion, err := s.finishRun(run, model.RunFailed, false, ReasonTimeout)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{RunID: run.ID, CorrectAnswer: question.CorrectAnswer, Completion: completion}, nil
	}

	attempt := &model.QuizAttempt{
		RunID:      run.ID,
		QuestionID: questionID,
		IsCorrect:  false,
		Reason:     model.AttemptInactivity,
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	return s.handleMiss(run, item, question, ReasonInactivity)
}

// handleMiss applies the shared wrong-answer/inactivity consequences. The
// timer is already paused. Black degrees fail immediately; colored belts
// keep the run alive but gate the slot behind remedial practice.
func (s *QuizService) handleMiss(run *model.QuizRun, item *model.QuizRunItem, question *model.Question, cause string) (*SubmitResult, error) {
	run.WrongCount++

	if run.Belt.IsBlack() {
		completion, err := s.finishRun(run, model.RunFailed, false, cause)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{
			RunID:         run.ID,
			CorrectAnswer: question.CorrectAnswer,
			Completion:    completion,
		}, nil
	}

	item.PracticeRequired = true
	if err := s.RunRepo.SaveItem(item); err != nil {
		return nil, err
	}
	if err := s.RunRepo.Save(run); err != nil {
		return nil, err
	}

	monitoring.PracticeInterventions.WithLabelValues(cause).Inc()
	return &SubmitResult{
		RunID:            run.ID,
		CorrectAnswer:    question.CorrectAnswer,
		PracticeRequired: true,
	}, nil
}

// advance moves the run past a correctly answered slot: either to the next
// question with the clock running again, or to completion after the last one.
func (s *QuizService) advance(run *model.QuizRun, items []model.QuizRunItem) (*SubmitResult, error) {
	run.CurrentIndex++

	if run.CurrentIndex >= len(items) {
		passed := run.WrongCount == 0 && (!run.Timed() || !run.TimeUp())
		status := model.RunCompleted
		reason := ReasonFinished
		if run.Timed() && run.TimeUp() {
			status = model.RunFailed
			passed = false
			reason = ReasonTimeout
		}
		completion, err := s.finishRun(run, status, passed, reason)
		if err != nil {
			return nil, err
		}
		return &SubmitResult{RunID: run.ID, Correct: true, Completion: completion}, nil
	}

	run.ResumeTimer(time.Now())
	if err := s.RunRepo.Save(run); err != nil {
		return nil, err
	}

	next := items[run.CurrentIndex]
	question, err := s.QuestionRepo.FindByID(next.QuestionID)
	if err != nil {
		return nil, err
	}

	payload := payloadFor(question, run.CurrentIndex, len(items))
	timer := timerFor(run)
	return &SubmitResult{
		RunID:   run.ID,
		Correct: true,
		Next:    &payload,
		Timer:   &timer,
	}, nil
}

// SubmitPracticeAnswer grades a practice question. During the prepared
// warm-up any composed practice question may be answered, in any order. In
// progress, practice is only valid for the live slot that was flagged after
// a miss; a correct answer clears the flag and advances the run with the
// slot still counted as wrong.
func (s *QuizService) SubmitPracticeAnswer(userID uint, runID, questionID string, answer int) (*SubmitResult, error) {
	run, err := s.loadOwnedRun(userID, runID)
	if err != nil {
		return nil, err
	}
	if run.Terminal() {
		return &SubmitResult{RunID: run.ID, Completion: s.terminalEcho(run)}, nil
	}

	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, err
	}
	correct := answer == question.CorrectAnswer

	attempt := &model.QuizAttempt{
		RunID:      run.ID,
		QuestionID: questionID,
		UserAnswer: answer,
		IsCorrect:  correct,
		Reason:     model.AttemptAnswer,
		Practice:   true,
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	if run.Status == model.RunPrepared {
		return &SubmitResult{
			RunID:         run.ID,
			Correct:       correct,
			CorrectAnswer: question.CorrectAnswer,
		}, nil
	}

	items, item, err := s.currentItem(run, questionID)
	if err != nil {
		return nil, err
	}
	if !item.PracticeRequired {
		return nil, util.ErrInvalidRunStatus
	}

	if !correct {
		return &SubmitResult{
			RunID:            run.ID,
			Correct:          false,
			CorrectAnswer:    question.CorrectAnswer,
			PracticeRequired: true,
		}, nil
	}

	item.PracticeRequired = false
	item.Practiced = true
	if err := s.RunRepo.SaveItem(item); err != nil {
		return nil, err
	}

	return s.advance(run, items)
}

// Finalize force-closes a run regardless of remaining questions, for
// explicit quits and client shutdowns. A forced close never passes.
// Finalizing a finished run echoes the existing result.
func (s *QuizService) Finalize(userID uint, runID string) (*CompletionResult, error) {
	run, err := s.loadOwnedRun(userID, runID)
	if err != nil {
		return nil, err
	}
	if run.Terminal() {
		return s.terminalEcho(run), nil
	}

	run.PauseTimer(time.Now())
	return s.finishRun(run, model.RunCompleted, false, ReasonFinalized)
}

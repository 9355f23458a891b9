package service

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/util"
	"mathdojo_backend/pkg/logger"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// In-memory stores standing in for the gorm repositories.

type fakeRunStore struct {
	runs  map[string]*model.QuizRun
	items map[string][]model.QuizRunItem
}

func newFakeRunStore() *fakeRunStore {
	return &fakeRunStore{
		runs:  map[string]*model.QuizRun{},
		items: map[string][]model.QuizRunItem{},
	}
}

func (f *fakeRunStore) Create(r *model.QuizRun) error {
	if r.ID == "" {
		r.ID = fmt.Sprintf("run-%d", len(f.runs)+1)
	}
	cp := *r
	f.runs[r.ID] = &cp
	return nil
}

func (f *fakeRunStore) Save(r *model.QuizRun) error {
	cp := *r
	f.runs[r.ID] = &cp
	return nil
}

func (f *fakeRunStore) FindByID(id string) (*model.QuizRun, error) {
	r, ok := f.runs[id]
	if !ok {
		return nil, util.ErrRunNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRunStore) CreateItems(items []model.QuizRunItem) error {
	for _, it := range items {
		f.items[it.RunID] = append(f.items[it.RunID], it)
	}
	return nil
}

func (f *fakeRunStore) GetItems(runID string) ([]model.QuizRunItem, error) {
	return append([]model.QuizRunItem(nil), f.items[runID]...), nil
}

func (f *fakeRunStore) SaveItem(item *model.QuizRunItem) error {
	list := f.items[item.RunID]
	for i := range list {
		if list[i].Position == item.Position {
			list[i] = *item
			return nil
		}
	}
	return errors.New("unknown item")
}

type fakeQuestionStore struct {
	questions map[string]*model.Question
}

func (f *fakeQuestionStore) FindByID(id string) (*model.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, util.ErrQuestionNotFound
	}
	return q, nil
}

type fakeAttemptStore struct {
	attempts []model.QuizAttempt
}

func (f *fakeAttemptStore) Create(a *model.QuizAttempt) error {
	f.attempts = append(f.attempts, *a)
	return nil
}

type fakeActivity struct {
	mu       sync.Mutex
	corrects int
	recorded int64
	flushed  int64
}

func (f *fakeActivity) RecordCorrect(_ uint, activeMs int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corrects++
	f.recorded += activeMs
	return nil
}

func (f *fakeActivity) FlushActive(_ uint, activeMs int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushed += activeMs
	return nil
}

func (f *fakeActivity) TodayStats(uint) (*DailyStats, error) {
	return &DailyStats{}, nil
}

type fakeUnlocker struct {
	passes []model.Belt
}

func (f *fakeUnlocker) UnlockOnPass(_ uint, _ int, belt model.Belt, passed bool) error {
	if passed {
		f.passes = append(f.passes, belt)
	}
	return nil
}

type quizHarness struct {
	svc       *QuizService
	runs      *fakeRunStore
	questions *fakeQuestionStore
	attempts  *fakeAttemptStore
	activity  *fakeActivity
	unlocker  *fakeUnlocker
}

func newQuizHarness() *quizHarness {
	h := &quizHarness{
		runs:      newFakeRunStore(),
		questions: &fakeQuestionStore{questions: map[string]*model.Question{}},
		attempts:  &fakeAttemptStore{},
		activity:  &fakeActivity{},
		unlocker:  &fakeUnlocker{},
	}
	h.svc = &QuizService{
		RunRepo:      h.runs,
		QuestionRepo: h.questions,
		AttemptRepo:  h.attempts,
		Activity:     h.activity,
		Progression:  h.unlocker,
	}
	return h
}

// seedRun inserts an in-progress run with one question per answer, the clock
// already running for 40ms on the first question.
func (h *quizHarness) seedRun(userID uint, belt model.Belt, answers []int) *model.QuizRun {
	run := model.NewQuizRun(userID, model.OperationAddition, 1, belt)
	run.ID = "run-1"
	run.Status = model.RunInProgress
	started := time.Now().Add(-40 * time.Millisecond)
	run.StartedAt = &started
	h.runs.Save(run)

	items := make([]model.QuizRunItem, 0, len(answers))
	for i, ans := range answers {
		q := &model.Question{
			Type:        model.QuestionSum,
			DisplayText: fmt.Sprintf("%d + 0", ans),
		}
		q.ID = fmt.Sprintf("q-%d", i+1)
		q.CorrectAnswer = ans
		q.SetChoices([]int{ans, ans + 1, ans + 2, ans + 3})
		h.questions.questions[q.ID] = q
		items = append(items, model.QuizRunItem{RunID: run.ID, Position: i, QuestionID: q.ID})
	}
	h.runs.CreateItems(items)
	return run
}

func (h *quizHarness) waitForCorrects(t *testing.T, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		h.activity.mu.Lock()
		n := h.activity.corrects
		h.activity.mu.Unlock()
		if n >= want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("recorded %d correct answers, want %d", n, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestColoredMissGatesPracticeThenAdvances(t *testing.T) {
	h := newQuizHarness()
	h.seedRun(7, model.BeltYellow, []int{4, 6, 9})

	res, err := h.svc.SubmitAnswer(7, "run-1", "q-1", 5, 1200)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !res.PracticeRequired || res.CorrectAnswer != 4 {
		t.Errorf("miss result = %+v, want practiceRequired with answer 4", res)
	}
	if res.Next != nil || res.Completion != nil {
		t.Error("miss on a colored belt must neither advance nor finish")
	}

	stored := h.runs.runs["run-1"]
	if stored.WrongCount != 1 || stored.Status != model.RunInProgress {
		t.Errorf("run after miss = wrong %d status %s", stored.WrongCount, stored.Status)
	}
	if stored.StartedAt != nil {
		t.Error("clock should be paused while the slot awaits practice")
	}
	if !h.runs.items["run-1"][0].PracticeRequired {
		t.Error("missed slot not flagged for practice")
	}

	// The flagged slot cannot be answered as a quiz question.
	if _, err := h.svc.SubmitAnswer(7, "run-1", "q-1", 4, 0); !errors.Is(err, util.ErrInvalidRunStatus) {
		t.Errorf("answer on flagged slot: err = %v, want %v", err, util.ErrInvalidRunStatus)
	}

	// A wrong practice answer keeps the gate closed.
	pres, err := h.svc.SubmitPracticeAnswer(7, "run-1", "q-1", 3)
	if err != nil {
		t.Fatalf("SubmitPracticeAnswer: %v", err)
	}
	if pres.Correct || !pres.PracticeRequired {
		t.Errorf("wrong practice result = %+v", pres)
	}
	if h.runs.runs["run-1"].CurrentIndex != 0 {
		t.Error("wrong practice answer must not advance the run")
	}

	// A correct practice answer clears the flag and advances with the clock
	// running again; the slot still counts as wrong.
	pres, err = h.svc.SubmitPracticeAnswer(7, "run-1", "q-1", 4)
	if err != nil {
		t.Fatalf("SubmitPracticeAnswer: %v", err)
	}
	if !pres.Correct || pres.Next == nil || pres.Next.ID != "q-2" {
		t.Fatalf("correct practice result = %+v, want next q-2", pres)
	}
	if pres.Timer == nil {
		t.Error("advance should report the timer")
	}

	stored = h.runs.runs["run-1"]
	if stored.CurrentIndex != 1 {
		t.Errorf("current index = %d, want 1", stored.CurrentIndex)
	}
	if stored.StartedAt == nil {
		t.Error("clock should resume on the next question")
	}
	if stored.WrongCount != 1 {
		t.Errorf("wrong count = %d, want the miss to stick", stored.WrongCount)
	}
	item := h.runs.items["run-1"][0]
	if item.PracticeRequired || !item.Practiced {
		t.Errorf("slot after practice = %+v", item)
	}
	if len(h.attempts.attempts) != 3 {
		t.Errorf("attempts recorded = %d, want 3", len(h.attempts.attempts))
	}
}

func TestBlackDegreeMissFailsImmediately(t *testing.T) {
	h := newQuizHarness()
	h.seedRun(7, model.BlackBelt(1), []int{4, 6})

	res, err := h.svc.SubmitAnswer(7, "run-1", "q-1", 5, 800)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if res.Completion == nil {
		t.Fatal("black-degree miss must finish the run")
	}
	if res.Completion.Status != model.RunFailed || res.Completion.Passed {
		t.Errorf("completion = %+v, want failed and not passed", res.Completion)
	}
	if res.Completion.Reason != ReasonWrong {
		t.Errorf("reason = %q, want %q", res.Completion.Reason, ReasonWrong)
	}

	stored := h.runs.runs["run-1"]
	if stored.Status != model.RunFailed || stored.Reason != ReasonWrong {
		t.Errorf("stored run = status %s reason %q", stored.Status, stored.Reason)
	}
	if len(h.unlocker.passes) != 0 {
		t.Errorf("failed run unlocked %v", h.unlocker.passes)
	}
	if h.activity.flushed != stored.TotalActiveMs {
		t.Errorf("flushed %dms, want the run's %dms", h.activity.flushed, stored.TotalActiveMs)
	}
}

func TestTerminalRunEchoesPersistedOutcome(t *testing.T) {
	tests := []struct {
		name       string
		status     model.RunStatus
		reason     string
		wrong      int
		wantPassed bool
	}{
		{"passing finish", model.RunCompleted, ReasonFinished, 0, true},
		{"finish with misses", model.RunCompleted, ReasonFinished, 2, false},
		{"timeout", model.RunFailed, ReasonTimeout, 0, false},
		{"failed on wrong", model.RunFailed, ReasonWrong, 1, false},
		{"forced finalize", model.RunCompleted, ReasonFinalized, 0, false},
	}

	for _, tt := range tests {
		h := newQuizHarness()
		run := h.seedRun(7, model.BeltYellow, []int{4})
		run.Status = tt.status
		run.Reason = tt.reason
		run.WrongCount = tt.wrong
		run.StartedAt = nil
		h.runs.Save(run)

		check := func(op string, c *CompletionResult) {
			if c == nil {
				t.Fatalf("%s/%s: no completion echo", tt.name, op)
			}
			if c.Status != tt.status || c.Reason != tt.reason || c.Passed != tt.wantPassed {
				t.Errorf("%s/%s: echo = status %s reason %q passed %v, want %s %q %v",
					tt.name, op, c.Status, c.Reason, c.Passed, tt.status, tt.reason, tt.wantPassed)
			}
		}

		res, err := h.svc.SubmitAnswer(7, "run-1", "q-1", 4, 0)
		if err != nil {
			t.Fatalf("%s: SubmitAnswer: %v", tt.name, err)
		}
		check("answer", res.Completion)

		res, err = h.svc.ReportInactivity(7, "run-1", "q-1")
		if err != nil {
			t.Fatalf("%s: ReportInactivity: %v", tt.name, err)
		}
		check("inactivity", res.Completion)

		comp, err := h.svc.Finalize(7, "run-1")
		if err != nil {
			t.Fatalf("%s: Finalize: %v", tt.name, err)
		}
		check("finalize", comp)

		if len(h.attempts.attempts) != 0 {
			t.Errorf("%s: terminal echo recorded %d attempts", tt.name, len(h.attempts.attempts))
		}
		if stored := h.runs.runs["run-1"]; stored.Status != tt.status || stored.WrongCount != tt.wrong {
			t.Errorf("%s: terminal echo mutated the run: %+v", tt.name, stored)
		}
	}
}

func TestActiveTimeFlushedExactlyOnce(t *testing.T) {
	h := newQuizHarness()
	h.seedRun(7, model.BeltYellow, []int{4, 6})

	res, err := h.svc.SubmitAnswer(7, "run-1", "q-1", 4, 500)
	if err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if !res.Correct || res.Next == nil {
		t.Fatalf("first answer result = %+v", res)
	}

	res, err = h.svc.SubmitAnswer(7, "run-1", "q-2", 6, 500)
	if err != nil {
		t.Fatalf("second answer: %v", err)
	}
	if res.Completion == nil || !res.Completion.Passed {
		t.Fatalf("final result = %+v, want a passing completion", res)
	}

	stored := h.runs.runs["run-1"]
	if stored.TotalActiveMs < 40 {
		t.Fatalf("total active = %dms, want the seeded interval", stored.TotalActiveMs)
	}
	if stored.FlushedActiveMs != stored.TotalActiveMs {
		t.Errorf("flushed %dms of %dms active", stored.FlushedActiveMs, stored.TotalActiveMs)
	}

	// Per-answer records plus the completion flush must add up to the run's
	// active time exactly once.
	h.waitForCorrects(t, 2)
	h.activity.mu.Lock()
	total := h.activity.recorded + h.activity.flushed
	h.activity.mu.Unlock()
	if total != stored.TotalActiveMs {
		t.Errorf("daily active time = %dms, want %dms recorded once", total, stored.TotalActiveMs)
	}

	if len(h.unlocker.passes) != 1 || h.unlocker.passes[0] != model.BeltYellow {
		t.Errorf("unlocks = %v, want one yellow pass", h.unlocker.passes)
	}
}

func TestTerminalEchoRecomputesPass(t *testing.T) {
	s := &QuizService{}

	tests := []struct {
		name       string
		status     model.RunStatus
		reason     string
		wrong      int
		limitMs    int64
		activeMs   int64
		wantPassed bool
	}{
		{"clean colored completion", model.RunCompleted, ReasonFinished, 0, 0, 0, true},
		{"completion with misses", model.RunCompleted, ReasonFinished, 2, 0, 0, false},
		{"failed run never passes", model.RunFailed, ReasonWrong, 0, 0, 0, false},
		{"timed completion under limit", model.RunCompleted, ReasonFinished, 0, 120000, 115000, true},
		{"timed completion exactly at limit", model.RunCompleted, ReasonFinished, 0, 120000, 120000, true},
		{"finalized completion", model.RunCompleted, ReasonFinalized, 0, 0, 0, false},
		{"reason missing on old rows", model.RunCompleted, "", 0, 0, 0, true},
	}

	for _, tt := range tests {
		run := &model.QuizRun{
			Status:        tt.status,
			Reason:        tt.reason,
			WrongCount:    tt.wrong,
			LimitMs:       tt.limitMs,
			TotalActiveMs: tt.activeMs,
		}
		echo := s.terminalEcho(run)
		if echo.Passed != tt.wantPassed {
			t.Errorf("%s: passed = %v, want %v", tt.name, echo.Passed, tt.wantPassed)
		}
		if tt.reason != "" && echo.Reason != tt.reason {
			t.Errorf("%s: reason = %q, want %q", tt.name, echo.Reason, tt.reason)
		}
	}
}

func TestQuestionPayloadCarriesAnswerAndChoices(t *testing.T) {
	q := &model.Question{
		Type:        model.QuestionSum,
		DisplayText: "3 + 4",
	}
	q.ID = "q-1"
	q.CorrectAnswer = 7
	q.SetChoices([]int{7, 8, 6, 9})

	p := payloadFor(q, 2, 10)
	if p.ID != "q-1" || p.Position != 2 || p.Total != 10 {
		t.Errorf("payload = %+v", p)
	}
	if p.CorrectAnswer != 7 {
		t.Errorf("correct answer = %d, want 7", p.CorrectAnswer)
	}
	if len(p.Choices) != 4 {
		t.Errorf("choices = %v, want 4 values", p.Choices)
	}
}

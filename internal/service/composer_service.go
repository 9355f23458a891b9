package service

import (
	"math/rand"
	"sync"
	"time"

	"mathdojo_backend/internal/model"
	"mathdojo_backend/internal/repository"
)

// ComposerService builds the ordered question sequences for quiz runs and
// practice preludes. Every generated question is persisted immediately so it
// has a stable reference id before the run starts; composing is a sequence
// of create-and-collect operations, not a pure in-memory computation.
type ComposerService struct {
	Catalog      *CatalogService
	QuestionRepo *repository.QuestionRepository

	mu  sync.Mutex
	rng *rand.Rand
}

func NewComposerService(catalog *CatalogService, questionRepo *repository.QuestionRepository) *ComposerService {
	return &ComposerService{
		Catalog:      catalog,
		QuestionRepo: questionRepo,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// questionSpec is the in-memory blueprint of a question before persistence.
type questionSpec struct {
	Type   model.QuestionType
	A      int
	B      int
	Source model.QuestionSource
}

func (sp questionSpec) displayText() string {
	if sp.Type == model.QuestionDigit {
		return model.DigitDisplayText(sp.A)
	}
	return model.SumDisplayText(sp.A, sp.B)
}

func (sp questionSpec) answer() int {
	if sp.Type == model.QuestionDigit {
		return sp.A
	}
	return sp.A + sp.B
}

func sumSpec(a, b int, source model.QuestionSource) questionSpec {
	return questionSpec{Type: model.QuestionSum, A: a, B: b, Source: source}
}

func digitSpec(d int, source model.QuestionSource) questionSpec {
	return questionSpec{Type: model.QuestionDigit, A: d, Source: source}
}

// BuildPracticeSet composes and persists the pre-quiz practice items for a
// slot. An unseeded slot degrades to an empty set, never an error.
func (s *ComposerService) BuildPracticeSet(op model.Operation, level int, belt model.Belt) ([]model.Question, error) {
	current, err := s.Catalog.Get(op, level, belt)
	if err != nil {
		return nil, err
	}

	specs := composePracticeSpecs(level, belt, current)
	return s.persist(op, level, belt, specs)
}

// BuildQuizSet composes and persists the full ordered quiz sequence for a
// slot: 10 items for colored belts, 20/30 for black degrees.
func (s *ComposerService) BuildQuizSet(op model.Operation, level int, belt model.Belt) ([]model.Question, error) {
	current, err := s.Catalog.Get(op, level, belt)
	if err != nil {
		return nil, err
	}

	var specs []questionSpec
	if deg, ok := belt.BlackDegree(); ok {
		pool, err := s.reviewPool(op, level, belt)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		specs = composeBlackQuizSpecs(s.rng, level, deg, pool)
		s.mu.Unlock()
	} else {
		pool, err := s.reviewPool(op, level, belt)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		specs = composeColoredQuizSpecs(s.rng, level, belt, current, pool)
		s.mu.Unlock()
	}

	return s.persist(op, level, belt, specs)
}

// reviewPool collects the canonical pairs eligible as review material: for a
// colored belt, every earlier belt of the same level plus all belts of every
// earlier level; for a black degree, all belts of all levels up to and
// including the current one. Unseeded slots are skipped.
func (s *ComposerService) reviewPool(op model.Operation, level int, belt model.Belt) ([]model.FactPair, error) {
	var pool []model.FactPair

	appendSlot := func(lvl int, b model.Belt) error {
		fact, err := s.Catalog.Get(op, lvl, b)
		if err != nil {
			return err
		}
		if fact != nil {
			pool = append(pool, *fact)
		}
		return nil
	}

	if belt.IsBlack() {
		for lvl := 1; lvl <= level; lvl++ {
			for _, b := range model.ColoredBelts() {
				if err := appendSlot(lvl, b); err != nil {
					return nil, err
				}
			}
		}
		return pool, nil
	}

	for lvl := 1; lvl < level; lvl++ {
		for _, b := range model.ColoredBelts() {
			if err := appendSlot(lvl, b); err != nil {
				return nil, err
			}
		}
	}
	for _, b := range model.PreviousColoredBelts(belt) {
		if err := appendSlot(level, b); err != nil {
			return nil, err
		}
	}
	return pool, nil
}

func (s *ComposerService) persist(op model.Operation, level int, belt model.Belt, specs []questionSpec) ([]model.Question, error) {
	out := make([]model.Question, 0, len(specs))
	for _, sp := range specs {
		q := model.Question{
			Operation:     op,
			Level:         level,
			Belt:          belt,
			Type:          sp.Type,
			A:             sp.A,
			B:             sp.B,
			DisplayText:   sp.displayText(),
			CorrectAnswer: sp.answer(),
			Source:        sp.Source,
		}
		s.mu.Lock()
		if sp.Type == model.QuestionDigit {
			q.SetChoices(digitChoices(s.rng, sp.A))
		} else {
			q.SetChoices(sumChoices(s.rng, sp.answer()))
		}
		s.mu.Unlock()

		if err := s.QuestionRepo.Create(&q); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// composePracticeSpecs builds the pre-quiz practice prelude. L1/white is the
// digit-identity special case; other colored belts practice the canonical
// pair in one or both operand orders. Black degrees get no prelude.
func composePracticeSpecs(level int, belt model.Belt, current *model.FactPair) []questionSpec {
	if belt.IsBlack() {
		return nil
	}
	if level == 1 && belt == model.BeltWhite {
		return []questionSpec{digitSpec(0, model.SourceCurrent)}
	}
	if current == nil {
		return nil
	}
	if current.Identical() {
		return []questionSpec{sumSpec(current.A, current.B, model.SourceCurrent)}
	}
	return []questionSpec{
		sumSpec(current.A, current.B, model.SourceCurrent),
		sumSpec(current.B, current.A, model.SourceCurrent),
	}
}

// composeColoredQuizSpecs builds the 10-item colored-belt quiz: the new pool
// for the belt under test, review draws with replacement from the earlier
// material, and a random interleave of the two.
func composeColoredQuizSpecs(rng *rand.Rand, level int, belt model.Belt, current *model.FactPair, pool []model.FactPair) []questionSpec {
	var news []questionSpec
	if level == 1 && belt == model.BeltWhite {
		news = []questionSpec{
			sumSpec(0, 0, model.SourceCurrent),
			sumSpec(0, 0, model.SourceCurrent),
		}
	} else if current != nil {
		if current.Identical() {
			news = []questionSpec{
				sumSpec(current.A, current.B, model.SourceCurrent),
				sumSpec(current.A, current.B, model.SourceCurrent),
			}
		} else {
			news = []questionSpec{
				sumSpec(current.A, current.B, model.SourceCurrent),
				sumSpec(current.A, current.B, model.SourceCurrent),
				sumSpec(current.B, current.A, model.SourceCurrent),
				sumSpec(current.B, current.A, model.SourceCurrent),
			}
		}
	}

	reviewCount := model.ColoredQuizLength - len(news)
	var reviews []questionSpec

	if level == 1 && belt == model.BeltWhite {
		for i := 0; i < reviewCount; i++ {
			reviews = append(reviews, digitSpec(rng.Intn(10), model.SourcePrevious))
		}
	} else {
		// Level 2 still leans on digit recognition: up to 4 review slots
		// become fresh digit items before the canonical pool fills the rest.
		digitSlots := 0
		if level == 2 && belt != model.BeltWhite {
			digitSlots = 4
			if digitSlots > reviewCount {
				digitSlots = reviewCount
			}
		}
		for i := 0; i < digitSlots; i++ {
			reviews = append(reviews, digitSpec(rng.Intn(10), model.SourcePrevious))
		}
		if len(pool) > 0 {
			for i := digitSlots; i < reviewCount; i++ {
				f := pool[rng.Intn(len(pool))]
				reviews = append(reviews, sumSpec(f.A, f.B, model.SourcePrevious))
			}
		}
	}

	specs := interleave(rng, news, reviews)
	repairConsecutiveDuplicates(specs)
	return specs
}

// composeBlackQuizSpecs builds a black-degree run: 20 items (degrees 1-6) or
// 30 (degree 7), all sampled with replacement from the cumulative pool;
// level-1 runs lead with 3 digit-recognition items.
func composeBlackQuizSpecs(rng *rand.Rand, level int, degree int, pool []model.FactPair) []questionSpec {
	cfg, ok := model.DegreeConfigFor(degree)
	if !ok {
		return nil
	}

	var specs []questionSpec
	if level == 1 {
		for i := 0; i < 3; i++ {
			specs = append(specs, digitSpec(rng.Intn(10), model.SourcePrevious))
		}
	}
	if len(pool) > 0 {
		for len(specs) < cfg.Questions {
			f := pool[rng.Intn(len(pool))]
			specs = append(specs, sumSpec(f.A, f.B, model.SourcePrevious))
		}
	}

	repairConsecutiveDuplicates(specs)
	return specs
}

// interleave scatters the new items over |new| random distinct slot
// positions and fills the remaining slots with the shuffled reviews.
func interleave(rng *rand.Rand, news, reviews []questionSpec) []questionSpec {
	total := len(news) + len(reviews)
	if total == 0 {
		return nil
	}

	positions := rng.Perm(total)[:len(news)]
	newSlots := make(map[int]bool, len(news))
	for _, p := range positions {
		newSlots[p] = true
	}

	shuffledNew := append([]questionSpec(nil), news...)
	rng.Shuffle(len(shuffledNew), func(i, j int) {
		shuffledNew[i], shuffledNew[j] = shuffledNew[j], shuffledNew[i]
	})
	shuffledReviews := append([]questionSpec(nil), reviews...)
	rng.Shuffle(len(shuffledReviews), func(i, j int) {
		shuffledReviews[i], shuffledReviews[j] = shuffledReviews[j], shuffledReviews[i]
	})

	out := make([]questionSpec, 0, total)
	ni, ri := 0, 0
	for i := 0; i < total; i++ {
		if newSlots[i] {
			out = append(out, shuffledNew[ni])
			ni++
		} else {
			out = append(out, shuffledReviews[ri])
			ri++
		}
	}
	return out
}

// repairConsecutiveDuplicates is a best-effort in-place pass removing
// adjacent items with equal display text: swap in the nearest later item
// with a different text, or failing that an earlier position where the swap
// doesn't create a new adjacent duplicate. A pool without enough variety can
// leave duplicates standing.
func repairConsecutiveDuplicates(specs []questionSpec) {
	for i := 1; i < len(specs); i++ {
		if specs[i].displayText() != specs[i-1].displayText() {
			continue
		}

		swapped := false
		for j := i + 1; j < len(specs); j++ {
			if specs[j].displayText() != specs[i-1].displayText() {
				specs[i], specs[j] = specs[j], specs[i]
				swapped = true
				break
			}
		}
		if swapped {
			continue
		}

		for j := i - 2; j >= 0; j-- {
			if !swapOK(specs, i, j) {
				continue
			}
			specs[i], specs[j] = specs[j], specs[i]
			break
		}
	}
}

// swapOK checks that moving specs[i] to position j (and specs[j] to i)
// breaks the duplicate at i without creating a new adjacent pair around j.
func swapOK(specs []questionSpec, i, j int) bool {
	it := specs[i].displayText()
	jt := specs[j].displayText()

	if jt == specs[i-1].displayText() {
		return false
	}
	if j > 0 && specs[j-1].displayText() == it {
		return false
	}
	if j+1 < len(specs) && j+1 != i && specs[j+1].displayText() == it {
		return false
	}
	return true
}

// sumChoices builds the 4-way choice set for an arithmetic answer: the sum
// plus near-miss distractors, deduplicated, padded to 4 unique values and
// shuffled.
func sumChoices(rng *rand.Rand, sum int) []int {
	lower := sum - 1
	if lower < 0 {
		lower = 0
	}
	candidates := []int{sum, sum + 1, lower, sum + 2}

	seen := make(map[int]bool)
	out := make([]int, 0, 4)
	for _, c := range candidates {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for len(out) < 4 {
		c := sum + len(out)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}

	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// digitChoices builds the digit-recognition choice set: the digit plus three
// wrap-around neighbors, shuffled.
func digitChoices(rng *rand.Rand, d int) []int {
	out := []int{d, (d + 1) % 10, (d + 2) % 10, (d + 3) % 10}
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

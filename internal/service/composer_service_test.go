package service

import (
	"math/rand"
	"testing"

	"mathdojo_backend/internal/model"
)

func newTestRng() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func countType(specs []questionSpec, qt model.QuestionType) int {
	n := 0
	for _, sp := range specs {
		if sp.Type == qt {
			n++
		}
	}
	return n
}

func countSource(specs []questionSpec, src model.QuestionSource) int {
	n := 0
	for _, sp := range specs {
		if sp.Source == src {
			n++
		}
	}
	return n
}

func TestComposePracticeSpecs(t *testing.T) {
	fact := &model.FactPair{Operation: model.OperationAddition, Level: 1, Belt: model.BeltGreen, A: 1, B: 2}
	identical := &model.FactPair{Operation: model.OperationAddition, Level: 1, Belt: model.BeltYellow, A: 1, B: 1}

	t.Run("black belts get no prelude", func(t *testing.T) {
		if got := composePracticeSpecs(1, model.BlackBelt(1), fact); got != nil {
			t.Errorf("expected nil, got %d specs", len(got))
		}
	})

	t.Run("level 1 white is a single digit item", func(t *testing.T) {
		got := composePracticeSpecs(1, model.BeltWhite, nil)
		if len(got) != 1 || got[0].Type != model.QuestionDigit || got[0].A != 0 {
			t.Errorf("got %+v, want one digit(0) spec", got)
		}
	})

	t.Run("identical pair practices once", func(t *testing.T) {
		got := composePracticeSpecs(1, model.BeltYellow, identical)
		if len(got) != 1 || got[0].A != 1 || got[0].B != 1 {
			t.Errorf("got %+v, want one 1+1 spec", got)
		}
	})

	t.Run("distinct pair practices both orders", func(t *testing.T) {
		got := composePracticeSpecs(1, model.BeltGreen, fact)
		if len(got) != 2 {
			t.Fatalf("got %d specs, want 2", len(got))
		}
		if got[0].A != 1 || got[0].B != 2 || got[1].A != 2 || got[1].B != 1 {
			t.Errorf("got %+v, want 1+2 then 2+1", got)
		}
	})

	t.Run("unseeded slot degrades to empty", func(t *testing.T) {
		if got := composePracticeSpecs(1, model.BeltGreen, nil); got != nil {
			t.Errorf("expected nil for unseeded slot, got %+v", got)
		}
	})
}

func TestComposeColoredQuizSpecsLevelOneWhite(t *testing.T) {
	specs := composeColoredQuizSpecs(newTestRng(), 1, model.BeltWhite, nil, nil)

	if len(specs) != model.ColoredQuizLength {
		t.Fatalf("got %d specs, want %d", len(specs), model.ColoredQuizLength)
	}
	if got := countSource(specs, model.SourceCurrent); got != 2 {
		t.Errorf("current-source items = %d, want 2", got)
	}
	if got := countType(specs, model.QuestionDigit); got != 8 {
		t.Errorf("digit items = %d, want 8", got)
	}
	for _, sp := range specs {
		if sp.Source == model.SourceCurrent && (sp.A != 0 || sp.B != 0) {
			t.Errorf("level 1 white new item must be 0+0, got %d+%d", sp.A, sp.B)
		}
	}
}

func TestComposeColoredQuizSpecsDistinctPair(t *testing.T) {
	current := &model.FactPair{A: 4, B: 5}
	pool := []model.FactPair{{A: 0, B: 0}, {A: 1, B: 1}, {A: 1, B: 2}, {A: 2, B: 2}}

	specs := composeColoredQuizSpecs(newTestRng(), 3, model.BeltGreen, current, pool)

	if len(specs) != model.ColoredQuizLength {
		t.Fatalf("got %d specs, want %d", len(specs), model.ColoredQuizLength)
	}
	if got := countSource(specs, model.SourceCurrent); got != 4 {
		t.Errorf("current-source items = %d, want 4", got)
	}

	orders := map[[2]int]int{}
	for _, sp := range specs {
		if sp.Source == model.SourceCurrent {
			orders[[2]int{sp.A, sp.B}]++
		}
	}
	if orders[[2]int{4, 5}] != 2 || orders[[2]int{5, 4}] != 2 {
		t.Errorf("new items = %v, want two of each operand order", orders)
	}

	for _, sp := range specs {
		if sp.Source == model.SourcePrevious && sp.Type == model.QuestionSum {
			found := false
			for _, f := range pool {
				if f.A == sp.A && f.B == sp.B {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("review item %d+%d not drawn from pool", sp.A, sp.B)
			}
		}
	}
}

func TestComposeColoredQuizSpecsLevelTwoDigitReviews(t *testing.T) {
	current := &model.FactPair{A: 4, B: 4}
	pool := []model.FactPair{{A: 3, B: 4}, {A: 1, B: 2}}

	specs := composeColoredQuizSpecs(newTestRng(), 2, model.BeltYellow, current, pool)

	if len(specs) != model.ColoredQuizLength {
		t.Fatalf("got %d specs, want %d", len(specs), model.ColoredQuizLength)
	}
	if got := countType(specs, model.QuestionDigit); got != 4 {
		t.Errorf("digit review items = %d, want 4", got)
	}
	if got := countSource(specs, model.SourceCurrent); got != 2 {
		t.Errorf("current-source items = %d, want 2 for an identical pair", got)
	}
}

func TestComposeColoredQuizSpecsEmptyPoolShrinks(t *testing.T) {
	current := &model.FactPair{A: 1, B: 1}

	specs := composeColoredQuizSpecs(newTestRng(), 1, model.BeltYellow, current, nil)

	// Yellow has no earlier material at level 1: just the two new items.
	if len(specs) != 2 {
		t.Errorf("got %d specs, want 2 with an empty review pool", len(specs))
	}
}

func TestComposeBlackQuizSpecs(t *testing.T) {
	pool := []model.FactPair{{A: 0, B: 0}, {A: 1, B: 1}, {A: 1, B: 2}, {A: 2, B: 2}, {A: 2, B: 3}, {A: 3, B: 3}}

	t.Run("level 1 degree 1", func(t *testing.T) {
		specs := composeBlackQuizSpecs(newTestRng(), 1, 1, pool)
		if len(specs) != 20 {
			t.Fatalf("got %d specs, want 20", len(specs))
		}
		if got := countType(specs, model.QuestionDigit); got != 3 {
			t.Errorf("digit items = %d, want 3 on level 1", got)
		}
	})

	t.Run("level 2 has no digit items", func(t *testing.T) {
		specs := composeBlackQuizSpecs(newTestRng(), 2, 3, pool)
		if len(specs) != 20 {
			t.Fatalf("got %d specs, want 20", len(specs))
		}
		if got := countType(specs, model.QuestionDigit); got != 0 {
			t.Errorf("digit items = %d, want 0 on level 2", got)
		}
	})

	t.Run("degree 7 is 30 items", func(t *testing.T) {
		specs := composeBlackQuizSpecs(newTestRng(), 2, 7, pool)
		if len(specs) != 30 {
			t.Errorf("got %d specs, want 30", len(specs))
		}
	})

	t.Run("unknown degree", func(t *testing.T) {
		if specs := composeBlackQuizSpecs(newTestRng(), 1, 9, pool); specs != nil {
			t.Errorf("got %d specs, want nil", len(specs))
		}
	})

	t.Run("every item sourced as review", func(t *testing.T) {
		specs := composeBlackQuizSpecs(newTestRng(), 1, 2, pool)
		if got := countSource(specs, model.SourcePrevious); got != len(specs) {
			t.Errorf("previous-source items = %d, want all %d", got, len(specs))
		}
	})
}

func TestInterleavePreservesItems(t *testing.T) {
	news := []questionSpec{sumSpec(1, 2, model.SourceCurrent), sumSpec(2, 1, model.SourceCurrent)}
	reviews := []questionSpec{
		sumSpec(0, 0, model.SourcePrevious),
		sumSpec(1, 1, model.SourcePrevious),
		sumSpec(2, 2, model.SourcePrevious),
	}

	out := interleave(newTestRng(), news, reviews)

	if len(out) != 5 {
		t.Fatalf("got %d items, want 5", len(out))
	}

	counts := map[string]int{}
	for _, sp := range out {
		counts[sp.displayText()]++
	}
	for _, sp := range append(append([]questionSpec(nil), news...), reviews...) {
		counts[sp.displayText()]--
	}
	for text, n := range counts {
		if n != 0 {
			t.Errorf("item %q count off by %d after interleave", text, n)
		}
	}

	if out := interleave(newTestRng(), nil, nil); out != nil {
		t.Errorf("interleave of nothing = %v, want nil", out)
	}
}

func TestInterleaveScattersNewItems(t *testing.T) {
	news := []questionSpec{sumSpec(9, 9, model.SourceCurrent)}
	reviews := []questionSpec{
		sumSpec(0, 0, model.SourcePrevious),
		sumSpec(1, 1, model.SourcePrevious),
	}

	// Across seeds the single new item should land in different slots.
	positions := map[int]bool{}
	for seed := int64(0); seed < 20; seed++ {
		out := interleave(rand.New(rand.NewSource(seed)), news, reviews)
		for i, sp := range out {
			if sp.Source == model.SourceCurrent {
				positions[i] = true
			}
		}
	}
	if len(positions) < 2 {
		t.Errorf("new item always landed at the same position %v", positions)
	}
}

func TestRepairConsecutiveDuplicates(t *testing.T) {
	t.Run("swaps in a later different item", func(t *testing.T) {
		specs := []questionSpec{
			sumSpec(1, 1, model.SourcePrevious),
			sumSpec(1, 1, model.SourcePrevious),
			sumSpec(2, 2, model.SourcePrevious),
			sumSpec(3, 3, model.SourcePrevious),
		}
		repairConsecutiveDuplicates(specs)
		for i := 1; i < len(specs); i++ {
			if specs[i].displayText() == specs[i-1].displayText() {
				t.Errorf("adjacent duplicate %q left at %d in %v", specs[i].displayText(), i, specs)
			}
		}
	})

	t.Run("uniform input left untouched", func(t *testing.T) {
		specs := []questionSpec{
			sumSpec(1, 1, model.SourcePrevious),
			sumSpec(1, 1, model.SourcePrevious),
			sumSpec(1, 1, model.SourcePrevious),
		}
		repairConsecutiveDuplicates(specs)
		if len(specs) != 3 {
			t.Errorf("repair must not change length, got %d", len(specs))
		}
	})

	t.Run("backward swap when tail is exhausted", func(t *testing.T) {
		specs := []questionSpec{
			sumSpec(2, 2, model.SourcePrevious),
			sumSpec(3, 3, model.SourcePrevious),
			sumSpec(1, 1, model.SourcePrevious),
			sumSpec(1, 1, model.SourcePrevious),
		}
		repairConsecutiveDuplicates(specs)
		for i := 1; i < len(specs); i++ {
			if specs[i].displayText() == specs[i-1].displayText() {
				t.Errorf("adjacent duplicate %q left at %d in %v", specs[i].displayText(), i, specs)
			}
		}
	})
}

func TestSumChoices(t *testing.T) {
	for _, sum := range []int{0, 1, 2, 5, 18} {
		choices := sumChoices(newTestRng(), sum)

		if len(choices) != 4 {
			t.Fatalf("sum %d: got %d choices, want 4", sum, len(choices))
		}

		seen := map[int]bool{}
		hasAnswer := false
		for _, c := range choices {
			if seen[c] {
				t.Errorf("sum %d: duplicate choice %d in %v", sum, c, choices)
			}
			seen[c] = true
			if c == sum {
				hasAnswer = true
			}
			if c < 0 {
				t.Errorf("sum %d: negative choice %d", sum, c)
			}
		}
		if !hasAnswer {
			t.Errorf("sum %d: correct answer missing from %v", sum, choices)
		}
	}
}

func TestDigitChoices(t *testing.T) {
	for d := 0; d <= 9; d++ {
		choices := digitChoices(newTestRng(), d)

		if len(choices) != 4 {
			t.Fatalf("digit %d: got %d choices, want 4", d, len(choices))
		}

		seen := map[int]bool{}
		hasAnswer := false
		for _, c := range choices {
			if c < 0 || c > 9 {
				t.Errorf("digit %d: choice %d out of range", d, c)
			}
			if seen[c] {
				t.Errorf("digit %d: duplicate choice %d in %v", d, c, choices)
			}
			seen[c] = true
			if c == d {
				hasAnswer = true
			}
		}
		if !hasAnswer {
			t.Errorf("digit %d: correct answer missing from %v", d, choices)
		}
	}
}

func TestQuestionSpecAnswerAndText(t *testing.T) {
	sum := sumSpec(3, 4, model.SourceCurrent)
	if sum.answer() != 7 {
		t.Errorf("sum answer = %d, want 7", sum.answer())
	}
	if sum.displayText() != "3 + 4" {
		t.Errorf("sum text = %q, want %q", sum.displayText(), "3 + 4")
	}

	digit := digitSpec(6, model.SourcePrevious)
	if digit.answer() != 6 {
		t.Errorf("digit answer = %d, want 6", digit.answer())
	}
}

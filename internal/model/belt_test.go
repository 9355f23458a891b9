package model

import (
	"testing"
	"time"
)

func TestNextColoredBelt(t *testing.T) {
	tests := []struct {
		belt Belt
		next Belt
		ok   bool
	}{
		{BeltWhite, BeltYellow, true},
		{BeltYellow, BeltGreen, true},
		{BeltGreen, BeltBlue, true},
		{BeltBlue, BeltRed, true},
		{BeltRed, BeltBrown, true},
		{BeltBrown, "", false},
	}

	for _, tt := range tests {
		next, ok := NextColoredBelt(tt.belt)
		if ok != tt.ok || next != tt.next {
			t.Errorf("NextColoredBelt(%s) = (%s, %v), want (%s, %v)", tt.belt, next, ok, tt.next, tt.ok)
		}
	}
}

func TestBlackDegree(t *testing.T) {
	tests := []struct {
		belt   Belt
		degree int
		ok     bool
	}{
		{BlackBelt(1), 1, true},
		{BlackBelt(7), 7, true},
		{Belt("black-3"), 3, true},
		{BeltBrown, 0, false},
		{Belt("black-0"), 0, false},
		{Belt("black-8"), 0, false},
		{Belt("black-x"), 0, false},
		{Belt("black-"), 0, false},
	}

	for _, tt := range tests {
		degree, ok := tt.belt.BlackDegree()
		if ok != tt.ok || degree != tt.degree {
			t.Errorf("BlackDegree(%s) = (%d, %v), want (%d, %v)", tt.belt, degree, ok, tt.degree, tt.ok)
		}
	}
}

func TestBeltValid(t *testing.T) {
	valid := []Belt{BeltWhite, BeltYellow, BeltGreen, BeltBlue, BeltRed, BeltBrown, BlackBelt(1), BlackBelt(7)}
	for _, b := range valid {
		if !b.Valid() {
			t.Errorf("expected %s to be valid", b)
		}
	}

	invalid := []Belt{"", "purple", "black", "black-0", "black-8", "Black-1"}
	for _, b := range invalid {
		if b.Valid() {
			t.Errorf("expected %s to be invalid", b)
		}
	}
}

func TestPreviousColoredBelts(t *testing.T) {
	prev := PreviousColoredBelts(BeltGreen)
	want := []Belt{BeltWhite, BeltYellow}
	if len(prev) != len(want) {
		t.Fatalf("PreviousColoredBelts(green) = %v, want %v", prev, want)
	}
	for i := range want {
		if prev[i] != want[i] {
			t.Errorf("PreviousColoredBelts(green)[%d] = %s, want %s", i, prev[i], want[i])
		}
	}

	if got := PreviousColoredBelts(BeltWhite); len(got) != 0 {
		t.Errorf("PreviousColoredBelts(white) = %v, want empty", got)
	}
	if got := PreviousColoredBelts(BlackBelt(2)); len(got) != len(coloredBeltOrder) {
		t.Errorf("PreviousColoredBelts(black-2) = %v, want all colored belts", got)
	}
}

func TestQuizLength(t *testing.T) {
	tests := []struct {
		belt Belt
		want int
	}{
		{BeltWhite, 10},
		{BeltBrown, 10},
		{BlackBelt(1), 20},
		{BlackBelt(6), 20},
		{BlackBelt(7), 30},
	}

	for _, tt := range tests {
		if got := QuizLength(tt.belt); got != tt.want {
			t.Errorf("QuizLength(%s) = %d, want %d", tt.belt, got, tt.want)
		}
	}
}

func TestTimeLimit(t *testing.T) {
	tests := []struct {
		belt Belt
		want time.Duration
	}{
		{BeltWhite, 0},
		{BeltBrown, 0},
		{BlackBelt(1), 120 * time.Second},
		{BlackBelt(4), 90 * time.Second},
		{BlackBelt(7), 105 * time.Second},
	}

	for _, tt := range tests {
		if got := TimeLimit(tt.belt); got != tt.want {
			t.Errorf("TimeLimit(%s) = %v, want %v", tt.belt, got, tt.want)
		}
	}
}

func TestDegreeLimitsDecreaseThroughSix(t *testing.T) {
	for d := 2; d <= 6; d++ {
		prev, _ := DegreeConfigFor(d - 1)
		cur, _ := DegreeConfigFor(d)
		if cur.TimeLimit >= prev.TimeLimit {
			t.Errorf("degree %d limit %v not tighter than degree %d limit %v", d, cur.TimeLimit, d-1, prev.TimeLimit)
		}
	}
}

func TestFactKey(t *testing.T) {
	if got := FactKey(OperationAddition, 2, BeltGreen); got != "addition_L2_green" {
		t.Errorf("FactKey = %q, want %q", got, "addition_L2_green")
	}
	if got := FactKey(OperationAddition, 1, BlackBelt(3)); got != "addition_L1_black-3" {
		t.Errorf("FactKey = %q, want %q", got, "addition_L1_black-3")
	}
}

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Operation string

const (
	OperationAddition Operation = "addition"
)

func (op Operation) Valid() bool {
	return op == OperationAddition
}

// Belt is a difficulty tier within a level. Colored belts run
// white < yellow < green < blue < red < brown; after brown come the
// black-belt degrees "black-1" .. "black-7".
type Belt string

const (
	BeltWhite  Belt = "white"
	BeltYellow Belt = "yellow"
	BeltGreen  Belt = "green"
	BeltBlue   Belt = "blue"
	BeltRed    Belt = "red"
	BeltBrown  Belt = "brown"
)

const (
	MaxBlackDegree = 7

	ColoredQuizLength = 10
)

var coloredBeltOrder = []Belt{BeltWhite, BeltYellow, BeltGreen, BeltBlue, BeltRed, BeltBrown}

// ColoredBelts returns the colored belt sequence in unlock order.
func ColoredBelts() []Belt {
	out := make([]Belt, len(coloredBeltOrder))
	copy(out, coloredBeltOrder)
	return out
}

// NextColoredBelt returns the belt unlocked after b. ok is false for
// brown (black degrees follow) and for black belts.
func NextColoredBelt(b Belt) (Belt, bool) {
	for i, c := range coloredBeltOrder {
		if c == b && i+1 < len(coloredBeltOrder) {
			return coloredBeltOrder[i+1], true
		}
	}
	return "", false
}

func (b Belt) IsBlack() bool {
	return strings.HasPrefix(string(b), "black-")
}

// BlackDegree returns the degree (1..7) for a black belt, ok=false otherwise.
func (b Belt) BlackDegree() (int, bool) {
	if !b.IsBlack() {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(string(b), "black-"))
	if err != nil || n < 1 || n > MaxBlackDegree {
		return 0, false
	}
	return n, true
}

func BlackBelt(degree int) Belt {
	return Belt(fmt.Sprintf("black-%d", degree))
}

func (b Belt) Valid() bool {
	for _, c := range coloredBeltOrder {
		if c == b {
			return true
		}
	}
	_, ok := b.BlackDegree()
	return ok
}

// PreviousColoredBelts returns every colored belt strictly before b in the
// sequence. For black belts the whole colored sequence is returned.
func PreviousColoredBelts(b Belt) []Belt {
	if b.IsBlack() {
		return ColoredBelts()
	}
	var out []Belt
	for _, c := range coloredBeltOrder {
		if c == b {
			break
		}
		out = append(out, c)
	}
	return out
}

// DegreeConfig fixes question count and hard time limit per black degree.
type DegreeConfig struct {
	Questions int
	TimeLimit time.Duration
}

var blackDegreeTable = map[int]DegreeConfig{
	1: {Questions: 20, TimeLimit: 120 * time.Second},
	2: {Questions: 20, TimeLimit: 110 * time.Second},
	3: {Questions: 20, TimeLimit: 100 * time.Second},
	4: {Questions: 20, TimeLimit: 90 * time.Second},
	5: {Questions: 20, TimeLimit: 80 * time.Second},
	6: {Questions: 20, TimeLimit: 70 * time.Second},
	7: {Questions: 30, TimeLimit: 105 * time.Second},
}

// DegreeConfigFor returns the timing table entry for a black degree.
func DegreeConfigFor(degree int) (DegreeConfig, bool) {
	cfg, ok := blackDegreeTable[degree]
	return cfg, ok
}

// QuizLength returns the item count for a quiz at belt b: 10 for colored
// belts, 20/30 for black degrees.
func QuizLength(b Belt) int {
	if deg, ok := b.BlackDegree(); ok {
		return blackDegreeTable[deg].Questions
	}
	return ColoredQuizLength
}

// TimeLimit returns the hard limit for belt b; zero means untimed.
func TimeLimit(b Belt) time.Duration {
	if deg, ok := b.BlackDegree(); ok {
		return blackDegreeTable[deg].TimeLimit
	}
	return 0
}

// FactKey is the catalog cache key for a (operation, level, belt) slot.
func FactKey(op Operation, level int, belt Belt) string {
	return fmt.Sprintf("%s_L%d_%s", op, level, belt)
}

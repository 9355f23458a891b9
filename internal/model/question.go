package model

import (
	"encoding/json"
	"fmt"
)

type QuestionType string

const (
	QuestionSum   QuestionType = "sum"
	QuestionDigit QuestionType = "digit"
)

// QuestionSource tags where a quiz slot came from: the belt under test or
// review of earlier material.
type QuestionSource string

const (
	SourceCurrent  QuestionSource = "current"
	SourcePrevious QuestionSource = "previous"
)

// Question is a generated, immutable quiz or practice question. Persisted
// the moment it is composed so quiz items and attempts can reference it.
// swagger:model Question
type Question struct {
	UUIDBase

	Operation     Operation      `gorm:"size:20" json:"operation"`
	Level         int            `json:"level"`
	Belt          Belt           `gorm:"size:20" json:"belt"`
	Type          QuestionType   `gorm:"size:10" json:"type"`
	A             int            `json:"a"`
	B             int            `json:"b"`
	DisplayText   string         `gorm:"size:50" json:"displayText"`
	CorrectAnswer int            `json:"correctAnswer"`
	Choices       string         `gorm:"type:json" json:"-"`
	Source        QuestionSource `gorm:"size:10" json:"source"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) SetChoices(choices []int) {
	b, _ := json.Marshal(choices)
	q.Choices = string(b)
}

// ChoiceValues decodes the stored choice list (always 4 unique values
// containing the correct answer).
func (q *Question) ChoiceValues() []int {
	var out []int
	if err := json.Unmarshal([]byte(q.Choices), &out); err != nil {
		return nil
	}
	return out
}

// SumDisplayText renders an addition stem, e.g. "3 + 4".
func SumDisplayText(a, b int) string {
	return fmt.Sprintf("%d + %d", a, b)
}

// DigitDisplayText renders a digit-recognition stem: the digit itself.
func DigitDisplayText(d int) string {
	return fmt.Sprintf("%d", d)
}

package util

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	conflicts := []error{ErrInvalidRunStatus, ErrQuestionMismatch, ErrRunOwnerMismatch}
	for _, err := range conflicts {
		if !IsStateConflict(err) {
			t.Errorf("%v should be a state conflict", err)
		}
		if IsNotFound(err) {
			t.Errorf("%v should not be not-found", err)
		}
	}

	notFound := []error{ErrUserNotFound, ErrRunNotFound, ErrQuestionNotFound}
	for _, err := range notFound {
		if !IsNotFound(err) {
			t.Errorf("%v should be not-found", err)
		}
		if IsStateConflict(err) {
			t.Errorf("%v should not be a state conflict", err)
		}
	}

	if IsStateConflict(ErrInvalidCredential) || IsNotFound(ErrInvalidCredential) {
		t.Error("credential errors belong to neither taxonomy bucket")
	}
}

func TestTaxonomySurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading run: %w", ErrRunNotFound)
	if !IsNotFound(wrapped) {
		t.Error("wrapped not-found error lost its classification")
	}
	if !errors.Is(wrapped, ErrRunNotFound) {
		t.Error("errors.Is failed on wrapped sentinel")
	}
}

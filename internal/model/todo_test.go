package model_test

import (
	"testing"

	"github.com/idilsaglam/todoboard/internal/model"
)

func Test_ParseStatus_AcceptsWireValuesAndAliases(t *testing.T) {
	t.Parallel()

	cases := map[string]model.Status{
		"not_started": model.NotStarted,
		"todo":        model.NotStarted,
		" Doing ":     model.InProgress,
		"in-progress": model.InProgress,
		"done":        model.Done,
	}
	for in, want := range cases {
		got, err := model.ParseStatus(in)
		if err != nil {
			t.Fatalf("ParseStatus(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func Test_ParseStatus_ReturnsError_When_StatusUnknown(t *testing.T) {
	t.Parallel()

	if _, err := model.ParseStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func Test_Status_Valid(t *testing.T) {
	t.Parallel()

	for _, s := range model.Statuses {
		if !s.Valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if model.Status("").Valid() {
		t.Fatal("empty status should be invalid")
	}
	if got := model.InProgress.Label(); got != "In Progress" {
		t.Fatalf("label = %q", got)
	}
}

package pipeline

import (
	"errors"
	"testing"
)

func TestRunExecutesEveryStepRegardlessOfEarlierFailures(t *testing.T) {
	var order []string
	passes := []Pass{
		{
			Name: "merging",
			Steps: []Step{
				{Name: "proximity", Run: func() error { order = append(order, "proximity"); return nil }},
				{Name: "showermip", Run: func() error { order = append(order, "showermip"); return errors.New("boom") }},
				{Name: "isolatedhit", Run: func() error { order = append(order, "isolatedhit"); return nil }},
			},
		},
		{
			Name: "recovery",
			Steps: []Step{
				{Name: "straight", Run: func() error { order = append(order, "straight"); return nil }},
			},
		},
	}

	results := Run(passes)

	want := []string{"proximity", "showermip", "isolatedhit", "straight"}
	if len(order) != len(want) {
		t.Fatalf("ran %v, want %v", order, want)
	}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("step %d = %q, want %q", i, order[i], name)
		}
	}

	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	failed := Failures(results)
	if len(failed) != 1 || failed[0].Name != "merging/showermip" {
		t.Errorf("expected exactly one failure for merging/showermip, got %+v", failed)
	}
}

func TestRunOnEmptyPassesReturnsNoResults(t *testing.T) {
	if results := Run(nil); len(results) != 0 {
		t.Errorf("expected no results for an empty pipeline, got %v", results)
	}
}

package pipeline

import (
	"errors"
	"testing"
)

func TestStatsInvariant(t *testing.T) {
	stats := &Stats{}

	outcomes := []Outcome{
		{Screenshot: true},
		{Screenshot: false},
		{Err: errors.New("decode failed")},
		{Screenshot: true, Err: errors.New("failed to move: disk full")},
		{Screenshot: false},
	}
	for _, out := range outcomes {
		stats.Record(out)
	}

	s := stats.Snapshot()
	if s.Total != len(outcomes) {
		t.Fatalf("total = %d, want %d", s.Total, len(outcomes))
	}
	if s.Total != s.Screenshots+s.Other+s.Errors {
		t.Fatalf("invariant violated: %+v", s)
	}
	if s.Errors != 2 {
		t.Fatalf("errors = %d, want 2 (a failed outcome must count only as an error)", s.Errors)
	}
	if s.Screenshots != 1 || s.Other != 2 {
		t.Fatalf("unexpected split: %+v", s)
	}
}

func TestOutcomeClassificationAndAction(t *testing.T) {
	move := Outcome{Task: Task{MoveTo: "/dst"}, Screenshot: true}
	if move.Classification() != "screenshot" || move.Action() != "moved" {
		t.Fatalf("move outcome: %s/%s", move.Classification(), move.Action())
	}

	failed := Outcome{Task: Task{MoveTo: "/dst"}, Screenshot: true, Err: errors.New("boom")}
	if failed.Classification() != "error" || failed.Action() != "none" {
		t.Fatalf("failed outcome: %s/%s", failed.Classification(), failed.Action())
	}

	dup := Outcome{Task: Task{CopyTo: "/dst"}, Screenshot: true, Duplicate: true}
	if dup.Action() != "skipped" {
		t.Fatalf("duplicate outcome action: %s", dup.Action())
	}

	other := Outcome{Task: Task{CopyTo: "/dst"}}
	if other.Classification() != "other" || other.Action() != "none" {
		t.Fatalf("other outcome: %s/%s", other.Classification(), other.Action())
	}
}

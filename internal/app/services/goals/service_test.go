package goals

import (
	"context"
	"testing"

	"github.com/intizom/intizom/internal/app/storage/memory"
	"github.com/intizom/intizom/internal/errors"
)

func TestMilestoneToggleDrivesProgress(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	g, err := svc.Create(context.Background(), "u1", CreateInput{Title: "run a marathon"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	var milestoneIDs []string
	for _, title := range []string{"5k", "10k", "half"} {
		m, err := svc.AddMilestone(context.Background(), "u1", g.ID, title, len(milestoneIDs))
		if err != nil {
			t.Fatalf("add milestone %s: %v", title, err)
		}
		milestoneIDs = append(milestoneIDs, m.ID)
	}

	if _, err := svc.ToggleMilestone(context.Background(), "u1", milestoneIDs[0]); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	detail, err := svc.Get(context.Background(), "u1", g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Progress != 33 {
		t.Fatalf("progress = %d, want 33 (round(100*1/3))", detail.Progress)
	}

	if _, err := svc.ToggleMilestone(context.Background(), "u1", milestoneIDs[1]); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	detail, _ = svc.Get(context.Background(), "u1", g.ID)
	if detail.Progress != 67 {
		t.Fatalf("progress = %d, want 67 (round(100*2/3))", detail.Progress)
	}

	// Untoggle back to one of three.
	if _, err := svc.ToggleMilestone(context.Background(), "u1", milestoneIDs[1]); err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	detail, _ = svc.Get(context.Background(), "u1", g.ID)
	if detail.Progress != 33 {
		t.Fatalf("progress = %d, want 33 after untoggle", detail.Progress)
	}
}

func TestManualProgressOnlyWithoutMilestones(t *testing.T) {
	svc := New(memory.New(), nil)
	g, err := svc.Create(context.Background(), "u1", CreateInput{Title: "learn go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.SetProgress(context.Background(), "u1", g.ID, 40)
	if err != nil {
		t.Fatalf("set progress: %v", err)
	}
	if updated.Progress != 40 || !updated.ManualProgress {
		t.Fatalf("got %d/%v, want 40/manual", updated.Progress, updated.ManualProgress)
	}

	if _, err := svc.SetProgress(context.Background(), "u1", g.ID, 120); err == nil {
		t.Fatalf("expected validation error for out-of-range progress")
	}

	if _, err := svc.AddMilestone(context.Background(), "u1", g.ID, "first step", 0); err != nil {
		t.Fatalf("add milestone: %v", err)
	}
	_, err = svc.SetProgress(context.Background(), "u1", g.ID, 50)
	se := errors.GetServiceError(err)
	if se == nil || se.Code != errors.CodeConflict {
		t.Fatalf("expected conflict once milestones exist, got %v", err)
	}

	// Milestones took over: derived progress replaced the manual value.
	detail, err := svc.Get(context.Background(), "u1", g.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if detail.Progress != 0 || detail.ManualProgress {
		t.Fatalf("got %d/%v, want 0/derived", detail.Progress, detail.ManualProgress)
	}
}

func TestMilestoneOwnershipFollowsParent(t *testing.T) {
	svc := New(memory.New(), nil)
	g, err := svc.Create(context.Background(), "u1", CreateInput{Title: "learn go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	m, err := svc.AddMilestone(context.Background(), "u1", g.ID, "first step", 0)
	if err != nil {
		t.Fatalf("add milestone: %v", err)
	}

	_, err = svc.ToggleMilestone(context.Background(), "u2", m.ID)
	se := errors.GetServiceError(err)
	if se == nil || se.Code != errors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteCascadesMilestones(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	g, err := svc.Create(context.Background(), "u1", CreateInput{Title: "learn go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddMilestone(context.Background(), "u1", g.ID, "first step", 0); err != nil {
		t.Fatalf("add milestone: %v", err)
	}

	if err := svc.Delete(context.Background(), "u1", g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	left, err := store.ListMilestones(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("list milestones: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected milestones removed with goal, got %d", len(left))
	}
}

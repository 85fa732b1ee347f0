package store

import (
	"context"
	"testing"
	"time"

	"github.com/flowplan/flowplan/pkg/errors"
	"github.com/flowplan/flowplan/pkg/pipeline"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	plan := &Plan{
		ID:        "p-1",
		Request:   pipeline.Options{TargetItem: "iron-plate", TargetRate: 60},
		GraphHash: "abc",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Put(ctx, plan); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "p-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Request.TargetItem != "iron-plate" || got.GraphHash != "abc" {
		t.Errorf("got %+v", got)
	}

	// Stored plans are isolated from later caller mutations.
	plan.GraphHash = "mutated"
	got, err = s.Get(ctx, "p-1")
	if err != nil {
		t.Fatalf("Get after mutation: %v", err)
	}
	if got.GraphHash != "abc" {
		t.Error("stored plan shares memory with the caller's copy")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for missing plan")
	}
	if !errors.Is(err, errors.ErrCodePlanNotFound) {
		t.Errorf("error code = %v, want PLAN_NOT_FOUND", errors.GetCode(err))
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, &Plan{ID: "p-1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "p-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "p-1"); err == nil {
		t.Error("plan still present after delete")
	}

	// Deleting a missing plan is fine.
	if err := s.Delete(ctx, "p-1"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		plan := &Plan{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.Put(ctx, plan); err != nil {
			t.Fatal(err)
		}
	}

	plans, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("len = %d, want 2", len(plans))
	}
	if plans[0].ID != "c" || plans[1].ID != "b" {
		t.Errorf("order = %s, %s; want c, b", plans[0].ID, plans[1].ID)
	}
}

func TestMemoryStorePutRequiresID(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Put(context.Background(), &Plan{}); err == nil {
		t.Error("Put without ID should fail")
	}
}

func TestNewPlan(t *testing.T) {
	req := pipeline.Options{TargetItem: "rotor", TargetRate: 4}
	res := &pipeline.Result{GraphHash: "deadbeef"}

	a := NewPlan(req, res)
	b := NewPlan(req, res)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("plan IDs should be unique and non-empty: %q, %q", a.ID, b.ID)
	}
	if a.GraphHash != "deadbeef" {
		t.Errorf("GraphHash = %q", a.GraphHash)
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

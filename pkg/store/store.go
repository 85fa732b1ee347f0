// Package store persists computed plans so they can be retrieved by ID.
//
// A plan records the request options, the assembled flow graph, and its
// content hash. Two backends are provided:
//   - memory: in-process storage for development, testing, and single-shot
//     CLI usage
//   - mongo: MongoDB-backed storage for serve mode deployments that need
//     plans to survive restarts
//
// Both backends satisfy the Store interface; serve mode picks one based on
// configuration.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/flowplan/flowplan/pkg/flow"
	"github.com/flowplan/flowplan/pkg/pipeline"
)

// Plan is a stored planning result.
type Plan struct {
	ID        string           `json:"id" bson:"_id"`
	Request   pipeline.Options `json:"request" bson:"request"`
	Graph     flow.Graph       `json:"graph" bson:"graph"`
	GraphHash string           `json:"graph_hash" bson:"graph_hash"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}

// Store is the interface for plan storage backends.
type Store interface {
	// Get retrieves a plan by ID. Returns an error with code PLAN_NOT_FOUND
	// if no plan has that ID.
	Get(ctx context.Context, id string) (*Plan, error)

	// Put stores a plan, replacing any existing plan with the same ID.
	Put(ctx context.Context, plan *Plan) error

	// Delete removes a plan. Deleting a missing plan is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the most recently created plans, newest first.
	List(ctx context.Context, limit int) ([]*Plan, error)

	// Close releases any resources held by the backend.
	Close(ctx context.Context) error
}

// NewPlan wraps a pipeline result as a storable plan with a fresh ID.
func NewPlan(req pipeline.Options, res *pipeline.Result) *Plan {
	return &Plan{
		ID:        uuid.NewString(),
		Request:   req,
		Graph:     res.Graph,
		GraphHash: res.GraphHash,
		CreatedAt: time.Now().UTC(),
	}
}

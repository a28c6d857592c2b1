package store

import (
	"context"
	"time"
)

// Store persists decomposition runs
type Store interface {
	Close() error

	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns the most recent runs first, without node values.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	DeleteRun(ctx context.Context, id string) error
}

// Run represents a stored decomposition
type Run struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Sources   int
	Samples   int
	MI        float64
	Alphabets map[string]int // alph_s1.. and alph_t
	Bullets   []string
	Nodes     []Node
}

// Node holds the averaged values of one lattice node
type Node struct {
	ID          int
	Label       string
	SharedPlus  float64
	SharedMinus float64
	SharedInfo  float64
	AtomPlus    float64
	AtomMinus   float64
	AtomInfo    float64
}

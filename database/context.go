package database

import (
	"context"
	"time"
)

// Database operation timeouts. Aggregation scans (compliance, insurance,
// threat stats) get a longer timeout than single-document reads and writes.
const (
	DefaultDBTimeout   = 10 * time.Second
	AggregateDBTimeout = 30 * time.Second
)

// NewContext creates a context with the default timeout for single-document
// database operations.
// Usage:
//
//	ctx, cancel := database.NewContext()
//	defer cancel()
func NewContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultDBTimeout)
}

// NewAggregateContext creates a context for multi-document scans and
// aggregation pipelines.
func NewAggregateContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), AggregateDBTimeout)
}

package database

import (
	"context"
	"fmt"
	"strings"
)

// AtomicBatch accumulates statements and executes them in one
// BEGIN TRANSACTION / COMMIT TRANSACTION block. All statements succeed or
// fail together at Execute time; there is no isolation between Add calls.
//
// Variables are namespaced per statement ($id -> $v1_id) so the same query
// template can be added many times with different values.
type AtomicBatch struct {
	statements []string
	vars       map[string]interface{}
	n          int
}

// NewAtomicBatch creates an empty batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{
		statements: make([]string, 0),
		vars:       make(map[string]interface{}),
	}
}

// Add appends a statement, rewriting its variable references to namespaced
// names to avoid collisions with other statements in the batch.
func (b *AtomicBatch) Add(query string, vars map[string]interface{}) {
	b.n++
	for name, value := range vars {
		namespaced := fmt.Sprintf("v%d_%s", b.n, name)
		query = strings.ReplaceAll(query, "$"+name, "$"+namespaced)
		b.vars[namespaced] = value
	}
	b.statements = append(b.statements, query)
}

// Len returns the number of accumulated statements
func (b *AtomicBatch) Len() int {
	return len(b.statements)
}

// Execute runs the batch atomically. An empty batch is a no-op.
func (b *AtomicBatch) Execute(ctx context.Context, db Database) error {
	if len(b.statements) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range b.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return db.Execute(ctx, sb.String(), b.vars)
}

package database

import (
	"context"
	"strings"
	"testing"
)

// execRecorder captures the single Execute call a batch issues.
type execRecorder struct {
	query string
	vars  map[string]interface{}
	calls int
}

func (e *execRecorder) Connect(ctx context.Context) error { return nil }
func (e *execRecorder) Close() error                      { return nil }
func (e *execRecorder) Ping(ctx context.Context) error    { return nil }

func (e *execRecorder) Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error) {
	return nil, nil
}

func (e *execRecorder) QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error) {
	return nil, ErrNotFound
}

func (e *execRecorder) Execute(ctx context.Context, query string, vars map[string]interface{}) error {
	e.calls++
	e.query = query
	e.vars = vars
	return nil
}

func (e *execRecorder) Subscribe(ctx context.Context, tables []string) (<-chan ChangeEvent, error) {
	return nil, ErrSubscription
}

var _ Database = (*execRecorder)(nil)

func TestAtomicBatch_NamespacesVariables(t *testing.T) {
	batch := NewAtomicBatch()
	batch.Add("UPSERT type::thing($table, $id) CONTENT $data", map[string]interface{}{
		"table": "citizens", "id": "c1", "data": map[string]interface{}{"name": "Budi"},
	})
	batch.Add("UPSERT type::thing($table, $id) CONTENT $data", map[string]interface{}{
		"table": "citizens", "id": "c2", "data": map[string]interface{}{"name": "Siti"},
	})

	if batch.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", batch.Len())
	}

	db := &execRecorder{}
	if err := batch.Execute(context.Background(), db); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if db.calls != 1 {
		t.Fatalf("Execute calls = %d, want 1", db.calls)
	}

	if !strings.HasPrefix(db.query, "BEGIN TRANSACTION;") {
		t.Errorf("query must open a transaction, got %q", db.query)
	}
	if !strings.HasSuffix(db.query, "COMMIT TRANSACTION;") {
		t.Errorf("query must commit the transaction, got %q", db.query)
	}
	if !strings.Contains(db.query, "$v1_id") || !strings.Contains(db.query, "$v2_id") {
		t.Errorf("variables must be namespaced per statement, got %q", db.query)
	}
	if strings.Contains(db.query, "$id)") {
		t.Errorf("original variable names must not survive namespacing, got %q", db.query)
	}

	if db.vars["v1_id"] != "c1" || db.vars["v2_id"] != "c2" {
		t.Errorf("vars = %v", db.vars)
	}
	if db.vars["v1_table"] != "citizens" || db.vars["v2_table"] != "citizens" {
		t.Errorf("vars = %v", db.vars)
	}
}

func TestAtomicBatch_TerminatesStatements(t *testing.T) {
	batch := NewAtomicBatch()
	batch.Add("DELETE citizens WHERE id = $id", map[string]interface{}{"id": "c1"})

	db := &execRecorder{}
	if err := batch.Execute(context.Background(), db); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(db.query, "DELETE citizens WHERE id = $v1_id;") {
		t.Errorf("statement must be semicolon terminated, got %q", db.query)
	}
}

func TestAtomicBatch_EmptyIsNoop(t *testing.T) {
	db := &execRecorder{}
	if err := NewAtomicBatch().Execute(context.Background(), db); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if db.calls != 0 {
		t.Errorf("empty batch issued %d executes, want 0", db.calls)
	}
}

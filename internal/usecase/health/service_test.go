package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockIndexLister []string

func (m mockIndexLister) Indexes() []string { return m }

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		indexes  []string
		status   Status
		database CheckResult
		idx      CheckResult
	}{
		{"all healthy", nil, []string{"people", "orders"}, Healthy, CheckOK, CheckOK},
		{"db error", errors.New("conn refused"), []string{"people"}, Unhealthy, CheckError, CheckOK},
		{"no indexes", nil, nil, Degraded, CheckOK, CheckError},
		{"both fail", errors.New("db down"), nil, Unhealthy, CheckError, CheckError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockDBPinger{err: tt.dbErr}, mockIndexLister(tt.indexes))
			r := svc.Check(context.Background())

			if r.Status != tt.status {
				t.Errorf("expected %q, got %q", tt.status, r.Status)
			}
			if r.Checks["database"] != tt.database {
				t.Errorf("expected database %q, got %q", tt.database, r.Checks["database"])
			}
			if r.Checks["indexes"] != tt.idx {
				t.Errorf("expected indexes %q, got %q", tt.idx, r.Checks["indexes"])
			}
			if r.Indexes != len(tt.indexes) {
				t.Errorf("expected %d indexes, got %d", len(tt.indexes), r.Indexes)
			}
		})
	}
}

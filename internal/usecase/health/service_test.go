package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEngine struct {
	enabled bool
	err     error
	pings   int
}

func (m *mockEngine) IsEnabled() bool { return m.enabled }

func (m *mockEngine) Ping(_ context.Context) error {
	m.pings++
	return m.err
}

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		engine   *mockEngine
		status   Status
		database CheckResult
		search   CheckResult
	}{
		{"all healthy", nil, &mockEngine{enabled: true}, Healthy, CheckOK, CheckOK},
		{"engine disabled", nil, &mockEngine{}, Degraded, CheckOK, CheckDisabled},
		{"engine ping fails", nil, &mockEngine{enabled: true, err: errors.New("timeout")}, Degraded, CheckOK, CheckError},
		{"database down", errors.New("locked"), &mockEngine{enabled: true}, Unhealthy, CheckError, CheckOK},
		{"both down", errors.New("locked"), &mockEngine{}, Unhealthy, CheckError, CheckDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(&mockPinger{err: tt.dbErr}, tt.engine).Check(context.Background())

			if r.Status != tt.status {
				t.Errorf("expected status %q, got %q", tt.status, r.Status)
			}
			if r.Checks[ComponentDatabase] != tt.database {
				t.Errorf("expected database %q, got %q", tt.database, r.Checks[ComponentDatabase])
			}
			if r.Checks[ComponentEngine] != tt.search {
				t.Errorf("expected search_engine %q, got %q", tt.search, r.Checks[ComponentEngine])
			}
		})
	}
}

func TestCheck_DisabledEngineNotPinged(t *testing.T) {
	engine := &mockEngine{}
	New(&mockPinger{}, engine).Check(context.Background())
	if engine.pings != 0 {
		t.Errorf("expected no ping on a disabled engine, got %d", engine.pings)
	}
}

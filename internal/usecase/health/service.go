// Package health aggregates component checks into one report.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means the service answers but search is off or failing.
	Degraded Status = "degraded"
	// Unhealthy means the primary store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK       CheckResult = "ok"
	CheckError    CheckResult = "error"
	CheckDisabled CheckResult = "disabled"
)

// Component names in Report.Checks.
const (
	ComponentDatabase = "database"
	ComponentEngine   = "search_engine"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	db     Pinger
	engine Engine
}

// New creates a Service.
func New(db Pinger, engine Engine) *Service {
	return &Service{db: db, engine: engine}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		ComponentDatabase: CheckOK,
		ComponentEngine:   CheckOK,
	}

	if err := s.db.Ping(ctx); err != nil {
		checks[ComponentDatabase] = CheckError
	}

	switch {
	case !s.engine.IsEnabled():
		checks[ComponentEngine] = CheckDisabled
	case s.engine.Ping(ctx) != nil:
		checks[ComponentEngine] = CheckError
	}

	status := Healthy
	if checks[ComponentEngine] != CheckOK {
		status = Degraded
	}
	if checks[ComponentDatabase] == CheckError {
		status = Unhealthy
	}
	return Report{Status: status, Checks: checks}
}

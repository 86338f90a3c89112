package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the service runs but cannot rewrite for any index.
	Degraded Status = "degraded"
	// Unhealthy indicates the segment store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Indexes int
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	indexes IndexLister
}

// New creates a Service.
func New(db DBPinger, indexes IndexLister) *Service {
	return &Service{db: db, indexes: indexes}
}

// Check pings the segment store and counts configured indexes.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	n := len(s.indexes.Indexes())
	if n == 0 {
		checks["indexes"] = CheckError
		if status == Healthy {
			status = Degraded
		}
	} else {
		checks["indexes"] = CheckOK
	}

	return Report{Status: status, Checks: checks, Indexes: n}
}

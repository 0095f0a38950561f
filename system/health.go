package system

import "context"

// HealthChecker is implemented by anything the admin API should report on.
// Either check may be nil.
type HealthChecker interface {
	HealthChecks() (name string, ready, live func(ctx context.Context) error)
}

/*
Package healthcheck serves the admin API. It reports the liveness and readiness of every
system.HealthChecker registered with the system, and exposes the Go runtime's pprof
handlers under /debug/pprof.
*/
package healthcheck

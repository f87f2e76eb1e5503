package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports 503 until the data backend answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	switch {
	case s.ping == nil:
		checks["storage"] = "not_configured"
	default:
		if err := s.ping(ctx); err != nil {
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["storage"] = "ok"
		}
	}

	stats := s.svc.Reports.Cache().Stats()
	checks["report_cache"] = map[string]any{"entries": stats.Size, "status": "ok"}
	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients(), "status": "ok"}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	rateLimitMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	cacheStats := s.svc.Reports.Cache().Stats()

	w.WriteHeader(http.StatusOK)
	metric := func(name, help, typ string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, typ, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_client_errors_total", "Responses with a 4xx status", "counter", traceMetrics.ClientErrors)
	metric("http_server_errors_total", "Responses with a 5xx status", "counter", traceMetrics.ServerErrors)
	metric("api_writes_total", "Mutating API requests", "counter", atomic.LoadInt64(&s.metrics.writes))
	metric("report_exports_total", "Report documents exported", "counter", atomic.LoadInt64(&s.metrics.exports))
	metric("report_cache_hits_total", "Report cache hits", "counter", cacheStats.Hits)
	metric("report_cache_misses_total", "Report cache misses", "counter", cacheStats.Misses)
	metric("report_cache_entries", "Current report cache entries", "gauge", cacheStats.Size)
	metric("rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "Requests flagged by the detector", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.metrics.started).Seconds()))
}

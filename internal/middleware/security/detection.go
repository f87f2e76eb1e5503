package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"smartfinance/internal/log"
)

// DetectionMetrics tracks security detection events
type DetectionMetrics struct {
	SuspiciousRequests int64
	InvalidIPAttempts  int64
}

var (
	probePatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"eval(", "javascript:", "<script", "union select",
		"etc/passwd", "cmd.exe",
	}
	// API clients such as curl are expected; only scanners are flagged.
	scannerAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab"}
	oddMethods    = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}
)

const (
	maxURLLength  = 2048
	maxProxyHops  = 5
	defaultTrusts = "127.0.0.0/8,10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,::1/128"
)

// Detector flags requests that look like probes and resolves client IPs
// behind trusted proxies.
type Detector struct {
	metrics        *DetectionMetrics
	trustedProxies []*net.IPNet
	logger         *log.Logger
}

func NewDetector() *Detector {
	d := &Detector{
		metrics: &DetectionMetrics{},
		logger:  log.ForComponent(log.ComponentSecurity),
	}
	for _, cidr := range strings.Split(defaultTrusts, ",") {
		if err := d.AddTrustedProxy(cidr); err != nil {
			panic(err)
		}
	}
	return d
}

// Inspect returns why a request looks suspicious; nil means it does not.
func (d *Detector) Inspect(r *http.Request) []string {
	var reasons []string
	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}
	for _, p := range probePatterns {
		if strings.Contains(path, p) || strings.Contains(query, p) {
			reasons = append(reasons, "probe pattern "+p)
			break
		}
	}
	ua := strings.ToLower(r.Header.Get("User-Agent"))
	for _, a := range scannerAgents {
		if strings.Contains(ua, a) {
			reasons = append(reasons, "scanner agent "+a)
			break
		}
	}
	for _, m := range oddMethods {
		if r.Method == m {
			reasons = append(reasons, "method "+m)
			break
		}
	}
	if len(r.URL.String()) > maxURLLength {
		reasons = append(reasons, "url too long")
	}
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > maxProxyHops {
		reasons = append(reasons, "too many proxy hops")
	}
	if len(reasons) > 0 {
		atomic.AddInt64(&d.metrics.SuspiciousRequests, 1)
	}
	return reasons
}

// DetectSuspiciousRequest reports whether Inspect found anything.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	return len(d.Inspect(r)) > 0
}

// Middleware logs suspicious requests and lets them through; routing and
// validation reject them on their own.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reasons := d.Inspect(r); len(reasons) > 0 {
			d.logger.WarnContext(r.Context(), "Suspicious request",
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, d.ExtractClientIP(r),
				"reasons", reasons)
		}
		next.ServeHTTP(w, r)
	})
}

// ExtractClientIP returns the peer address, or the forwarded client address
// when the peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}
	peer := net.ParseIP(directIP)
	if peer == nil || !d.isTrustedProxy(peer) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
		atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
		atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
	}
	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetMetrics returns current security metrics
func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.metrics.SuspiciousRequests),
		InvalidIPAttempts:  atomic.LoadInt64(&d.metrics.InvalidIPAttempts),
	}
}

// AddTrustedProxy adds a trusted proxy network
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

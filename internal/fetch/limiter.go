package fetch

import (
	"context"
	"net/url"
	"strings"
	"sync"

	domainerrors "github.com/ReyadGH/use-case-4-deployment/internal/errors"

	"golang.org/x/time/rate"
)

// Limit is a token bucket setting for one host.
type Limit struct {
	PerSecond float64
	Burst     int
}

func (l Limit) valid() bool { return l.PerSecond > 0 && l.Burst > 0 }

// hostLimits throttles requests per host. Hosts with an override get their
// own bucket settings, the rest use the default.
type hostLimits struct {
	def       Limit
	overrides map[string]Limit

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func newHostLimits(def Limit, overrides map[string]Limit) *hostLimits {
	hl := &hostLimits{
		def:       def,
		overrides: make(map[string]Limit, len(overrides)),
		buckets:   make(map[string]*rate.Limiter),
	}
	for host, l := range overrides {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" && l.valid() {
			hl.overrides[host] = l
		}
	}
	return hl
}

func (hl *hostLimits) bucket(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if b, ok := hl.buckets[host]; ok {
		return b
	}
	l, ok := hl.overrides[host]
	if !ok {
		l = hl.def
	}
	b := rate.NewLimiter(rate.Limit(l.PerSecond), l.Burst)
	hl.buckets[host] = b
	return b
}

// wait blocks until u's host may be contacted. A wait that cannot finish
// before ctx ends is reported as Unavailable.
func (hl *hostLimits) wait(ctx context.Context, u *url.URL) error {
	host := strings.ToLower(u.Hostname())
	if err := hl.bucket(host).Wait(ctx); err != nil {
		return domainerrors.Unavailable("throttled request to "+host, err)
	}
	return nil
}

// HostOf returns the lowercased host of raw, or "" when raw has none.
func HostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

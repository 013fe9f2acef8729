package clearurls

import (
	"fmt"
	"sync"
	"time"

	"github.com/armon/go-radix"
	"github.com/getlantern/golog"
	"github.com/getlantern/mtime"
)

var (
	log = golog.LoggerFor("clearurls")
)

// DefaultMaxSweeps is the number of passes over all providers after which
// Clean gives up on reaching a fixed point.
const DefaultMaxSweeps = 32

// Providers is an ordered collection of providers. Clean applies every
// provider that is not a complete provider, in order, until the URL stops
// changing.
type Providers struct {
	// MaxSweeps bounds the number of passes Clean makes. Zero or less means
	// DefaultMaxSweeps.
	MaxSweeps int

	list   []*Provider
	byName *radix.Tree

	statM sync.Mutex
	stats Stats
}

// Stats summarizes the time spent in Clean.
type Stats struct {
	Runs     int64
	Failures int64
	Total    time.Duration
	Max      time.Duration
	MaxURL   string
}

// Average is the mean time per Clean call.
func (s Stats) Average() time.Duration {
	if s.Runs == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Runs)
}

// New creates a collection from providers, keeping their order. When two
// providers share a name, Lookup returns the first.
func New(providers ...*Provider) *Providers {
	ps := &Providers{
		list:   providers,
		byName: radix.New(),
	}
	for _, p := range providers {
		if _, exists := ps.byName.Get(p.Name); !exists {
			ps.byName.Insert(p.Name, p)
		}
	}
	return ps
}

// Len is the number of providers, complete providers included.
func (ps *Providers) Len() int {
	return len(ps.list)
}

// All returns the providers in collection order.
func (ps *Providers) All() []*Provider {
	return append([]*Provider(nil), ps.list...)
}

// Lookup finds a provider by name.
func (ps *Providers) Lookup(name string) (*Provider, bool) {
	v, ok := ps.byName.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*Provider), true
}

// WithPrefix returns the providers whose names start with prefix, sorted by
// name.
func (ps *Providers) WithPrefix(prefix string) []*Provider {
	var matched []*Provider
	ps.byName.WalkPrefix(prefix, func(_ string, v interface{}) bool {
		matched = append(matched, v.(*Provider))
		return false
	})
	return matched
}

// Compile compiles every provider up front, so later calls to Clean do no
// compilation. It stops at the first provider that fails.
func (ps *Providers) Compile() error {
	for _, p := range ps.list {
		if err := p.Compile(); err != nil {
			return err
		}
	}
	return nil
}

// Clean strips tracking parameters and redirect wrappers from url until no
// provider changes it any further. If a provider fails, the URL as it stood
// before that provider is returned with the error. If the URL has not settled
// after MaxSweeps passes, the last result is returned with ErrNoConvergence.
func (ps *Providers) Clean(url string, allowReferralMarketing bool) (string, error) {
	start := mtime.Now()
	cleaned, err := ps.clean(url, allowReferralMarketing)
	ps.addTiming(mtime.Now().Sub(start), url, err != nil)
	return cleaned, err
}

func (ps *Providers) clean(url string, allowReferralMarketing bool) (string, error) {
	maxSweeps := ps.MaxSweeps
	if maxSweeps <= 0 {
		maxSweeps = DefaultMaxSweeps
	}

	before := url
	for sweep := 0; sweep < maxSweeps; sweep++ {
		after, err := ps.sweep(before, allowReferralMarketing)
		if err != nil {
			return after, err
		}
		if after == before {
			return after, nil
		}
		log.Debugf("Sweep %d rewrote %v to %v", sweep+1, before, after)
		before = after
	}
	return before, fmt.Errorf("%w after %d sweeps: %v", ErrNoConvergence, maxSweeps, url)
}

// sweep runs url through every applicable provider once.
func (ps *Providers) sweep(url string, allowReferralMarketing bool) (string, error) {
	for _, p := range ps.list {
		if p.CompleteProvider {
			continue
		}
		cleaned, err := p.Clean(url, allowReferralMarketing)
		if err != nil {
			return url, err
		}
		url = cleaned
	}
	return url, nil
}

// Cleaner returns a clean function for callers that only want a URL back.
// Errors are logged and the best available URL is returned.
func (ps *Providers) Cleaner(allowReferralMarketing bool) func(string) string {
	return func(url string) string {
		cleaned, err := ps.Clean(url, allowReferralMarketing)
		if err != nil {
			log.Errorf("Could not fully clean %v: %v", url, err)
		}
		return cleaned
	}
}

// Stats returns a snapshot of the timing statistics.
func (ps *Providers) Stats() Stats {
	ps.statM.Lock()
	defer ps.statM.Unlock()
	return ps.stats
}

func (ps *Providers) addTiming(dur time.Duration, url string, failed bool) {
	ps.statM.Lock()
	ps.stats.Runs++
	ps.stats.Total += dur
	if dur > ps.stats.Max {
		ps.stats.Max = dur
		ps.stats.MaxURL = url
	}
	if failed {
		ps.stats.Failures++
	}
	s := ps.stats
	ps.statM.Unlock()

	log.Debugf("Average running time: %v", s.Average())
	log.Debugf("Max running time: %v for url: %v", s.Max, s.MaxURL)
}

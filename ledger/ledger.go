package ledger

import (
	"math"
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// HostState is a read-only snapshot of one host's capacity, as supplied by
// the (external) store that owns authoritative host state.
type HostState struct {
	HostID          string
	AvailableSlots  int
	MaxSlots        int
	MeanActiveTasks float64
	Up              bool
}

// Config collects Ledger tunables. The zero value is valid and applies the
// documented defaults, in the style of the teacher's BatcherConfig /
// ChannelConfig: a zero field means "use the default", not "disable".
type Config struct {
	// RefreshInterval is the minimum interval between RefreshFrom swaps.
	// Defaults to 60s if <= 0.
	RefreshInterval time.Duration

	// ClampWarnInterval rate-limits the warning logged when MarkKicked has
	// to clamp a would-be-negative entry to zero, per host. Defaults to
	// 1 minute if zero. A negative value disables rate limiting (every
	// clamp is logged).
	ClampWarnInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 60 * time.Second
	}
	if c.ClampWarnInterval == 0 {
		c.ClampWarnInterval = time.Minute
	}
	return c
}

// Ledger is the HostSlotLedger described by the core design: an in-memory
// map of hostID to effective available slots, protected by a single
// internal mutex. All operations serialize on that mutex; RefreshFrom is an
// atomic swap of the whole map, so no observer ever sees a partial update.
type Ledger struct {
	mu            sync.Mutex
	slots         map[string]int
	lastRefreshMs int64

	cfg         Config
	logger      *logiface.Logger[logiface.Event]
	warnLimiter *catrate.Limiter // rate-limits the clamp warning, per host
}

// New constructs a Ledger. logger may be nil (logiface's nil-receiver
// contract makes that safe); it is used only to emit the rate-limited
// warning described by Config.ClampWarnInterval.
func New(cfg Config, logger *logiface.Logger[logiface.Event]) *Ledger {
	cfg = cfg.withDefaults()

	l := &Ledger{
		slots: make(map[string]int),
		// never a valid nowMs supplied by a real clock, so the first
		// RefreshFrom call always proceeds regardless of its interval.
		lastRefreshMs: math.MinInt64 / 2,
		cfg:           cfg,
		logger:        logger,
	}

	if cfg.ClampWarnInterval > 0 {
		l.warnLimiter = catrate.NewLimiter(map[time.Duration]int{
			cfg.ClampWarnInterval: 1,
		})
	}

	return l
}

// MarkAvailable credits one slot to hostID. There is no upper bound against
// a host's MaxSlots: over-crediting is possible between refreshes, and is
// corrected by the next RefreshFrom.
func (l *Ledger) MarkAvailable(hostID string) {
	l.mu.Lock()
	l.slots[hostID]++
	l.mu.Unlock()
}

// MarkKicked debits one slot from hostID, clamping at zero. Calling this on
// an absent or already-zero-valued host leaves the ledger unchanged.
func (l *Ledger) MarkKicked(hostID string) {
	l.mu.Lock()
	cur := l.slots[hostID]
	clamped := cur <= 0
	next := cur - 1
	if next < 0 {
		next = 0
	}
	l.slots[hostID] = next
	l.mu.Unlock()

	if clamped {
		l.warnClamp(hostID)
	}
}

func (l *Ledger) warnClamp(hostID string) {
	if l.logger == nil {
		return
	}
	if l.warnLimiter != nil {
		if _, ok := l.warnLimiter.Allow(hostID); !ok {
			return
		}
	}
	l.logger.Warning().
		Str(`host`, hostID).
		Log(`ledger: clamped negative slot count to zero`)
}

// HasSlot reports whether hostID currently has at least one effective
// available slot.
func (l *Ledger) HasSlot(hostID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slots[hostID] > 0
}

// Snapshot returns the current effective available slot count for hostID
// (zero if absent).
func (l *Ledger) Snapshot(hostID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.slots[hostID]
}

// View runs fn with a snapshot function reading a single, consistent
// ledger state: the whole call is made under the ledger's mutex, so
// multiple reads inside fn (e.g. hostrank.Best comparing several hosts)
// never observe an interleaved RefreshFrom/MarkKicked/MarkAvailable. fn
// must not call back into the Ledger, or it will deadlock.
func (l *Ledger) View(fn func(snapshot func(hostID string) int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(func(hostID string) int { return l.slots[hostID] })
}

// RefreshFrom atomically replaces the whole ledger with the slot counts
// from hosts, if at least Config.RefreshInterval has elapsed since the last
// refresh (nowMs is caller-supplied, per the ledger's documented authority
// over its own clock source). Hosts with an empty HostID are skipped.
func (l *Ledger) RefreshFrom(hosts []HostState, nowMs int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if nowMs-l.lastRefreshMs < l.cfg.RefreshInterval.Milliseconds() {
		return
	}

	fresh := make(map[string]int, len(hosts))
	for _, h := range hosts {
		if h.HostID == `` {
			continue
		}
		fresh[h.HostID] = h.AvailableSlots
	}

	l.slots = fresh
	l.lastRefreshMs = nowMs
}

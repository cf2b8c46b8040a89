package dispatch

import (
	"github.com/joeycumines/go-dispatchqueue/clock"
	"github.com/joeycumines/go-dispatchqueue/hostrank"
	"github.com/joeycumines/go-dispatchqueue/ledger"
	"github.com/joeycumines/go-dispatchqueue/migrationgate"
	"github.com/joeycumines/logiface"
)

// HostCandidate is the type PickHost ranks; it is hostrank.HostCandidate
// under the alias, avoiding a dispatch<->hostrank import cycle while
// keeping call sites in this package's idiom.
type HostCandidate = hostrank.HostCandidate

// TaskSummary is the minimal description of a queued task needed to decide
// migration eligibility.
type TaskSummary struct {
	JobID         string
	TaskIndex     int
	ByteCount     int64
	CurrentHostID string
}

// Policy is DispatchPolicy: it glues the ledger, migration gate, and host
// ranker into the admission decisions a dispatch loop needs. Every decision
// method is a pure function of the current ledger/gate/clock state (the
// Mark* and RefreshLedger methods update the ledger or gate), and every
// method is safe for concurrent use — Policy holds no state beyond its collaborators, each of
// which manages its own synchronization.
type Policy struct {
	cfg    Config
	clock  clock.Clock
	ledger *ledger.Ledger
	gate   *migrationgate.Gate // nil if migration is disabled
}

// NewPolicy constructs a Policy. A nil cfg applies every documented
// default, including a default-enabled migration policy (matching the
// source system's documented default); an explicit &Config{} with a nil
// Migration field disables migration, per Config.Migration's doc comment.
// A nil clk uses clock.Monotonic{}; a nil logger is safe.
func NewPolicy(cfg *Config, clk clock.Clock, logger *logiface.Logger[logiface.Event]) *Policy {
	var c Config
	if cfg != nil {
		c = *cfg
	} else {
		c.Migration = &MigrationConfig{}
	}
	c = c.withDefaults()

	if clk == nil {
		clk = clock.Monotonic{}
	}

	p := &Policy{
		cfg:   c,
		clock: clk,
		ledger: ledger.New(ledger.Config{
			RefreshInterval: c.AvailRefreshInterval,
		}, logger),
	}

	if c.Migration != nil {
		p.gate = migrationgate.New(c.Migration.IntervalPerHost)
	}

	return p
}

// PickHost returns the highest-ranked host in candidates, per hostrank.Best
// evaluated under a single consistent ledger snapshot. If candidates is
// empty, returns false. If requireFreeSlot is true, the result is further
// required to have at least one effective available slot; otherwise the
// top-ranked host is returned unconditionally.
func (p *Policy) PickHost(candidates []HostCandidate, requireFreeSlot bool) (HostCandidate, bool) {
	if len(candidates) == 0 {
		return HostCandidate{}, false
	}

	var best HostCandidate
	var bestSlots int
	var ok bool

	p.ledger.View(func(snapshot func(hostID string) int) {
		best, ok = hostrank.Best(candidates, snapshot)
		if ok {
			bestSlots = snapshot(best.HostID)
		}
	})

	if !ok {
		return HostCandidate{}, false
	}
	if !requireFreeSlot {
		return best, true
	}
	if bestSlots > 0 {
		return best, true
	}
	return HostCandidate{}, false
}

// MayKickNewTaskOn implements the last-slot delay rule: a multi-slot host's
// final remaining slot is reserved until a queued task's timeOnQueueMs
// exceeds Config.LastSlotDelay, so restarts and high-priority work keep a
// landing spot.
// Single-slot hosts are exempt (they would otherwise never be usable).
func (p *Policy) MayKickNewTaskOn(host HostCandidate, timeOnQueueMs int64) bool {
	slots := p.ledger.Snapshot(host.HostID)
	if slots > 1 {
		return true
	}
	if host.MaxSlots == 1 {
		return true
	}
	return timeOnQueueMs > p.cfg.LastSlotDelay.Milliseconds()
}

// MayMigrate reports whether task may be migrated to targetHostID at
// nowMs. Migration is rejected outright if disabled, if task or
// targetHostID is incomplete (zero ByteCount, empty CurrentHostID/
// targetHostID), if targetHostID currently has no effective free slot, or
// if either host appears in the migration gate within its TTL window. It
// does not itself apply the size/age growth rule; see SizeAgeAdmits.
func (p *Policy) MayMigrate(task TaskSummary, targetHostID string, nowMs int64) bool {
	if p.gate == nil {
		return false
	}
	if task.ByteCount == 0 || task.CurrentHostID == `` || targetHostID == `` {
		return false
	}
	if !p.ledger.HasSlot(targetHostID) {
		return false
	}
	if p.gate.RecentlyTouched(task.CurrentHostID, nowMs) || p.gate.RecentlyTouched(targetHostID, nowMs) {
		return false
	}
	return true
}

// SizeAgeAdmits reports whether a task of byteCount, having spent
// timeOnQueueMs on the queue, is small/old enough to migrate. The size
// limit grows linearly from MigrationConfig.MinBytes to MaxBytes over
// GrowthWindow, then holds at MaxBytes. If migration is disabled, no
// byte count is ever admitted.
func (p *Policy) SizeAgeAdmits(byteCount int64, timeOnQueueMs int64) bool {
	if p.cfg.Migration == nil {
		return false
	}

	growthMs := p.cfg.Migration.GrowthWindow.Milliseconds()
	progress := float64(timeOnQueueMs) / float64(growthMs)
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0 {
		progress = 0
	}

	minBytes := float64(p.cfg.Migration.MinBytes)
	maxBytes := float64(p.cfg.Migration.MaxBytes)
	limit := minBytes + progress*(maxBytes-minBytes)

	return float64(byteCount) < limit
}

// MarkPairMigrated records src and dst as having just participated in a
// migration at nowMs, gating further migrations touching either host until
// MigrationConfig.IntervalPerHost elapses. A no-op if migration is
// disabled.
func (p *Policy) MarkPairMigrated(src, dst string, nowMs int64) {
	if p.gate == nil {
		return
	}
	p.gate.MarkPair(src, dst, nowMs)
}

// MarkHostAvailable credits one effective slot to hostID.
func (p *Policy) MarkHostAvailable(hostID string) { p.ledger.MarkAvailable(hostID) }

// MarkHostKicked debits one effective slot from hostID, clamped at zero.
func (p *Policy) MarkHostKicked(hostID string) { p.ledger.MarkKicked(hostID) }

// RefreshLedger reconciles the ledger against authoritative host state, if
// AvailRefreshInterval has elapsed since the last refresh.
func (p *Policy) RefreshLedger(hosts []ledger.HostState, nowMs int64) {
	p.ledger.RefreshFrom(hosts, nowMs)
}

// Clock returns the Clock this Policy was constructed with, for callers
// (e.g. dispatchloop) that need a consistent time source for
// timeOnQueueMs/nowMs computations.
func (p *Policy) Clock() clock.Clock { return p.clock }

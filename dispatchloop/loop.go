package dispatchloop

import (
	"context"

	"github.com/joeycumines/go-dispatchqueue/dispatch"
	"github.com/joeycumines/go-dispatchqueue/ledger"
	"github.com/joeycumines/go-dispatchqueue/queue"
	"github.com/joeycumines/go-dispatchqueue/stopflag"
)

// HostStateSource supplies the authoritative host state used to reconcile
// the policy's ledger at the top of each Run call, e.g. a thin wrapper
// around the external store that owns it.
type HostStateSource interface {
	HostStates(ctx context.Context) ([]ledger.HostState, error)
}

// Kicker dispatches a task to host once Run has decided to admit it. It is
// invoked after the queue lock has been released, never while holding it.
type Kicker interface {
	Kick(ctx context.Context, host dispatch.HostCandidate, task queue.TaskHandle) error
}

// decision pairs a host assignment with the queued item it was made for,
// collected during the locked walk and dispatched after it.
type decision struct {
	host dispatch.HostCandidate
	item queue.Item
}

// Run performs one pass over q: it refreshes policy's ledger from hosts,
// then walks q's priorities high to low under its lock, asking policy for
// a host and last-slot-delay admission per item. Admitted items are
// removed from q and their slot debited while still under the lock; the
// corresponding Kicker.Kick calls happen afterward, out of band, in
// priority/FIFO order. nowMs is the caller-supplied current time, used
// uniformly for the ledger refresh and every timeOnQueueMs computation so
// a single Run call is internally consistent.
//
// Run returns the first error from HostStates or a Kick call. A Kick
// failure does not re-enqueue the task: the caller's Kicker is responsible
// for any retry policy.
func Run(ctx context.Context, q *queue.Queue, hosts HostStateSource, candidates []dispatch.HostCandidate, policy *dispatch.Policy, kicker Kicker, stop *stopflag.Flag, nowMs int64) error {
	hostStates, err := hosts.HostStates(ctx)
	if err != nil {
		return err
	}
	policy.RefreshLedger(hostStates, nowMs)

	var decisions []decision

	q.Iterate(stop, func(priority int, item queue.Item) queue.IterAction {
		if ctx.Err() != nil {
			return queue.IterStop
		}

		host, ok := policy.PickHost(candidates, true)
		if !ok {
			return queue.IterContinue
		}

		timeOnQueueMs := nowMs - item.EnqueuedAtMs
		if !policy.MayKickNewTaskOn(host, timeOnQueueMs) {
			return queue.IterContinue
		}

		policy.MarkHostKicked(host.HostID)
		decisions = append(decisions, decision{host: host, item: item})
		return queue.IterRemoveAndContinue
	})

	for _, d := range decisions {
		if err := kicker.Kick(ctx, d.host, d.item.Handle); err != nil {
			return err
		}
	}

	return ctx.Err()
}

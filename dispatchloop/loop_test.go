package dispatchloop_test

import (
	"context"
	"testing"

	"github.com/joeycumines/go-dispatchqueue/dispatch"
	"github.com/joeycumines/go-dispatchqueue/dispatchloop"
	"github.com/joeycumines/go-dispatchqueue/ledger"
	"github.com/joeycumines/go-dispatchqueue/queue"
	"github.com/joeycumines/go-dispatchqueue/stopflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedHosts []ledger.HostState

func (f fixedHosts) HostStates(context.Context) ([]ledger.HostState, error) { return f, nil }

type recordingKicker struct {
	kicks []queue.TaskHandle
}

func (k *recordingKicker) Kick(_ context.Context, _ dispatch.HostCandidate, task queue.TaskHandle) error {
	k.kicks = append(k.kicks, task)
	return nil
}

func TestRun_kicksHighestPriorityFirst(t *testing.T) {
	q := queue.New(nil)
	h1 := queue.TaskHandle{JobID: `job1`}
	h2 := queue.TaskHandle{JobID: `job2`}

	require.True(t, q.Enqueue(1, h1, false, false))
	require.True(t, q.Enqueue(5, h2, false, false))

	policy := dispatch.NewPolicy(nil, nil, nil)
	candidates := []dispatch.HostCandidate{{HostID: `A`, MaxSlots: 1}}
	kicker := &recordingKicker{}

	err := dispatchloop.Run(
		context.Background(),
		q,
		fixedHosts{{HostID: `A`, AvailableSlots: 1}},
		candidates,
		policy,
		kicker,
		stopflag.New(),
		0,
	)
	require.NoError(t, err)

	require.Len(t, kicker.kicks, 1)
	assert.Equal(t, h2, kicker.kicks[0])
	assert.Equal(t, 1, q.SizeAt(1)) // lower-priority item left queued, no slot remained
}

func TestRun_stopFlagHaltsIteration(t *testing.T) {
	q := queue.New(nil)
	require.True(t, q.Enqueue(1, queue.TaskHandle{JobID: `job1`}, false, false))
	require.True(t, q.Enqueue(1, queue.TaskHandle{JobID: `job2`}, false, false))

	policy := dispatch.NewPolicy(nil, nil, nil)
	stop := stopflag.New()
	stop.Set(true)
	kicker := &recordingKicker{}

	err := dispatchloop.Run(
		context.Background(),
		q,
		fixedHosts{{HostID: `A`, AvailableSlots: 1}},
		[]dispatch.HostCandidate{{HostID: `A`, MaxSlots: 1}},
		policy,
		kicker,
		stop,
		0,
	)
	require.NoError(t, err)
	assert.Empty(t, kicker.kicks)
	assert.Equal(t, 2, q.SizeAt(1))
}

func TestRun_noCandidatesLeavesQueueUntouched(t *testing.T) {
	q := queue.New(nil)
	require.True(t, q.Enqueue(1, queue.TaskHandle{JobID: `job1`}, false, false))

	policy := dispatch.NewPolicy(nil, nil, nil)
	kicker := &recordingKicker{}

	err := dispatchloop.Run(
		context.Background(),
		q,
		fixedHosts{},
		nil,
		policy,
		kicker,
		nil,
		0,
	)
	require.NoError(t, err)
	assert.Empty(t, kicker.kicks)
	assert.Equal(t, 1, q.SizeAt(1))
}

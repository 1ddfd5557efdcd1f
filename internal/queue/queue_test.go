package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/queue"
)

type fakeClient struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeClient) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{ID: "1", Type: task.Type()}, nil
}

func optionValue(opts []asynq.Option, kind asynq.OptionType) any {
	for _, o := range opts {
		if o.Type() == kind {
			return o.Value()
		}
	}
	return nil
}

func TestEnqueueMapsTaskOptions(t *testing.T) {
	client := &fakeClient{}
	enq := queue.Enqueuer{Client: client, Queue: "fiscal"}

	err := enq.Enqueue(context.Background(), queue.Task{Kind: "fiscal:invoice", Payload: []byte(`{"id":1}`), IdempotencyKey: "sale-1", MaxAttempts: 5, Delay: time.Minute})
	require.NoError(t, err)
	require.Len(t, client.tasks, 1)
	require.Equal(t, "fiscal:invoice", client.tasks[0].Type())
	require.Equal(t, []byte(`{"id":1}`), client.tasks[0].Payload())

	opts := client.opts[0]
	require.Equal(t, "fiscal", optionValue(opts, asynq.QueueOpt))
	require.Equal(t, 4, optionValue(opts, asynq.MaxRetryOpt))
	require.Equal(t, "fiscal:invoice:sale-1", optionValue(opts, asynq.TaskIDOpt))
	require.Equal(t, time.Minute, optionValue(opts, asynq.ProcessInOpt))
}

func TestEnqueueRejectsAndDedups(t *testing.T) {
	enq := queue.Enqueuer{}
	require.Error(t, enq.Enqueue(context.Background(), queue.Task{Kind: "demo"}))

	enq.Client = &fakeClient{}
	require.Error(t, enq.Enqueue(context.Background(), queue.Task{Kind: "Bad Kind"}))

	enq.Client = &fakeClient{err: asynq.ErrTaskIDConflict}
	require.NoError(t, enq.Enqueue(context.Background(), queue.Task{Kind: "demo", IdempotencyKey: "k"}))

	enq.Client = &fakeClient{err: errors.New("redis down")}
	require.ErrorContains(t, enq.Enqueue(context.Background(), queue.Task{Kind: "demo"}), "redis down")
}

func TestMuxCountsOutcomes(t *testing.T) {
	queue.QueueProcessedTotal.Reset()
	mux := queue.NewMux(zerolog.Nop())
	var seen []byte
	mux.Handle("demo:ok", func(_ context.Context, task queue.Task) error {
		seen = task.Payload
		return nil
	})
	mux.Handle("demo:fail", func(context.Context, queue.Task) error { return errors.New("boom") })

	require.NoError(t, mux.ProcessTask(context.Background(), asynq.NewTask("demo:ok", []byte("x"))))
	require.Error(t, mux.ProcessTask(context.Background(), asynq.NewTask("demo:fail", nil)))

	require.Equal(t, []byte("x"), seen)
	require.Equal(t, 1.0, testutil.ToFloat64(queue.QueueProcessedTotal.WithLabelValues("demo:ok", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(queue.QueueProcessedTotal.WithLabelValues("demo:fail", "error")))
}

type fakeInspector map[string]*asynq.QueueInfo

func (f fakeInspector) GetQueueInfo(q string) (*asynq.QueueInfo, error) {
	info, ok := f[q]
	if !ok {
		return nil, errors.New("queue not found")
	}
	return info, nil
}

func TestRefreshGauges(t *testing.T) {
	in := fakeInspector{"default": {Queue: "default", Pending: 3, Scheduled: 1, Retry: 2, Archived: 5}}
	require.NoError(t, queue.RefreshGauges(in, "default"))
	require.Equal(t, 6.0, testutil.ToFloat64(queue.QueueDepth.WithLabelValues("default")))
	require.Equal(t, 5.0, testutil.ToFloat64(queue.QueueArchivedSize.WithLabelValues("default")))
	require.Error(t, queue.RefreshGauges(in, "missing"))
}

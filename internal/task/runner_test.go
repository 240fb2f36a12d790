package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTask struct {
	id      uuid.UUID
	counter *atomic.Int32
	done    *sync.WaitGroup
}

func newCountingTask(counter *atomic.Int32, done *sync.WaitGroup) *countingTask {
	return &countingTask{id: uuid.New(), counter: counter, done: done}
}

func (t *countingTask) ID() uuid.UUID { return t.id }
func (t *countingTask) Type() string  { return "counting" }
func (t *countingTask) Execute(ctx context.Context) error {
	t.counter.Add(1)
	t.done.Done()
	return nil
}

func TestRunnerExecutesSubmittedTasks(t *testing.T) {
	runner := NewRunner(RunnerConfig{WorkerCount: 2, QueueSize: 10}, nil)
	runner.Start()
	defer runner.Stop()

	var counter atomic.Int32
	var done sync.WaitGroup

	for i := 0; i < 5; i++ {
		done.Add(1)
		require.NoError(t, runner.Submit(context.Background(), newCountingTask(&counter, &done)))
	}

	waitDone := make(chan struct{})
	go func() {
		done.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		t.Fatal("tasks did not complete in time")
	}
	assert.Equal(t, int32(5), counter.Load())
}

func TestSubmitReturnsErrQueueFullWhenSaturated(t *testing.T) {
	// No workers started: the queue only drains on Stop.
	runner := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 1}, nil)

	var counter atomic.Int32
	var done sync.WaitGroup
	done.Add(2)

	require.NoError(t, runner.Submit(context.Background(), newCountingTask(&counter, &done)))
	err := runner.Submit(context.Background(), newCountingTask(&counter, &done))
	assert.ErrorIs(t, err, ErrQueueFull)
}

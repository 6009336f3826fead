package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	block chan struct{}
	err   error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.block != nil {
		<-j.block
	}
	return j.err
}

func TestAddJobRejectsBadSpec(t *testing.T) {
	s := NewCronScheduler(0)
	err := s.AddJob(&countingJob{name: "bad"}, "every minute")
	require.Error(t, err)
}

func TestAddJobRejectsDuplicateName(t *testing.T) {
	s := NewCronScheduler(0)
	require.NoError(t, s.AddJob(&countingJob{name: "share_expiry"}, "0 * * * *"))
	require.Error(t, s.AddJob(&countingJob{name: "share_expiry"}, "30 * * * *"))
}

func TestWrapSkipsOverlappingRuns(t *testing.T) {
	s := NewCronScheduler(0)
	job := &countingJob{name: "slow", block: make(chan struct{})}
	run := s.wrap(job)

	done := make(chan struct{})
	go func() {
		run()
		close(done)
	}()
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	run()
	require.Equal(t, int32(1), job.runs.Load())

	close(job.block)
	<-done
	job.block = nil
	run()
	require.Equal(t, int32(2), job.runs.Load())
}

func TestWrapToleratesJobErrors(t *testing.T) {
	s := NewCronScheduler(time.Second)
	job := &countingJob{name: "broken", err: errors.New("boom")}
	run := s.wrap(job)
	run()
	run()
	require.Equal(t, int32(2), job.runs.Load())
}

package metrics

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu     sync.Mutex
	events []AttemptEvent
}

func (s *captureSink) Record(event AttemptEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func TestRecorderForwardsToSinks(t *testing.T) {
	sink := &captureSink{}
	recorder := NewRecorder(10, sink)

	recorder.Record(AttemptEvent{
		RequestID: "req-1",
		Provider:  "anthropic",
		Operation: "generate_object",
		Outcome:   OutcomeSuccess,
		LatencyMS: 420,
	})

	require.Len(t, sink.events, 1)
	assert.Equal(t, "req-1", sink.events[0].RequestID)
	assert.False(t, sink.events[0].Timestamp.IsZero(), "timestamp is stamped when absent")
	assert.Equal(t, uint64(1), recorder.Total())
}

func TestRecorderRingEviction(t *testing.T) {
	recorder := NewRecorder(3)

	for i := 1; i <= 5; i++ {
		recorder.Record(AttemptEvent{RequestID: fmt.Sprintf("req-%d", i), Outcome: OutcomeError})
	}

	snapshot := recorder.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "req-3", snapshot[0].RequestID)
	assert.Equal(t, "req-4", snapshot[1].RequestID)
	assert.Equal(t, "req-5", snapshot[2].RequestID)
	assert.Equal(t, uint64(5), recorder.Total())
}

func TestRecorderSnapshotBeforeFull(t *testing.T) {
	recorder := NewRecorder(10)
	recorder.Record(AttemptEvent{RequestID: "req-1", Outcome: OutcomeSuccess})
	recorder.Record(AttemptEvent{RequestID: "req-2", Outcome: OutcomeCircuitOpen})

	snapshot := recorder.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "req-1", snapshot[0].RequestID)
	assert.Equal(t, "req-2", snapshot[1].RequestID)
}

func TestRecorderConcurrentRecord(t *testing.T) {
	recorder := NewRecorder(100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			recorder.Record(AttemptEvent{RequestID: fmt.Sprintf("req-%d", n), Outcome: OutcomeSuccess})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(50), recorder.Total())
	assert.Len(t, recorder.Snapshot(), 50)
}

func TestOutcomeIsValid(t *testing.T) {
	assert.True(t, OutcomeSuccess.IsValid())
	assert.True(t, OutcomeCircuitOpen.IsValid())
	assert.False(t, Outcome("maybe").IsValid())
}

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qa-canvas/canvasd/pkg/models"
)

func TestGetOrCreate(t *testing.T) {
	m := NewManager(DefaultTTL)

	created, existed := m.GetOrCreate("sess-1")
	require.False(t, existed)
	assert.Equal(t, "sess-1", created.ID)
	assert.Equal(t, PhaseInitial, created.Phase)

	again, existed := m.GetOrCreate("sess-1")
	assert.True(t, existed)
	assert.Same(t, created, again)

	fresh, existed := m.GetOrCreate("")
	assert.False(t, existed)
	assert.NotEmpty(t, fresh.ID)
	assert.Equal(t, 2, m.Count())
}

func TestGetAndDelete(t *testing.T) {
	m := NewManager(DefaultTTL)
	m.GetOrCreate("sess-1")

	got, err := m.Get("sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.ID)

	_, err = m.Get("missing")
	assert.ErrorContains(t, err, "session not found")

	require.NoError(t, m.Delete("sess-1"))
	assert.ErrorContains(t, m.Delete("sess-1"), "session not found")
}

func TestPhaseTransitions(t *testing.T) {
	m := NewManager(DefaultTTL)
	s, _ := m.GetOrCreate("sess-1")
	now := time.Now()

	s.BeginIntent(&models.IntentClassification{Intent: models.IntentModifyCanvas}, now)
	assert.Equal(t, PhaseModifying, s.Snapshot().Phase)

	s.Complete(&models.Canvas{}, now)
	snap := s.Snapshot()
	assert.Equal(t, PhaseInitial, snap.Phase)
	assert.NotNil(t, snap.Canvas)

	s.BeginIntent(&models.IntentClassification{Intent: models.IntentAskClarification}, now)
	s.AwaitClarification([]models.ClarificationQuestion{
		{Question: "Which section?", Category: "scope", TargetSection: models.SectionTestCases, Priority: "high"},
	}, now)
	snap = s.Snapshot()
	assert.Equal(t, PhaseAwaitingClarification, snap.Phase)
	require.Len(t, snap.PendingClarification, 1)

	// A follow-up that resolves the ambiguity clears the pending questions
	s.BeginIntent(&models.IntentClassification{Intent: models.IntentModifyCanvas}, now)
	snap = s.Snapshot()
	assert.Equal(t, PhaseModifying, snap.Phase)
	assert.Empty(t, snap.PendingClarification)
}

func TestTerminatedSessionRejectsTransitions(t *testing.T) {
	m := NewManager(DefaultTTL)
	s, _ := m.GetOrCreate("sess-1")
	s.Terminate()

	s.BeginIntent(&models.IntentClassification{Intent: models.IntentModifyCanvas}, time.Now())
	assert.Equal(t, PhaseTerminated, s.Snapshot().Phase)

	s.Complete(&models.Canvas{}, time.Now())
	assert.Equal(t, PhaseTerminated, s.Snapshot().Phase)
}

func TestPhaseForIntent(t *testing.T) {
	assert.Equal(t, PhaseModifying, PhaseForIntent(models.IntentModifyCanvas))
	assert.Equal(t, PhaseAwaitingClarification, PhaseForIntent(models.IntentAskClarification))
	assert.Equal(t, PhaseInforming, PhaseForIntent(models.IntentProvideInformation))
	assert.Equal(t, PhaseInitial, PhaseForIntent(models.IntentOffTopic))
	assert.Equal(t, PhaseInitial, PhaseForIntent(models.IntentFallback))
}

func TestSweep(t *testing.T) {
	m := NewManager(10 * time.Minute)
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	stale, _ := m.GetOrCreate("stale")
	m.GetOrCreate("fresh")

	stale.LastActivity = base.Add(-11 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, PhaseTerminated, stale.Snapshot().Phase)

	_, err := m.Get("stale")
	assert.Error(t, err)
	_, err = m.Get("fresh")
	assert.NoError(t, err)
}

func TestSweepKeepsActiveSessions(t *testing.T) {
	m := NewManager(10 * time.Minute)
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base }

	s, _ := m.GetOrCreate("busy")
	s.LastActivity = base.Add(-9 * time.Minute)

	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, PhaseInitial, s.Snapshot().Phase)
}

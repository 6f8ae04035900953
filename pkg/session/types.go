package session

import (
	"sync"
	"time"

	"github.com/qa-canvas/canvasd/pkg/models"
)

// Phase represents where a conversation currently is.
type Phase string

const (
	PhaseInitial               Phase = "initial"
	PhaseAwaitingClarification Phase = "awaiting_clarification"
	PhaseModifying             Phase = "modifying"
	PhaseInforming             Phase = "informing"
	PhaseTerminated            Phase = "terminated"
)

// IsValid checks if the phase is valid
func (p Phase) IsValid() bool {
	switch p {
	case PhaseInitial, PhaseAwaitingClarification, PhaseModifying,
		PhaseInforming, PhaseTerminated:
		return true
	default:
		return false
	}
}

// PhaseForIntent maps a classified intent to the working phase it
// puts the conversation into.
func PhaseForIntent(intent models.Intent) Phase {
	switch intent {
	case models.IntentModifyCanvas:
		return PhaseModifying
	case models.IntentAskClarification:
		return PhaseAwaitingClarification
	case models.IntentProvideInformation:
		return PhaseInforming
	default:
		return PhaseInitial
	}
}

// Session is the per-conversation state the server keeps between
// requests. In-memory only; a process restart terminates every
// conversation.
type Session struct {
	ID string `json:"id"`

	Phase                Phase                          `json:"phase"`
	LastIntent           *models.IntentClassification   `json:"last_intent,omitempty"`
	PendingClarification []models.ClarificationQuestion `json:"pending_clarification,omitempty"`
	Canvas               *models.Canvas                 `json:"-"`
	CreatedAt            time.Time                      `json:"created_at"`
	LastActivity         time.Time                      `json:"last_activity"`

	mu sync.RWMutex
}

// BeginIntent records a classification and moves the session into the
// matching working phase (thread-safe).
func (s *Session) BeginIntent(classification *models.IntentClassification, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase == PhaseTerminated {
		return
	}
	s.LastIntent = classification
	s.Phase = PhaseForIntent(classification.Intent)
	if s.Phase != PhaseAwaitingClarification {
		s.PendingClarification = nil
	}
	s.LastActivity = now
}

// AwaitClarification stores the questions the user still has to answer
// (thread-safe).
func (s *Session) AwaitClarification(questions []models.ClarificationQuestion, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase == PhaseTerminated {
		return
	}
	s.Phase = PhaseAwaitingClarification
	s.PendingClarification = questions
	s.LastActivity = now
}

// Complete returns the session to the initial phase after a turn
// finishes, storing the latest document snapshot (thread-safe).
func (s *Session) Complete(canvas *models.Canvas, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Phase == PhaseTerminated {
		return
	}
	s.Phase = PhaseInitial
	s.PendingClarification = nil
	if canvas != nil {
		s.Canvas = canvas
	}
	s.LastActivity = now
}

// Terminate marks the session dead. Terminated sessions reject all
// further transitions and wait for the sweeper (thread-safe).
func (s *Session) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Phase = PhaseTerminated
	s.PendingClarification = nil
}

// Snapshot returns a read-only copy of the mutable state (thread-safe).
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	questions := make([]models.ClarificationQuestion, len(s.PendingClarification))
	copy(questions, s.PendingClarification)

	return Snapshot{
		ID:                   s.ID,
		Phase:                s.Phase,
		LastIntent:           s.LastIntent,
		PendingClarification: questions,
		Canvas:               s.Canvas,
		CreatedAt:            s.CreatedAt,
		LastActivity:         s.LastActivity,
	}
}

// expired reports whether the session has been idle past the TTL.
func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.LastActivity) > ttl
}

// Snapshot is a point-in-time copy of a session, safe to read without
// holding its lock.
type Snapshot struct {
	ID                   string
	Phase                Phase
	LastIntent           *models.IntentClassification
	PendingClarification []models.ClarificationQuestion
	Canvas               *models.Canvas
	CreatedAt            time.Time
	LastActivity         time.Time
}

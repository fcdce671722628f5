// Package session holds the per-daemon assistant state: the selected model,
// the last probe status, the recording flag and the chat transcript.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"scenevox/internal/config"
)

// Status is the tri-state result of the most recent connection probe.
type Status string

const (
	StatusUntested Status = "untested"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
)

// Role tags a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one transcript line. Entries are append-only and never mutated.
type Entry struct {
	ID   string
	Role Role
	Text string
	At   time.Time
}

// Session is created once per daemon run and mutated by control commands.
// All methods are safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	model      config.Model
	status     Status
	statusMsg  string
	recording  bool
	transcript []Entry
}

func New(model config.Model) *Session {
	return &Session{
		model:  model,
		status: StatusUntested,
	}
}

func (s *Session) Model() config.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *Session) SetModel(m config.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m
}

// SetStatus records the outcome of the most recent probe, replacing any
// earlier result.
func (s *Session) SetStatus(st Status, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.statusMsg = msg
}

func (s *Session) Status() (Status, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.statusMsg
}

// SetRecording flips the recording flag. It returns false when the flag
// already had the requested value, so callers can detect a double start.
func (s *Session) SetRecording(on bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording == on {
		return false
	}
	s.recording = on
	return true
}

func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Append adds one transcript entry and returns it.
func (s *Session) Append(role Role, text string) Entry {
	e := Entry{
		ID:   uuid.NewString(),
		Role: role,
		Text: text,
		At:   time.Now(),
	}
	s.mu.Lock()
	s.transcript = append(s.transcript, e)
	s.mu.Unlock()
	return e
}

// Transcript returns a copy of the transcript in chronological order.
func (s *Session) Transcript() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

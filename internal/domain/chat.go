package domain

import (
	"sync"
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Greeting seeds every new transcript
const Greeting = "Ask me a question about the products!"

// Message is a single transcript entry
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session holds the mutable state of one user session. The mutex serializes
// user actions so that each session has a single thread of control.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	URL1       string
	URL2       string
	ProductID1 ProductID
	ProductID2 ProductID
	Product1   *ProductRecord
	Product2   *ProductRecord
	Files      []string

	Messages   []Message
	ChatEngine ChatEngine

	mu sync.Mutex
}

// NewSession returns a session initialized to its defaults
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Messages: []Message{
			{Role: RoleAssistant, Content: Greeting, Timestamp: now},
		},
	}
}

// Lock acquires the session for one user action
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session
func (s *Session) Unlock() { s.mu.Unlock() }

// HasRecords reports whether both product records are present
func (s *Session) HasRecords() bool {
	return s.Product1 != nil && s.Product2 != nil
}

package domain

import (
	"context"
	"encoding/json"
)

// SessionRepository stores per-session state
type SessionRepository interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// ProductLookupClient fetches product records from the external lookup API
type ProductLookupClient interface {
	LookupProduct(ctx context.Context, id ProductID) (*ProductRecord, error)
}

// RecordWriter persists a record under a file name and returns the written path
type RecordWriter interface {
	Save(record json.RawMessage, fileName string) (string, error)
}

// IndexBuilder builds a chat engine over persisted product files
type IndexBuilder interface {
	BuildChatEngine(ctx context.Context, files []string) (ChatEngine, error)
}

// ChatEngine answers questions in condense-question mode
type ChatEngine interface {
	StreamChat(ctx context.Context, history []Message, question string) (AnswerStream, error)
}

// AnswerStream delivers an answer incrementally. Recv returns io.EOF once the
// answer is complete. Close stops the stream early.
type AnswerStream interface {
	Recv() (string, error)
	Close() error
}

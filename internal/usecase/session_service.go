package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/comparewise/backend/internal/domain"
)

// CompareResult is the outcome of a comparison for one session
type CompareResult struct {
	ProductID1 domain.ProductID       `json:"productId1"`
	ProductID2 domain.ProductID       `json:"productId2"`
	Rows       []domain.ComparisonRow `json:"rows"`
	Files      []string               `json:"files,omitempty"`
	ChatReady  bool                   `json:"chatReady"`
	Warnings   []string               `json:"warnings,omitempty"`
}

// SessionView is a read-only copy of a session's state
type SessionView struct {
	ID          string           `json:"id"`
	URL1        string           `json:"url1"`
	URL2        string           `json:"url2"`
	ProductID1  domain.ProductID `json:"productId1,omitempty"`
	ProductID2  domain.ProductID `json:"productId2,omitempty"`
	HasProduct1 bool             `json:"hasProduct1"`
	HasProduct2 bool             `json:"hasProduct2"`
	ChatReady   bool             `json:"chatReady"`
	Messages    []domain.Message `json:"messages"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// SessionService drives a user session: submitting URLs, rendering the
// comparison, and answering questions about the two products.
type SessionService struct {
	sessions domain.SessionRepository
	lookup   domain.ProductLookupClient
	writer   domain.RecordWriter
	indexer  domain.IndexBuilder
	now      func() time.Time
}

// NewSessionService creates a new session service with dependencies
func NewSessionService(
	sessions domain.SessionRepository,
	lookup domain.ProductLookupClient,
	writer domain.RecordWriter,
	indexer domain.IndexBuilder,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		lookup:   lookup,
		writer:   writer,
		indexer:  indexer,
		now:      time.Now,
	}
}

// StartSession creates a session with default state
func (s *SessionService) StartSession(ctx context.Context) (*SessionView, error) {
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("[Session] Started %s", sess.ID)

	sess.Lock()
	defer sess.Unlock()
	return viewOf(sess), nil
}

// GetSession returns a snapshot of the session state
func (s *SessionService) GetSession(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	return viewOf(sess), nil
}

// EndSession discards the session and its state
func (s *SessionService) EndSession(ctx context.Context, id string) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[Session] Ended %s", id)
	return nil
}

// SubmitURLs extracts both product identifiers, looks both products up and, when
// both records are available, renders the comparison. If either URL carries no
// identifier the session is left unchanged and no lookup happens.
func (s *SessionService) SubmitURLs(ctx context.Context, id, url1, url2 string) (*CompareResult, error) {
	sess, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	id1, ok1 := ExtractProductID(url1)
	id2, ok2 := ExtractProductID(url2)
	if !ok1 || !ok2 {
		var bad []string
		if !ok1 {
			bad = append(bad, "first")
		}
		if !ok2 {
			bad = append(bad, "second")
		}
		return nil, fmt.Errorf("%w: no product ID in %s URL", domain.ErrInvalidProductURL, strings.Join(bad, " and "))
	}

	p1, err := s.fetch(ctx, id1)
	if err != nil {
		return nil, err
	}
	p2, err := s.fetch(ctx, id2)
	if err != nil {
		return nil, err
	}

	sess.URL1, sess.URL2 = url1, url2
	sess.ProductID1, sess.ProductID2 = id1, id2
	sess.Product1, sess.Product2 = p1, p2
	sess.UpdatedAt = s.now()

	result := &CompareResult{ProductID1: id1, ProductID2: id2, Rows: []domain.ComparisonRow{}}
	if p1 == nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("lookup failed for product 1 (%s)", id1))
	}
	if p2 == nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("lookup failed for product 2 (%s)", id2))
	}

	if sess.HasRecords() {
		if err := s.renderComparison(ctx, sess, result); err != nil {
			return nil, err
		}
	}

	result.ChatReady = sess.ChatEngine != nil
	return result, nil
}

// Comparison re-renders the comparison rows from the session's current records
func (s *SessionService) Comparison(ctx context.Context, id string) (*CompareResult, error) {
	sess, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer sess.Unlock()

	if !sess.HasRecords() {
		return nil, domain.ErrComparisonNotReady
	}

	return &CompareResult{
		ProductID1: sess.ProductID1,
		ProductID2: sess.ProductID2,
		Rows:       SortRows(CompareProductDetails(sess.Product1, sess.Product2)),
		Files:      append([]string(nil), sess.Files...),
		ChatReady:  sess.ChatEngine != nil,
	}, nil
}

// Ask appends question to the transcript and streams the answer through
// onFragment. The assistant reply joins the transcript only once the stream has
// completed; if onFragment fails the stream is abandoned.
func (s *SessionService) Ask(ctx context.Context, id, question string, onFragment func(string) error) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: question is empty", domain.ErrInvalidRequest)
	}

	sess, err := s.acquire(ctx, id)
	if err != nil {
		return "", err
	}
	defer sess.Unlock()

	if sess.ChatEngine == nil {
		return "", domain.ErrChatNotReady
	}

	history := append([]domain.Message(nil), sess.Messages...)
	sess.Messages = append(sess.Messages, domain.Message{
		Role:      domain.RoleUser,
		Content:   question,
		Timestamp: s.now(),
	})

	stream, err := sess.ChatEngine.StreamChat(ctx, history, question)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var answer strings.Builder
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		answer.WriteString(fragment)
		if onFragment != nil {
			if err := onFragment(fragment); err != nil {
				return "", err
			}
		}
	}

	reply := domain.Message{
		Role:      domain.RoleAssistant,
		Content:   answer.String(),
		Timestamp: s.now(),
	}
	sess.Messages = append(sess.Messages, reply)
	sess.UpdatedAt = reply.Timestamp

	return reply.Content, nil
}

// acquire loads and locks a session, extending its lifetime
func (s *SessionService) acquire(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Touch(ctx, id); err != nil {
		return nil, err
	}
	sess.Lock()
	return sess, nil
}

// fetch looks up a product. A failed lookup is logged and yields a nil record.
func (s *SessionService) fetch(ctx context.Context, id domain.ProductID) (*domain.ProductRecord, error) {
	record, err := s.lookup.LookupProduct(ctx, id)
	if errors.Is(err, domain.ErrLookupFailed) {
		log.Printf("[Session] Lookup for %s returned no result: %v", id, err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// renderComparison builds the rows, writes both records and creates the chat
// engine the first time both records are present in the session.
func (s *SessionService) renderComparison(ctx context.Context, sess *domain.Session, result *CompareResult) error {
	result.Rows = SortRows(CompareProductDetails(sess.Product1, sess.Product2))

	path1, err := s.writer.Save(sess.Product1.Raw, string(sess.ProductID1)+".json")
	if err != nil {
		return fmt.Errorf("failed to save product 1: %w", err)
	}
	path2, err := s.writer.Save(sess.Product2.Raw, string(sess.ProductID2)+".json")
	if err != nil {
		return fmt.Errorf("failed to save product 2: %w", err)
	}
	sess.Files = []string{path1, path2}
	result.Files = append([]string(nil), sess.Files...)

	if sess.ChatEngine == nil {
		engine, err := s.indexer.BuildChatEngine(ctx, sess.Files)
		if err != nil {
			return fmt.Errorf("failed to build chat engine: %w", err)
		}
		sess.ChatEngine = engine
		log.Printf("[Session] Chat engine ready for %s", sess.ID)
	}

	return nil
}

func viewOf(sess *domain.Session) *SessionView {
	return &SessionView{
		ID:          sess.ID,
		URL1:        sess.URL1,
		URL2:        sess.URL2,
		ProductID1:  sess.ProductID1,
		ProductID2:  sess.ProductID2,
		HasProduct1: sess.Product1 != nil,
		HasProduct2: sess.Product2 != nil,
		ChatReady:   sess.ChatEngine != nil,
		Messages:    append([]domain.Message(nil), sess.Messages...),
		CreatedAt:   sess.CreatedAt,
		UpdatedAt:   sess.UpdatedAt,
	}
}

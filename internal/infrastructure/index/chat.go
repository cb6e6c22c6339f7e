package index

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/comparewise/backend/internal/domain"
	"github.com/sashabaranov/go-openai"
)

const condenseTemplate = `Given a conversation (between Human and Assistant) and a follow up message from Human, rewrite the message to be a standalone question that captures all relevant context from the conversation.

<Chat History>
%s

<Follow Up Message>
%s

<Standalone question>
`

const contextTemplate = `Context information is below.
---------------------
%s
---------------------
Given the context information and not prior knowledge, answer the query.
Query: %s
Answer: `

// ChatEngine answers questions in condense-question mode over an in-memory index
type ChatEngine struct {
	client *openai.Client
	opts   Options
	chunks []chunk
}

// StreamChat condenses question against history, retrieves the closest chunks and
// streams the model's answer.
func (e *ChatEngine) StreamChat(ctx context.Context, history []domain.Message, question string) (domain.AnswerStream, error) {
	standalone, err := e.condense(ctx, history, question)
	if err != nil {
		return nil, err
	}

	vectors, err := embed(ctx, e.client, e.opts.EmbeddingModel, []string{standalone})
	if err != nil {
		return nil, err
	}
	hits := topK(e.chunks, vectors[0], e.opts.TopK)

	contextText := make([]string, 0, len(hits))
	for _, h := range hits {
		contextText = append(contextText, h.Text)
	}

	var messages []openai.ChatCompletionMessage
	if e.opts.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: e.opts.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: fmt.Sprintf(contextTemplate, strings.Join(contextText, "\n\n"), standalone),
	})

	stream, err := e.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       e.opts.Model,
		Messages:    messages,
		Temperature: temperature(e.opts.Temperature),
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return &answerStream{stream: stream}, nil
}

// condense rewrites question into a standalone question. Without a prior user
// turn there is nothing to condense and question is returned unchanged.
func (e *ChatEngine) condense(ctx context.Context, history []domain.Message, question string) (string, error) {
	var lines []string
	hasUserTurn := false
	for _, m := range history {
		switch m.Role {
		case domain.RoleUser:
			hasUserTurn = true
			lines = append(lines, "Human: "+m.Content)
		case domain.RoleAssistant:
			lines = append(lines, "Assistant: "+m.Content)
		}
	}
	if !hasUserTurn {
		return question, nil
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.opts.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf(condenseTemplate, strings.Join(lines, "\n"), question),
		}},
		Temperature: temperature(e.opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("condense question failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return question, nil
	}

	standalone := strings.TrimSpace(resp.Choices[0].Message.Content)
	if standalone == "" {
		return question, nil
	}
	return standalone, nil
}

// temperature maps 0 to the smallest positive value; the client drops a zero
// temperature from the request and the server would apply its own default.
func temperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// answerStream adapts a chat completion stream to domain.AnswerStream
type answerStream struct {
	stream *openai.ChatCompletionStream
}

// Recv returns the next non-empty fragment, or io.EOF when the answer is complete
func (s *answerStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("answer stream failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if fragment := resp.Choices[0].Delta.Content; fragment != "" {
			return fragment, nil
		}
	}
}

func (s *answerStream) Close() error {
	s.stream.Close()
	return nil
}

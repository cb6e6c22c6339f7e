package index

import (
	"context"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"sort"

	"github.com/comparewise/backend/internal/domain"
	"github.com/sashabaranov/go-openai"
	"github.com/spf13/afero"
)

const embeddingBatchSize = 64

// Options configures index construction and answering
type Options struct {
	Model          string
	EmbeddingModel string
	Temperature    float32
	SystemPrompt   string
	TopK           int
	ChunkSize      int
	ChunkOverlap   int
}

// chunk is one embedded slice of a source document
type chunk struct {
	Source    string
	Text      string
	Embedding []float32
}

// scoredChunk is a retrieval hit
type scoredChunk struct {
	chunk
	Score float64
}

// Builder loads product files and builds chat engines over them
type Builder struct {
	client *openai.Client
	fs     afero.Fs
	opts   Options
}

// NewClient creates an OpenAI-compatible client. An empty baseURL keeps the library default.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// NewBuilder creates an index builder
func NewBuilder(client *openai.Client, fs afero.Fs, opts Options) *Builder {
	if opts.TopK <= 0 {
		opts.TopK = 2
	}
	return &Builder{client: client, fs: fs, opts: opts}
}

// BuildChatEngine reads files, embeds their chunks and returns a chat engine
// that retrieves from them.
func (b *Builder) BuildChatEngine(ctx context.Context, files []string) (domain.ChatEngine, error) {
	var chunks []chunk
	for _, path := range files {
		data, err := afero.ReadFile(b.fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load document %s: %w", path, err)
		}

		name := filepath.Base(path)
		for _, text := range splitText(string(data), b.opts.ChunkSize, b.opts.ChunkOverlap) {
			chunks = append(chunks, chunk{
				Source: name,
				Text:   fmt.Sprintf("file_name: %s\n\n%s", name, text),
			})
		}
	}

	if err := b.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	log.Printf("[Index] Built index over %d files (%d chunks)", len(files), len(chunks))

	return &ChatEngine{
		client: b.client,
		opts:   b.opts,
		chunks: chunks,
	}, nil
}

func (b *Builder) embedChunks(ctx context.Context, chunks []chunk) error {
	for start := 0; start < len(chunks); start += embeddingBatchSize {
		end := min(start+embeddingBatchSize, len(chunks))

		inputs := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			inputs = append(inputs, c.Text)
		}

		vectors, err := embed(ctx, b.client, b.opts.EmbeddingModel, inputs)
		if err != nil {
			return err
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}

// embed returns one vector per input, in input order
func embed(ctx context.Context, client *openai.Client, model string, inputs []string) ([][]float32, error) {
	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: inputs,
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(inputs))
	}

	vectors := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(inputs) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// topK ranks chunks by cosine similarity to query
func topK(chunks []chunk, query []float32, k int) []scoredChunk {
	scored := make([]scoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, scoredChunk{chunk: c, Score: cosine(c.Embedding, query)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

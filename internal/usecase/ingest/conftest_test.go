package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

type mockEmbedder struct {
	mu    sync.Mutex
	texts []string
	fail  string // texts containing this substring fail
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.fail != "" && strings.Contains(text, m.fail) {
		return domain.EmbeddingResult{}, errors.New("provider error")
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 4}, nil
}

type mockWriter struct {
	mu   sync.Mutex
	docs map[string]domdoc.Document
	err  error
}

func newMockWriter() *mockWriter {
	return &mockWriter{docs: map[string]domdoc.Document{}}
}

func (m *mockWriter) Upsert(_ context.Context, doc *domdoc.Document) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID()] = *doc
	return nil
}

type countingThrottle struct {
	mu    sync.Mutex
	waits int
}

func (c *countingThrottle) Wait(ctx context.Context) error {
	c.mu.Lock()
	c.waits++
	c.mu.Unlock()
	return ctx.Err()
}

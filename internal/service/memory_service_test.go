package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"buddy-mind/internal/domain"
	"buddy-mind/internal/llm"
	"buddy-mind/internal/repository"
)

const testEmbeddingDim = 16

// testEmbedFunc produce embeddings deterministas tipo bolsa de palabras:
// cada término emocional ocupa una componente fija y textos con términos
// compartidos quedan cerca en coseno.
func testEmbedFunc(text string) ([]float32, error) {
	vocab := map[string]int{
		"happy": 1, "sad": 2, "angry": 3, "excited": 4, "worried": 5,
		"anxious": 6, "grateful": 7, "frustrated": 8, "peaceful": 9,
		"stressed": 10, "joyful": 11, "lonely": 12,
		"taxes": 13, "weather": 14, "project": 15,
	}
	vec := make([]float32, testEmbeddingDim)
	vec[0] = 1.0
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?")
		if idx, ok := vocab[word]; ok {
			vec[idx] += 1.0
		}
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}

func newTestMemoryService(repo repository.MemoryRepository) *MemoryService {
	embedder := &llm.MockClient{EmbedFunc: testEmbedFunc}
	return NewMemoryService(repo, embedder, testEmbeddingDim, zap.NewNop())
}

func TestStoreMessageAndStats(t *testing.T) {
	repo := repository.NewChromemMemoryRepository()
	svc := newTestMemoryService(repo)

	id, err := svc.StoreMessage(context.Background(), "u1", "I feel happy about the project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected non-nil memory id")
	}

	stats := svc.Stats(context.Background(), "u1")
	if !stats.IndexAvailable || stats.StoredMessages != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStoreMessageEmbeddingFailureWritesNothing(t *testing.T) {
	repo := repository.NewChromemMemoryRepository()
	embedder := &llm.MockClient{EmbedErr: errors.New("provider down")}
	svc := NewMemoryService(repo, embedder, testEmbeddingDim, zap.NewNop())

	_, err := svc.StoreMessage(context.Background(), "u1", "hola")
	if !errors.Is(err, domain.ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}
	if stats := svc.Stats(context.Background(), "u1"); stats.StoredMessages != 0 {
		t.Fatalf("expected nothing written, got %+v", stats)
	}
}

func TestStoreMessageRejectsWrongDimension(t *testing.T) {
	repo := repository.NewChromemMemoryRepository()
	embedder := &llm.MockClient{Embedding: []float32{0.1, 0.2, 0.3}}
	svc := NewMemoryService(repo, embedder, testEmbeddingDim, zap.NewNop())

	_, err := svc.StoreMessage(context.Background(), "u1", "hola")
	if !errors.Is(err, domain.ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}
}

func TestFindSimilarRoundTrip(t *testing.T) {
	repo := repository.NewChromemMemoryRepository()
	svc := newTestMemoryService(repo)
	ctx := context.Background()

	if _, err := svc.StoreMessage(ctx, "u1", "I feel happy today"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.StoreMessage(ctx, "u1", "the weather ruined my mood"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := svc.FindSimilar(ctx, "u1", "I feel happy today", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Message != "I feel happy today" {
		t.Fatalf("expected exact match first, got %q", results[0].Message)
	}
	if results[0].Similarity < 0.999 {
		t.Fatalf("expected self-similarity near 1.0, got %v", results[0].Similarity)
	}
	if results[1].Similarity > results[0].Similarity {
		t.Fatal("results not sorted by similarity")
	}
	if math.Abs((1.0-results[0].Distance)-results[0].Similarity) > 1e-6 {
		t.Fatalf("similarity and distance disagree: %+v", results[0])
	}
}

func TestFindSimilarScopedToUser(t *testing.T) {
	repo := repository.NewChromemMemoryRepository()
	svc := newTestMemoryService(repo)
	ctx := context.Background()

	idA, err := svc.StoreMessage(ctx, "alice", "I feel stressed about taxes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.StoreMessage(ctx, "bob", "I feel stressed about taxes"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := svc.FindSimilar(ctx, "alice", "stressed", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected only alice's memory, got %d results", len(results))
	}
	if results[0].MessageID != idA.String() {
		t.Fatalf("expected alice's memory id %s, got %s", idA, results[0].MessageID)
	}
}

func TestFindSimilarUnknownUserReturnsEmpty(t *testing.T) {
	repo := repository.NewChromemMemoryRepository()
	svc := newTestMemoryService(repo)

	results, err := svc.FindSimilar(context.Background(), "ghost", "anything at all", 5)
	if err != nil {
		t.Fatalf("expected empty result without error, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

type failingMemoryRepo struct{}

func (failingMemoryRepo) Create(context.Context, domain.MemoryRecord) error { return errors.New("down") }
func (failingMemoryRepo) Search(context.Context, string, pgvector.Vector, int) ([]repository.ScoredMemory, error) {
	return nil, errors.New("down")
}
func (failingMemoryRepo) CountByUser(context.Context, string) (int, error) {
	return 0, errors.New("down")
}

func TestFindSimilarIndexFailure(t *testing.T) {
	svc := newTestMemoryService(failingMemoryRepo{})

	_, err := svc.FindSimilar(context.Background(), "u1", "hola", 5)
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}

	if stats := svc.Stats(context.Background(), "u1"); stats.IndexAvailable {
		t.Fatalf("expected index_available=false, got %+v", stats)
	}
}

func TestEmotionalInsights(t *testing.T) {
	repo := repository.NewChromemMemoryRepository()
	svc := newTestMemoryService(repo)
	ctx := context.Background()

	messages := []string{
		"I feel happy about the project",
		"I feel so sad and lonely",
		"I feel angry at the weather",
		"I feel excited and grateful",
		"I feel worried about taxes",
		"I feel anxious before meetings",
		"I feel frustrated with the project",
		"I feel peaceful after the walk",
		"I feel stressed every morning",
		"I feel joyful around friends",
		"I feel lonely on weekends",
		"just an update on the project",
		"remember to check the weather",
		"taxes are due next month",
		"I feel grateful for everything",
	}
	for _, msg := range messages {
		if _, err := svc.StoreMessage(ctx, "u1", msg); err != nil {
			t.Fatalf("store %q: %v", msg, err)
		}
	}
	if _, err := svc.StoreMessage(ctx, "other", "I feel happy too"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	insights, err := svc.EmotionalInsights(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(insights) == 0 || len(insights) > insightsCap {
		t.Fatalf("expected between 1 and %d insights, got %d", insightsCap, len(insights))
	}
	seen := map[string]struct{}{}
	for i, in := range insights {
		if _, dup := seen[in.MessageID]; dup {
			t.Fatalf("duplicate message id %s in insights", in.MessageID)
		}
		seen[in.MessageID] = struct{}{}
		if in.Message == "I feel happy too" {
			t.Fatal("insight leaked from another user")
		}
		if i > 0 && insights[i-1].Similarity < in.Similarity {
			t.Fatalf("insights not sorted by similarity at index %d", i)
		}
		if in.DetectedEmotion == "" {
			t.Fatalf("missing detected emotion on %+v", in)
		}
	}
}

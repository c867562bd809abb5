package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"buddy-mind/internal/domain"
	"buddy-mind/internal/llm"
	"buddy-mind/internal/repository"
)

const (
	defaultSimilarK = 5
	insightsPerTerm = 3
	insightsCap     = 10
)

// defaultEmotionVocabulary son los términos sondeados por las
// emotional insights cuando el caller no pasa un vocabulario propio.
var defaultEmotionVocabulary = []string{
	"happy", "sad", "angry", "excited", "worried", "anxious",
	"grateful", "frustrated", "peaceful", "stressed", "joyful", "lonely",
}

// SimilarMessage es un mensaje recuperado por similitud semántica.
type SimilarMessage struct {
	MessageID  string    `json:"message_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
	Similarity float64   `json:"similarity_score"`
	Distance   float64   `json:"distance"`
}

// EmotionalMessage es un SimilarMessage etiquetado con la emoción cuya
// sonda lo recuperó.
type EmotionalMessage struct {
	SimilarMessage
	DetectedEmotion string `json:"detected_emotion"`
}

// MemoryStats reporta contadores de diagnóstico del índice.
type MemoryStats struct {
	UserID         string `json:"user_id"`
	StoredMessages int    `json:"stored_messages"`
	IndexAvailable bool   `json:"index_available"`
}

// MemoryService guarda mensajes con su embedding y los recupera por
// similitud, siempre acotado a un usuario.
type MemoryService struct {
	memoryRepo   repository.MemoryRepository
	embedder     llm.EmbeddingClient
	embeddingDim int
	logger       *zap.Logger
}

func NewMemoryService(
	memoryRepo repository.MemoryRepository,
	embedder llm.EmbeddingClient,
	embeddingDim int,
	logger *zap.Logger,
) *MemoryService {
	if embeddingDim <= 0 {
		embeddingDim = 1536
	}
	return &MemoryService{
		memoryRepo:   memoryRepo,
		embedder:     embedder,
		embeddingDim: embeddingDim,
		logger:       logger,
	}
}

// StoreMessage embebe el mensaje y lo persiste. Si el embedding falla o
// llega con dimensionalidad incorrecta no se escribe nada: el error es
// domain.ErrEmbeddingFailed y no quedan registros parciales.
func (s *MemoryService) StoreMessage(ctx context.Context, userID, message string) (uuid.UUID, error) {
	embedding, err := s.embed(ctx, message)
	if err != nil {
		s.logger.Warn("store message embedding failed", zap.String("user_id", userID), zap.Error(err))
		return uuid.Nil, err
	}

	record := domain.MemoryRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Content:   message,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.memoryRepo.Create(ctx, record); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	s.logger.Info("memory stored", zap.String("user_id", userID), zap.String("memory_id", record.ID.String()))
	return record.ID, nil
}

// FindSimilar devuelve hasta k mensajes del usuario ordenados por
// similitud descendente. Un usuario sin memorias recibe lista vacía; un
// índice caído recibe domain.ErrIndexUnavailable, que son cosas distintas.
func (s *MemoryService) FindSimilar(ctx context.Context, userID, query string, k int) ([]SimilarMessage, error) {
	if k <= 0 {
		k = defaultSimilarK
	}

	embedding, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := s.memoryRepo.Search(ctx, userID, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	results := make([]SimilarMessage, 0, len(scored))
	for _, sm := range scored {
		results = append(results, SimilarMessage{
			MessageID:  sm.ID.String(),
			Message:    sm.Content,
			CreatedAt:  sm.CreatedAt,
			Similarity: sm.Similarity,
			Distance:   sm.Distance,
		})
	}
	return results, nil
}

// Stats es solo diagnóstico: si el índice no responde devuelve
// available=false en lugar de error.
func (s *MemoryService) Stats(ctx context.Context, userID string) MemoryStats {
	count, err := s.memoryRepo.CountByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("memory stats unavailable", zap.String("user_id", userID), zap.Error(err))
		return MemoryStats{UserID: userID, IndexAvailable: false}
	}
	return MemoryStats{UserID: userID, StoredMessages: count, IndexAvailable: true}
}

// EmotionalInsights sondea el índice con "I feel <término>" por cada
// término del vocabulario (k=3), junta todo, ordena por similitud
// descendente, deduplica por id quedándose con la mejor aparición y corta
// en 10. Abanico O(|vocabulario|·k) de consultas más un merge O(n log n).
func (s *MemoryService) EmotionalInsights(ctx context.Context, userID string, vocabulary []string) ([]EmotionalMessage, error) {
	if len(vocabulary) == 0 {
		vocabulary = defaultEmotionVocabulary
	}

	var pooled []EmotionalMessage
	for _, emotion := range vocabulary {
		probe := "I feel " + strings.TrimSpace(emotion)
		matches, err := s.FindSimilar(ctx, userID, probe, insightsPerTerm)
		if err != nil {
			return nil, fmt.Errorf("probe %q: %w", emotion, err)
		}
		for _, m := range matches {
			pooled = append(pooled, EmotionalMessage{SimilarMessage: m, DetectedEmotion: emotion})
		}
	}

	sort.SliceStable(pooled, func(i, j int) bool {
		return pooled[i].Similarity > pooled[j].Similarity
	})

	seen := make(map[string]struct{}, len(pooled))
	unique := pooled[:0]
	for _, m := range pooled {
		if _, ok := seen[m.MessageID]; ok {
			continue
		}
		seen[m.MessageID] = struct{}{}
		unique = append(unique, m)
	}

	if len(unique) > insightsCap {
		unique = unique[:insightsCap]
	}

	s.logger.Info("emotional insights computed",
		zap.String("user_id", userID),
		zap.Int("emotions_searched", len(vocabulary)),
		zap.Int("results", len(unique)),
	)
	return unique, nil
}

func (s *MemoryService) embed(ctx context.Context, text string) (pgvector.Vector, error) {
	raw, err := s.embedder.CreateEmbedding(ctx, text)
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailed, err)
	}
	if len(raw) != s.embeddingDim {
		return pgvector.Vector{}, fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrEmbeddingFailed, s.embeddingDim, len(raw))
	}
	return pgvector.NewVector(raw), nil
}

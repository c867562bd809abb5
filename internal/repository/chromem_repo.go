package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	chromem "github.com/philippgille/chromem-go"

	"buddy-mind/internal/domain"
)

// ChromemMemoryRepository implementa MemoryRepository sobre chromem-go,
// una base vectorial embebida en proceso. Cada usuario tiene su propia
// colección, lo que hace estructural el aislamiento por dueño.
// Se usa en la CLI, en los harness de verificación y en tests.
type ChromemMemoryRepository struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

func NewChromemMemoryRepository() *ChromemMemoryRepository {
	return &ChromemMemoryRepository{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}
}

func (r *ChromemMemoryRepository) collection(userID string) (*chromem.Collection, error) {
	r.mu.RLock()
	col, ok := r.collections[userID]
	r.mu.RUnlock()
	if ok {
		return col, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if col, ok := r.collections[userID]; ok {
		return col, nil
	}

	// Sin embedding func: los embeddings llegan ya generados.
	col, err := r.db.GetOrCreateCollection("user_"+userID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	r.collections[userID] = col
	return col, nil
}

func (r *ChromemMemoryRepository) Create(ctx context.Context, record domain.MemoryRecord) error {
	col, err := r.collection(record.UserID)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        record.ID.String(),
		Content:   record.Content,
		Embedding: record.Embedding.Slice(),
		Metadata: map[string]string{
			"user_id":    record.UserID,
			"created_at": record.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

func (r *ChromemMemoryRepository) Search(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]ScoredMemory, error) {
	if k <= 0 {
		k = 5
	}
	col, err := r.collection(userID)
	if err != nil {
		return nil, err
	}

	// chromem exige nResults <= tamaño de la colección.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	found, err := col.QueryEmbedding(ctx, queryEmbedding.Slice(), k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	results := make([]ScoredMemory, 0, len(found))
	for _, res := range found {
		id, err := uuid.Parse(res.ID)
		if err != nil {
			return nil, fmt.Errorf("parse memory id %q: %w", res.ID, err)
		}
		createdAt, _ := time.Parse(time.RFC3339Nano, res.Metadata["created_at"])
		similarity := float64(res.Similarity)
		results = append(results, ScoredMemory{
			MemoryRecord: domain.MemoryRecord{
				ID:        id,
				UserID:    userID,
				Content:   res.Content,
				Embedding: pgvector.NewVector(res.Embedding),
				CreatedAt: createdAt,
			},
			Distance:   1.0 - similarity,
			Similarity: similarity,
		})
	}

	// Mismo criterio de desempate que el repositorio pgvector.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.Before(results[j].CreatedAt)
		}
		return results[i].ID.String() < results[j].ID.String()
	})
	return results, nil
}

func (r *ChromemMemoryRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	col, err := r.collection(userID)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

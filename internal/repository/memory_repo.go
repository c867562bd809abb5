package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"buddy-mind/internal/domain"
)

// ScoredMemory es un resultado de búsqueda con su distancia coseno y la
// similitud derivada (1 - distancia).
type ScoredMemory struct {
	domain.MemoryRecord
	Distance   float64
	Similarity float64
}

// MemoryRepository es el índice vectorial de memorias. Toda búsqueda está
// obligatoriamente acotada a un usuario: cruzar memorias entre usuarios es
// una violación de corrección.
type MemoryRepository interface {
	Create(ctx context.Context, record domain.MemoryRecord) error
	Search(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]ScoredMemory, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type PgMemoryRepository struct {
	pool *pgxpool.Pool
}

func NewPgMemoryRepository(pool *pgxpool.Pool) *PgMemoryRepository {
	return &PgMemoryRepository{pool: pool}
}

func (r *PgMemoryRepository) Create(ctx context.Context, record domain.MemoryRecord) error {
	const query = `
		INSERT INTO buddy_memories (id, user_id, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.UserID,
		record.Content,
		record.Embedding,
		record.CreatedAt,
	)
	return err
}

// Search ordena por distancia ascendente; los empates se resuelven por
// orden de inserción (created_at, id) para que el ranking sea determinista.
func (r *PgMemoryRepository) Search(ctx context.Context, userID string, queryEmbedding pgvector.Vector, k int) ([]ScoredMemory, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT id, user_id, content, embedding, created_at, embedding <=> $2 AS distance
		FROM buddy_memories
		WHERE user_id = $1
		ORDER BY embedding <=> $2, created_at, id
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ScoredMemory
	for rows.Next() {
		var sm ScoredMemory
		if err := rows.Scan(
			&sm.ID,
			&sm.UserID,
			&sm.Content,
			&sm.Embedding,
			&sm.CreatedAt,
			&sm.Distance,
		); err != nil {
			return nil, err
		}
		sm.Similarity = 1.0 - sm.Distance
		results = append(results, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *PgMemoryRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM buddy_memories WHERE user_id = $1`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// MemoryRecord es un mensaje almacenado con su embedding para recall
// semántico. Inmutable una vez creado; el borrado es responsabilidad
// de un colaborador externo.
type MemoryRecord struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	Content   string          `json:"content"`
	Embedding pgvector.Vector `json:"embedding"`
	CreatedAt time.Time       `json:"created_at"`
}

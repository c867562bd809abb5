package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"buddy-mind/internal/domain"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (domain.PersonalityProfile, error)
	Upsert(ctx context.Context, profile domain.PersonalityProfile) error
	Delete(ctx context.Context, userID string) error
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

// GetByUserID devuelve domain.ErrProfileNotFound para usuarios sin perfil;
// el caller decide si eso es un 404 o un perfil neutro por defecto.
func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.PersonalityProfile, error) {
	const query = `
		SELECT user_id,
			extroversion_score, sensing_score, thinking_score, judging_score,
			extroversion_confidence, sensing_confidence, thinking_confidence, judging_confidence,
			overall_confidence, sessions_analyzed, evidence_log, created_at, updated_at
		FROM personality_profiles
		WHERE user_id = $1
	`
	var p domain.PersonalityProfile
	var evidenceLog []byte
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.Scores[domain.DimExtroversion],
		&p.Scores[domain.DimSensing],
		&p.Scores[domain.DimThinking],
		&p.Scores[domain.DimJudging],
		&p.Confidences[domain.DimExtroversion],
		&p.Confidences[domain.DimSensing],
		&p.Confidences[domain.DimThinking],
		&p.Confidences[domain.DimJudging],
		&p.OverallConfidence,
		&p.SessionsAnalyzed,
		&evidenceLog,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PersonalityProfile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.PersonalityProfile{}, err
	}

	if len(evidenceLog) > 0 {
		if err := json.Unmarshal(evidenceLog, &p.EvidenceLog); err != nil {
			return domain.PersonalityProfile{}, fmt.Errorf("decode evidence log: %w", err)
		}
	}
	return p, nil
}

func (r *PgProfileRepository) Upsert(ctx context.Context, profile domain.PersonalityProfile) error {
	const query = `
		INSERT INTO personality_profiles (
			user_id,
			extroversion_score, sensing_score, thinking_score, judging_score,
			extroversion_confidence, sensing_confidence, thinking_confidence, judging_confidence,
			overall_confidence, sessions_analyzed, evidence_log, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id)
		DO UPDATE SET
			extroversion_score = EXCLUDED.extroversion_score,
			sensing_score = EXCLUDED.sensing_score,
			thinking_score = EXCLUDED.thinking_score,
			judging_score = EXCLUDED.judging_score,
			extroversion_confidence = EXCLUDED.extroversion_confidence,
			sensing_confidence = EXCLUDED.sensing_confidence,
			thinking_confidence = EXCLUDED.thinking_confidence,
			judging_confidence = EXCLUDED.judging_confidence,
			overall_confidence = EXCLUDED.overall_confidence,
			sessions_analyzed = EXCLUDED.sessions_analyzed,
			evidence_log = EXCLUDED.evidence_log,
			updated_at = EXCLUDED.updated_at
	`

	evidenceLog, err := json.Marshal(profile.EvidenceLog)
	if err != nil {
		return fmt.Errorf("encode evidence log: %w", err)
	}
	if profile.EvidenceLog == nil {
		evidenceLog = []byte("[]")
	}

	_, err = r.pool.Exec(ctx, query,
		profile.UserID,
		profile.Scores[domain.DimExtroversion],
		profile.Scores[domain.DimSensing],
		profile.Scores[domain.DimThinking],
		profile.Scores[domain.DimJudging],
		profile.Confidences[domain.DimExtroversion],
		profile.Confidences[domain.DimSensing],
		profile.Confidences[domain.DimThinking],
		profile.Confidences[domain.DimJudging],
		profile.OverallConfidence,
		profile.SessionsAnalyzed,
		evidenceLog,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}

func (r *PgProfileRepository) Delete(ctx context.Context, userID string) error {
	const query = `DELETE FROM personality_profiles WHERE user_id = $1`
	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

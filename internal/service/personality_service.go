package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"buddy-mind/internal/domain"
	"buddy-mind/internal/repository"
)

// DimensionValues expone los cuatro ejes con claves explícitas para JSON.
type DimensionValues struct {
	Extroversion float64 `json:"extroversion"`
	Sensing      float64 `json:"sensing"`
	Thinking     float64 `json:"thinking"`
	Judging      float64 `json:"judging"`
}

func dimensionValues(v [domain.DimensionCount]float64) DimensionValues {
	return DimensionValues{
		Extroversion: v[domain.DimExtroversion],
		Sensing:      v[domain.DimSensing],
		Thinking:     v[domain.DimThinking],
		Judging:      v[domain.DimJudging],
	}
}

// ConfidenceValues agrega la confianza global a los valores por eje.
type ConfidenceValues struct {
	Overall      float64 `json:"overall"`
	Extroversion float64 `json:"extroversion"`
	Sensing      float64 `json:"sensing"`
	Thinking     float64 `json:"thinking"`
	Judging      float64 `json:"judging"`
}

// PersonalitySnapshot es la vista del perfil que reciben los callers.
type PersonalitySnapshot struct {
	MBTIType         string                 `json:"mbti_type"`
	TypeDescription  string                 `json:"type_description"`
	Scores           DimensionValues        `json:"scores"`
	Confidence       ConfidenceValues       `json:"confidence"`
	SessionsAnalyzed int                    `json:"sessions_analyzed"`
	FacetBars        []FacetBar             `json:"facet_bars,omitempty"`
	RecentEvidence   []domain.EvidenceEntry `json:"recent_evidence,omitempty"`
	CreatedAt        time.Time              `json:"created_at,omitzero"`
	UpdatedAt        time.Time              `json:"updated_at,omitzero"`
}

// PersonalityService orquesta el ciclo extracción → actualización →
// persistencia del perfil MBTI.
type PersonalityService struct {
	extractor   EvidenceExtractor
	profileRepo repository.ProfileRepository
	lock        ProfileLock
	logger      *zap.Logger
}

func NewPersonalityService(
	extractor EvidenceExtractor,
	profileRepo repository.ProfileRepository,
	lock ProfileLock,
	logger *zap.Logger,
) *PersonalityService {
	if lock == nil {
		lock = NewLocalProfileLock()
	}
	return &PersonalityService{
		extractor:   extractor,
		profileRepo: profileRepo,
		lock:        lock,
		logger:      logger,
	}
}

// ProcessSession actualiza el perfil del usuario con la evidencia de una
// sesión terminada. Si el extractor falla, el perfil queda intacto (ni
// contador ni log cambian) y se devuelve el error tipado.
//
// Las escrituras por usuario se serializan con el lock: la lectura-
// modificación-escritura del log y los contadores no es segura con
// escritores concurrentes.
func (s *PersonalityService) ProcessSession(ctx context.Context, userID string, transcript []domain.TranscriptLine, summary string) (PersonalitySnapshot, error) {
	evidence, err := s.extractor.Extract(ctx, transcript, summary)
	if err != nil {
		s.logger.Warn("evidence extraction failed", zap.String("user_id", userID), zap.Error(err))
		return PersonalitySnapshot{}, err
	}

	release, err := s.lock.Acquire(ctx, userID)
	if err != nil {
		return PersonalitySnapshot{}, fmt.Errorf("acquire profile lock: %w", err)
	}
	defer release()

	now := time.Now().UTC()
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		profile = domain.NewPersonalityProfile(userID, now)
	} else if err != nil {
		return PersonalitySnapshot{}, fmt.Errorf("get profile for user %s: %w", userID, err)
	}

	applyEvidence(&profile, evidence, summary, now)

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return PersonalitySnapshot{}, fmt.Errorf("save profile for user %s: %w", userID, err)
	}

	s.logger.Info("personality updated",
		zap.String("user_id", userID),
		zap.String("mbti_type", MBTIType(profile.Scores)),
		zap.Int("sessions_analyzed", profile.SessionsAnalyzed),
	)

	return s.snapshot(profile, false), nil
}

// GetInsights devuelve el perfil completo con facetas y evidencia
// reciente. Un usuario sin perfil recibe el perfil neutro por defecto en
// lugar de un error, para que el cliente no tenga que distinguir casos.
func (s *PersonalityService) GetInsights(ctx context.Context, userID string) (PersonalitySnapshot, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		profile = domain.NewPersonalityProfile(userID, time.Time{})
	} else if err != nil {
		return PersonalitySnapshot{}, fmt.Errorf("get profile for user %s: %w", userID, err)
	}
	return s.snapshot(profile, true), nil
}

// Reset borra el perfil del usuario. Es la única vía de borrado.
func (s *PersonalityService) Reset(ctx context.Context, userID string) error {
	release, err := s.lock.Acquire(ctx, userID)
	if err != nil {
		return fmt.Errorf("acquire profile lock: %w", err)
	}
	defer release()

	if err := s.profileRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("personality profile reset", zap.String("user_id", userID))
	return nil
}

func (s *PersonalityService) snapshot(p domain.PersonalityProfile, full bool) PersonalitySnapshot {
	mbtiType := MBTIType(p.Scores)
	snap := PersonalitySnapshot{
		MBTIType:        mbtiType,
		TypeDescription: MBTIDescription(mbtiType),
		Scores:          dimensionValues(p.Scores),
		Confidence: ConfidenceValues{
			Overall:      p.OverallConfidence,
			Extroversion: p.Confidences[domain.DimExtroversion],
			Sensing:      p.Confidences[domain.DimSensing],
			Thinking:     p.Confidences[domain.DimThinking],
			Judging:      p.Confidences[domain.DimJudging],
		},
		SessionsAnalyzed: p.SessionsAnalyzed,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if full {
		snap.FacetBars = FacetBars(p)
		if n := len(p.EvidenceLog); n > 0 {
			start := n - 5
			if start < 0 {
				start = 0
			}
			snap.RecentEvidence = p.EvidenceLog[start:]
		}
	}
	return snap
}

package domain

import "time"

// EvidenceLogCap limita el log de evidencia a las entradas más recientes;
// al superarlo se descarta la más antigua (FIFO).
const EvidenceLogCap = 50

// PersonalityProfile es el perfil MBTI acumulado de un usuario.
// Scores y Confidences se indexan por Dimension y viven siempre en [0,1];
// SessionsAnalyzed nunca decrece.
type PersonalityProfile struct {
	UserID            string
	Scores            [DimensionCount]float64
	Confidences       [DimensionCount]float64
	OverallConfidence float64
	SessionsAnalyzed  int
	EvidenceLog       []EvidenceEntry
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewPersonalityProfile crea un perfil neutro: todos los scores en 0.5
// (desconocido) y confianza cero (sin evidencia todavía).
func NewPersonalityProfile(userID string, now time.Time) PersonalityProfile {
	p := PersonalityProfile{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, d := range Dimensions {
		p.Scores[d] = 0.5
		p.Confidences[d] = 0.0
	}
	return p
}

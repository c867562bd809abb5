package domain

import "time"

// DimensionEvidence es la evidencia extraída para un eje: estimación
// puntual en [0,1] y las citas textuales que la soportan. La cantidad de
// citas actúa como fuerza de la evidencia en la actualización.
type DimensionEvidence struct {
	Score    float64  `json:"score"`
	Evidence []string `json:"evidence"`
}

// Strength es la cantidad de citas que respaldan la estimación.
func (e DimensionEvidence) Strength() int {
	return len(e.Evidence)
}

// SessionEvidence agrupa la evidencia de una sesión. Cada eje es opcional:
// un eje ausente se trata como neutro (0.5) sin fuerza, lo que degrada la
// actualización a un no-op para ese eje.
type SessionEvidence struct {
	Extroversion *DimensionEvidence `json:"extroversion,omitempty"`
	Sensing      *DimensionEvidence `json:"sensing,omitempty"`
	Thinking     *DimensionEvidence `json:"thinking,omitempty"`
	Judging      *DimensionEvidence `json:"judging,omitempty"`
}

// ByDimension devuelve la evidencia del eje, o nil si no fue observada.
func (s SessionEvidence) ByDimension(d Dimension) *DimensionEvidence {
	switch d {
	case DimExtroversion:
		return s.Extroversion
	case DimSensing:
		return s.Sensing
	case DimThinking:
		return s.Thinking
	case DimJudging:
		return s.Judging
	}
	return nil
}

// SetDimension asigna la evidencia de un eje. Útil en el parser y en tests.
func (s *SessionEvidence) SetDimension(d Dimension, ev *DimensionEvidence) {
	switch d {
	case DimExtroversion:
		s.Extroversion = ev
	case DimSensing:
		s.Sensing = ev
	case DimThinking:
		s.Thinking = ev
	case DimJudging:
		s.Judging = ev
	}
}

// EvidenceEntry es una entrada inmutable del log de evidencia del perfil.
type EvidenceEntry struct {
	Timestamp      time.Time       `json:"timestamp"`
	SessionSummary string          `json:"session_summary"`
	Evidence       SessionEvidence `json:"evidence"`
}

// TranscriptLine es una línea de conversación tal como la entrega el caller.
type TranscriptLine struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
}

package service

import (
	"time"

	"buddy-mind/internal/domain"
)

// Pesos de la mezcla bayesiana aproximada. La fórmula es un promedio
// ponderado ad hoc, no un posterior bayesiano de libro: se conserva tal
// cual porque los valores esperados del sistema derivan de ella.
const (
	evidenceWeightPerQuote = 0.1
	evidenceWeightCap      = 0.5
	priorWeightPerSession  = 0.1
	confidenceGain         = 0.1
	summaryMaxLen          = 500
)

// applyEvidence muta el perfil con la evidencia de una sesión: actualiza
// score y confianza por eje, incrementa el contador de sesiones y agrega
// la entrada al log de evidencia (FIFO, tope EvidenceLogCap).
//
// Nunca falla: un eje sin evidencia queda intacto (peso cero).
func applyEvidence(p *domain.PersonalityProfile, ev domain.SessionEvidence, sessionSummary string, now time.Time) {
	for _, d := range domain.Dimensions {
		dimEv := ev.ByDimension(d)
		if dimEv == nil {
			continue
		}
		score := dimEv.Score

		// Más citas de soporte ⇒ más influencia, con tope para que una
		// sola sesión no arrastre el perfil.
		evidenceWeight := float64(dimEv.Strength()) * evidenceWeightPerQuote
		if evidenceWeight > evidenceWeightCap {
			evidenceWeight = evidenceWeightCap
		}

		// La confianza acumulada domina a medida que crece el historial.
		priorWeight := p.Confidences[d] * float64(p.SessionsAnalyzed) * priorWeightPerSession
		totalWeight := priorWeight + evidenceWeight

		if totalWeight > 0 {
			p.Scores[d] = (p.Scores[d]*priorWeight + score*evidenceWeight) / totalWeight
			p.Confidences[d] = min(p.Confidences[d]+evidenceWeight*confidenceGain, 1.0)
		}

		p.Scores[d] = clamp01(p.Scores[d])
	}

	p.SessionsAnalyzed++
	appendEvidence(p, ev, sessionSummary, now)
	p.OverallConfidence = overallConfidence(p)
	p.UpdatedAt = now
}

func appendEvidence(p *domain.PersonalityProfile, ev domain.SessionEvidence, sessionSummary string, now time.Time) {
	if len(sessionSummary) > summaryMaxLen {
		sessionSummary = sessionSummary[:summaryMaxLen]
	}
	p.EvidenceLog = append(p.EvidenceLog, domain.EvidenceEntry{
		Timestamp:      now,
		SessionSummary: sessionSummary,
		Evidence:       ev,
	})
	if len(p.EvidenceLog) > domain.EvidenceLogCap {
		p.EvidenceLog = p.EvidenceLog[len(p.EvidenceLog)-domain.EvidenceLogCap:]
	}
}

// overallConfidence combina la confianza promedio por eje con una rampa
// por sesiones: una sola dimensión confiable no implica certeza global, y
// la rampa llega a peso completo recién a las 10 sesiones.
func overallConfidence(p *domain.PersonalityProfile) float64 {
	var sum float64
	for _, d := range domain.Dimensions {
		sum += p.Confidences[d]
	}
	avg := sum / float64(domain.DimensionCount)

	sessionMultiplier := min(float64(p.SessionsAnalyzed)/10.0, 1.0)
	return min(avg*sessionMultiplier, 1.0)
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

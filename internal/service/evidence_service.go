package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"buddy-mind/internal/domain"
	"buddy-mind/internal/llm"
)

const evidencePromptTemplate = `Analyze this conversation for MBTI personality indicators. Extract evidence for each dimension:

EXTROVERSION vs INTROVERSION:
- Energy source (social vs solitary)
- Communication style (outward vs inward focused)
- Processing style (external vs internal)

SENSING vs INTUITION:
- Information preference (concrete vs abstract)
- Focus (present/practical vs future/possibilities)
- Details vs big picture

THINKING vs FEELING:
- Decision making (logic vs values)
- Conflict approach (objective vs personal)
- Priorities (efficiency vs harmony)

JUDGING vs PERCEIVING:
- Structure preference (planned vs flexible)
- Decision timing (decisive vs exploratory)
- Lifestyle (organized vs adaptable)

Conversation:
%s

Summary:
%s

Return JSON with evidence quotes and scores (0-1) per dimension:
{
  "extroversion": {"evidence": ["quote1", "quote2"], "score": 0.7},
  "sensing": {"evidence": ["quote1", "quote2"], "score": 0.3},
  "thinking": {"evidence": ["quote1", "quote2"], "score": 0.8},
  "judging": {"evidence": ["quote1", "quote2"], "score": 0.6}
}
Omit a dimension entirely if the conversation shows no signal for it. Return only valid JSON.`

// EvidenceExtractor produce la evidencia MBTI de una sesión. Es el
// colaborador externo de comprensión de lenguaje: el core solo consume
// su salida ya estructurada.
type EvidenceExtractor interface {
	Extract(ctx context.Context, transcript []domain.TranscriptLine, summary string) (domain.SessionEvidence, error)
}

// LLMEvidenceExtractor implementa EvidenceExtractor con un LLM analista.
type LLMEvidenceExtractor struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewLLMEvidenceExtractor(llmClient llm.LLMClient, logger *zap.Logger) *LLMEvidenceExtractor {
	return &LLMEvidenceExtractor{llmClient: llmClient, logger: logger}
}

// Extract corre el prompt analista y normaliza la salida en la frontera:
// scores fuera de [0,1] se recortan y los ejes ausentes quedan en nil.
// Cualquier fallo del LLM o del parseo se reporta como
// domain.ErrEvidenceUnavailable.
func (e *LLMEvidenceExtractor) Extract(ctx context.Context, transcript []domain.TranscriptLine, summary string) (domain.SessionEvidence, error) {
	prompt := fmt.Sprintf(evidencePromptTemplate, formatTranscript(transcript), strings.TrimSpace(summary))

	rawResp, err := e.llmClient.Generate(ctx, prompt)
	if err != nil {
		return domain.SessionEvidence{}, fmt.Errorf("%w: llm generate: %v", domain.ErrEvidenceUnavailable, err)
	}

	cleaned := cleanLLMJSONResponse(rawResp)
	if obj := extractFirstJSONObject(cleaned); obj != "" {
		cleaned = obj
	}

	var ev domain.SessionEvidence
	if err := json.Unmarshal([]byte(cleaned), &ev); err != nil {
		e.logger.Warn("evidence response not parseable", zap.Error(err))
		return domain.SessionEvidence{}, fmt.Errorf("%w: parse evidence: %v", domain.ErrEvidenceUnavailable, err)
	}

	for _, d := range domain.Dimensions {
		if dimEv := ev.ByDimension(d); dimEv != nil {
			dimEv.Score = clamp01(dimEv.Score)
		}
	}
	return ev, nil
}

func formatTranscript(transcript []domain.TranscriptLine) string {
	lines := make([]string, 0, len(transcript))
	for _, line := range transcript {
		speaker := strings.TrimSpace(line.Speaker)
		if speaker == "" {
			speaker = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, strings.TrimSpace(line.Content)))
	}
	return strings.Join(lines, "\n")
}

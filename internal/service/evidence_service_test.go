package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"buddy-mind/internal/domain"
	"buddy-mind/internal/llm"
)

var sampleTranscript = []domain.TranscriptLine{
	{Speaker: "User", Content: "I spent the whole weekend at parties and loved it"},
	{Speaker: "Buddy", Content: "Sounds energizing!"},
}

func TestExtractParsesPlainJSON(t *testing.T) {
	mock := &llm.MockClient{Response: `{"extroversion": {"evidence": ["loved the parties"], "score": 0.8}}`}
	extractor := NewLLMEvidenceExtractor(mock, zap.NewNop())

	ev, err := extractor.Extract(context.Background(), sampleTranscript, "weekend recap")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dimEv := ev.ByDimension(domain.DimExtroversion)
	if dimEv == nil {
		t.Fatal("expected extroversion evidence")
	}
	if dimEv.Score != 0.8 || dimEv.Strength() != 1 {
		t.Fatalf("unexpected evidence: score=%v strength=%d", dimEv.Score, dimEv.Strength())
	}
	if ev.ByDimension(domain.DimSensing) != nil {
		t.Fatal("expected absent sensing axis to stay nil")
	}
}

func TestExtractStripsMarkdownFences(t *testing.T) {
	mock := &llm.MockClient{Response: "```json\n{\"thinking\": {\"evidence\": [\"q1\", \"q2\"], \"score\": 0.6}}\n```"}
	extractor := NewLLMEvidenceExtractor(mock, zap.NewNop())

	ev, err := extractor.Extract(context.Background(), sampleTranscript, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dimEv := ev.ByDimension(domain.DimThinking)
	if dimEv == nil || dimEv.Score != 0.6 || dimEv.Strength() != 2 {
		t.Fatalf("unexpected evidence: %+v", dimEv)
	}
}

func TestExtractRecoversObjectFromChatter(t *testing.T) {
	mock := &llm.MockClient{Response: `Here is the analysis you asked for:
{"judging": {"evidence": ["planned every step"], "score": 0.9}}
Let me know if you need more.`}
	extractor := NewLLMEvidenceExtractor(mock, zap.NewNop())

	ev, err := extractor.Extract(context.Background(), sampleTranscript, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dimEv := ev.ByDimension(domain.DimJudging); dimEv == nil || dimEv.Score != 0.9 {
		t.Fatalf("unexpected evidence: %+v", dimEv)
	}
}

func TestExtractClampsOutOfRangeScores(t *testing.T) {
	mock := &llm.MockClient{Response: `{"sensing": {"evidence": ["detail oriented"], "score": 1.7}, "thinking": {"evidence": ["cold logic"], "score": -0.3}}`}
	extractor := NewLLMEvidenceExtractor(mock, zap.NewNop())

	ev, err := extractor.Extract(context.Background(), sampleTranscript, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ev.ByDimension(domain.DimSensing).Score; got != 1.0 {
		t.Fatalf("expected sensing clamped to 1.0, got %v", got)
	}
	if got := ev.ByDimension(domain.DimThinking).Score; got != 0.0 {
		t.Fatalf("expected thinking clamped to 0.0, got %v", got)
	}
}

func TestExtractLLMFailureWrapsSentinel(t *testing.T) {
	mock := &llm.MockClient{Err: errors.New("upstream timeout")}
	extractor := NewLLMEvidenceExtractor(mock, zap.NewNop())

	_, err := extractor.Extract(context.Background(), sampleTranscript, "")
	if !errors.Is(err, domain.ErrEvidenceUnavailable) {
		t.Fatalf("expected ErrEvidenceUnavailable, got %v", err)
	}
}

func TestExtractGarbageResponseWrapsSentinel(t *testing.T) {
	mock := &llm.MockClient{Response: "I cannot analyze this conversation."}
	extractor := NewLLMEvidenceExtractor(mock, zap.NewNop())

	_, err := extractor.Extract(context.Background(), sampleTranscript, "")
	if !errors.Is(err, domain.ErrEvidenceUnavailable) {
		t.Fatalf("expected ErrEvidenceUnavailable, got %v", err)
	}
}

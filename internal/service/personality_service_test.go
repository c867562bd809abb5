package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"buddy-mind/internal/domain"
)

type mockProfileRepo struct {
	profiles map[string]domain.PersonalityProfile
	saveErr  error
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[string]domain.PersonalityProfile)}
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (domain.PersonalityProfile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return domain.PersonalityProfile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

func (m *mockProfileRepo) Upsert(_ context.Context, p domain.PersonalityProfile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.profiles[p.UserID] = p
	return nil
}

func (m *mockProfileRepo) Delete(_ context.Context, userID string) error {
	if _, ok := m.profiles[userID]; !ok {
		return domain.ErrProfileNotFound
	}
	delete(m.profiles, userID)
	return nil
}

type stubExtractor struct {
	evidence domain.SessionEvidence
	err      error
	calls    int
}

func (s *stubExtractor) Extract(_ context.Context, _ []domain.TranscriptLine, _ string) (domain.SessionEvidence, error) {
	s.calls++
	if s.err != nil {
		return domain.SessionEvidence{}, s.err
	}
	return s.evidence, nil
}

func TestProcessSessionCreatesProfileForNewUser(t *testing.T) {
	repo := newMockProfileRepo()
	extractor := &stubExtractor{evidence: evidenceFor(domain.DimExtroversion, 0.8, 3)}
	svc := NewPersonalityService(extractor, repo, nil, zap.NewNop())

	snap, err := svc.ProcessSession(context.Background(), "u1", sampleTranscript, "charla social")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(snap.Scores.Extroversion, 0.8) {
		t.Fatalf("expected extroversion 0.8, got %v", snap.Scores.Extroversion)
	}
	if snap.SessionsAnalyzed != 1 {
		t.Fatalf("expected 1 session analyzed, got %d", snap.SessionsAnalyzed)
	}
	if snap.MBTIType != "ENFP" {
		t.Fatalf("expected ENFP (only E decided), got %q", snap.MBTIType)
	}

	stored, ok := repo.profiles["u1"]
	if !ok {
		t.Fatal("expected profile persisted")
	}
	if len(stored.EvidenceLog) != 1 || stored.EvidenceLog[0].SessionSummary != "charla social" {
		t.Fatalf("unexpected evidence log: %+v", stored.EvidenceLog)
	}
}

func TestProcessSessionAccumulatesAcrossSessions(t *testing.T) {
	repo := newMockProfileRepo()
	extractor := &stubExtractor{evidence: evidenceFor(domain.DimJudging, 0.9, 4)}
	svc := NewPersonalityService(extractor, repo, nil, zap.NewNop())

	var last PersonalitySnapshot
	for i := 0; i < 12; i++ {
		snap, err := svc.ProcessSession(context.Background(), "u1", sampleTranscript, "sesion")
		if err != nil {
			t.Fatalf("session %d: unexpected error: %v", i, err)
		}
		if snap.Confidence.Judging < last.Confidence.Judging {
			t.Fatalf("session %d: judging confidence decreased", i)
		}
		last = snap
	}

	if last.SessionsAnalyzed != 12 {
		t.Fatalf("expected 12 sessions, got %d", last.SessionsAnalyzed)
	}
	if last.Scores.Judging <= 0.85 {
		t.Fatalf("expected judging score pulled toward 0.9, got %v", last.Scores.Judging)
	}
	if last.Confidence.Overall <= 0 {
		t.Fatalf("expected positive overall confidence, got %v", last.Confidence.Overall)
	}
}

func TestProcessSessionExtractorFailureLeavesProfileUntouched(t *testing.T) {
	repo := newMockProfileRepo()
	seeded := domain.NewPersonalityProfile("u1", time.Now().UTC())
	seeded.SessionsAnalyzed = 7
	seeded.Scores[domain.DimThinking] = 0.9
	repo.profiles["u1"] = seeded

	extractor := &stubExtractor{err: domain.ErrEvidenceUnavailable}
	svc := NewPersonalityService(extractor, repo, nil, zap.NewNop())

	_, err := svc.ProcessSession(context.Background(), "u1", sampleTranscript, "sesion fallida")
	if !errors.Is(err, domain.ErrEvidenceUnavailable) {
		t.Fatalf("expected ErrEvidenceUnavailable, got %v", err)
	}

	after := repo.profiles["u1"]
	if after.SessionsAnalyzed != 7 {
		t.Fatalf("expected sessions untouched at 7, got %d", after.SessionsAnalyzed)
	}
	if after.Scores[domain.DimThinking] != 0.9 || len(after.EvidenceLog) != 0 {
		t.Fatalf("expected profile untouched, got %+v", after)
	}
}

func TestGetInsightsUnknownUserReturnsNeutralProfile(t *testing.T) {
	repo := newMockProfileRepo()
	svc := NewPersonalityService(&stubExtractor{}, repo, nil, zap.NewNop())

	snap, err := svc.GetInsights(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.MBTIType != "INFP" {
		t.Fatalf("expected neutral INFP, got %q", snap.MBTIType)
	}
	if snap.Scores != (DimensionValues{0.5, 0.5, 0.5, 0.5}) {
		t.Fatalf("expected neutral scores, got %+v", snap.Scores)
	}
	if snap.Confidence.Overall != 0 || snap.SessionsAnalyzed != 0 {
		t.Fatalf("expected zero confidence and sessions, got %+v", snap)
	}
	if len(snap.FacetBars) != int(domain.DimensionCount) {
		t.Fatalf("expected facet bars in full snapshot, got %d", len(snap.FacetBars))
	}
}

func TestGetInsightsLimitsRecentEvidence(t *testing.T) {
	repo := newMockProfileRepo()
	extractor := &stubExtractor{evidence: evidenceFor(domain.DimSensing, 0.3, 2)}
	svc := NewPersonalityService(extractor, repo, nil, zap.NewNop())

	for i := 0; i < 8; i++ {
		if _, err := svc.ProcessSession(context.Background(), "u1", sampleTranscript, "sesion"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	snap, err := svc.GetInsights(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.RecentEvidence) != 5 {
		t.Fatalf("expected 5 recent evidence entries, got %d", len(snap.RecentEvidence))
	}
}

func TestResetDeletesProfile(t *testing.T) {
	repo := newMockProfileRepo()
	repo.profiles["u1"] = domain.NewPersonalityProfile("u1", time.Now().UTC())
	svc := NewPersonalityService(&stubExtractor{}, repo, nil, zap.NewNop())

	if err := svc.Reset(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.profiles["u1"]; ok {
		t.Fatal("expected profile deleted")
	}

	if err := svc.Reset(context.Background(), "u1"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound on second reset, got %v", err)
	}
}

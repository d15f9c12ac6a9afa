package compatibility

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	apperrors "compatibility-workers/internal/common/errors"
	"compatibility-workers/internal/common/logger"
	"compatibility-workers/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockScorer struct {
	mock.Mock
}

func (m *mockScorer) Score(ctx context.Context, req scoring.Request) (*scoring.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*scoring.Response)
	return resp, args.Error(1)
}

// blockingScorer waits for the caller's context like a slow remote would.
type blockingScorer struct{}

func (blockingScorer) Score(ctx context.Context, _ scoring.Request) (*scoring.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type scorerFunc func(ctx context.Context, req scoring.Request) (*scoring.Response, error)

func (f scorerFunc) Score(ctx context.Context, req scoring.Request) (*scoring.Response, error) {
	return f(ctx, req)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestAnalyzer(t *testing.T, scorer Scorer) *Analyzer {
	a := NewAnalyzer(scorer, logger.NewTestLogger(t))
	a.now = func() time.Time { return fixedNow }
	return a
}

func jobResponse() *scoring.Response {
	return &scoring.Response{
		CompatibilityScore: 92.34,
		DetailedScores: map[string]interface{}{
			"skill_match":      90,
			"experience_match": 55,
			"location_match":   85,
			"salary_match":     60,
			"culture_match":    95,
		},
		Recommendation: "RECOMMENDED",
		AnalysisDate:   "2026-03-13T18:00:00Z",
		ScoreSaved:     true,
	}
}

func TestAnalyzer_Analyze_Success(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Score", mock.Anything, scoring.Request{
		CandidateID: "cand-1",
		OfferID:     "offer-9",
		OfferType:   "JOB",
	}).Return(jobResponse(), nil).Once()

	analysis, err := newTestAnalyzer(t, scorer).Analyze(context.Background(), "cand-1", "offer-9", "Emploi")

	require.NoError(t, err)
	scorer.AssertExpectations(t)

	assert.Equal(t, "cand-1", analysis.CandidateID)
	assert.Equal(t, "offer-9", analysis.OfferID)
	assert.Equal(t, OfferKindJob, analysis.OfferKind)
	assert.Equal(t, 92.3, analysis.CompatibilityScore)
	assert.Equal(t, TierExcellent, analysis.Tier.Level)
	assert.Equal(t, Recommend, analysis.RecommendationCategory)
	assert.Equal(t, 0.0, analysis.DetailedScores[KeyEducation])
	assert.Equal(t, 55.0, analysis.DetailedScores[KeyExperience])
	assert.Equal(t, []string{
		"Excellent correspondance des compétences",
		"Localisation parfaitement adaptée",
		"Culture d'entreprise compatible",
	}, analysis.Strengths)
	assert.Equal(t, []string{"Expérience insuffisante pour le poste"}, analysis.Weaknesses)
	assert.Contains(t, analysis.Recommendations, "Acquérir plus d'expérience dans le domaine")
	assert.Equal(t, "RECOMMENDED", analysis.ServiceRecommendation)
	assert.Equal(t, time.Date(2026, 3, 13, 18, 0, 0, 0, time.UTC), analysis.AnalysisDate)
	assert.True(t, analysis.ScoreSaved)
}

func TestAnalyzer_Analyze_MissingDateUsesClock(t *testing.T) {
	resp := jobResponse()
	resp.AnalysisDate = ""
	resp.CompatibilityScore = nil

	scorer := new(mockScorer)
	scorer.On("Score", mock.Anything, mock.Anything).Return(resp, nil)

	analysis, err := newTestAnalyzer(t, scorer).Analyze(context.Background(), "c", "o", "job")

	require.NoError(t, err)
	assert.Equal(t, fixedNow, analysis.AnalysisDate)
	assert.Equal(t, 0.0, analysis.CompatibilityScore)
	assert.Equal(t, TierVeryWeak, analysis.Tier.Level)
	assert.Equal(t, NotRecommend, analysis.RecommendationCategory)
}

func TestAnalyzer_Analyze_InvalidOfferTypeMakesNoCall(t *testing.T) {
	scorer := new(mockScorer)

	analysis, err := newTestAnalyzer(t, scorer).Analyze(context.Background(), "c", "o", "xyz")

	assert.Nil(t, analysis)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidOfferType))
	scorer.AssertNotCalled(t, "Score", mock.Anything, mock.Anything)
}

func TestAnalyzer_Analyze_ScholarshipScoredAsFunding(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Score", mock.Anything, mock.MatchedBy(func(req scoring.Request) bool {
		return req.OfferType == "FUNDING"
	})).Return(&scoring.Response{
		CompatibilityScore: 64.96,
		DetailedScores: map[string]interface{}{
			"business_plan_match":     80,
			"financial_profile_match": 66,
			"guarantees_match":        40,
			"profitability_match":     70,
			"risk_assessment":         59.99,
		},
	}, nil)

	analysis, err := newTestAnalyzer(t, scorer).Analyze(context.Background(), "c", "o", "bourse")

	require.NoError(t, err)
	assert.Equal(t, OfferKindFunding, analysis.OfferKind)
	assert.Equal(t, 65.0, analysis.CompatibilityScore)
	assert.Equal(t, TierAverage, analysis.Tier.Level)
	assert.Equal(t, Consider, analysis.RecommendationCategory)
	assert.Equal(t, []string{"Business plan solide et cohérent"}, analysis.Strengths)
	assert.Equal(t, []string{"Garanties insuffisantes"}, analysis.Weaknesses)
}

func TestAnalyzer_Analyze_PropagatesTaxonomyErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code apperrors.ErrorCode
	}{
		{"validation", apperrors.NewValidationError("offer_type invalid"), apperrors.ErrCodeValidation},
		{"authorization", apperrors.NewAuthorizationError("forbidden"), apperrors.ErrCodeAuthorization},
		{"authentication", apperrors.NewAuthenticationError("expired"), apperrors.ErrCodeAuthentication},
		{"not found", apperrors.NewNotFoundError("candidate", "c"), apperrors.ErrCodeNotFound},
		{"unavailable", apperrors.NewServiceUnavailableError("scoring", 503, nil), apperrors.ErrCodeServiceUnavailable},
		{"plain transport error", errors.New("connection refused"), apperrors.ErrCodeServiceUnavailable},
		{"wrapped deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), apperrors.ErrCodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := new(mockScorer)
			scorer.On("Score", mock.Anything, mock.Anything).Return(nil, tt.err)

			analysis, err := newTestAnalyzer(t, scorer).Analyze(context.Background(), "c", "o", "consultation")

			assert.Nil(t, analysis)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}
}

func TestAnalyzer_Analyze_DeadlineBecomesTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	analysis, err := newTestAnalyzer(t, blockingScorer{}).Analyze(ctx, "c", "o", "job")

	assert.Nil(t, analysis)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeTimeout, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, apperrors.HintTryAgainShortly, stdErr.Hint())
}

func TestAnalyzer_Analyze_CancellationIsNotTranslated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	analysis, err := newTestAnalyzer(t, blockingScorer{}).Analyze(ctx, "c", "o", "job")

	assert.Nil(t, analysis)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, apperrors.CodeOf(err))
}

func TestAnalyzer_Analyze_ResultDroppedWhenCancelledAfterResponse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	scorer := scorerFunc(func(context.Context, scoring.Request) (*scoring.Response, error) {
		cancel()
		return jobResponse(), nil
	})

	analysis, err := newTestAnalyzer(t, scorer).Analyze(ctx, "c", "o", "job")

	assert.Nil(t, analysis)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzer_Analyze_NilResponse(t *testing.T) {
	scorer := new(mockScorer)
	scorer.On("Score", mock.Anything, mock.Anything).Return(nil, nil)

	analysis, err := newTestAnalyzer(t, scorer).Analyze(context.Background(), "c", "o", "job")

	assert.Nil(t, analysis)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable))
}

func TestAnalyzer_Analyze_ConcurrentPairsAreIndependent(t *testing.T) {
	scorer := scorerFunc(func(_ context.Context, req scoring.Request) (*scoring.Response, error) {
		var score float64
		fmt.Sscanf(req.OfferID, "offer-%f", &score)
		return &scoring.Response{CompatibilityScore: score}, nil
	})
	analyzer := newTestAnalyzer(t, scorer)

	var wg sync.WaitGroup
	results := make([]*Analysis, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := analyzer.Analyze(context.Background(), "cand", fmt.Sprintf("offer-%d", i*2), "job")
			assert.NoError(t, err)
			results[i] = a
		}(i)
	}
	wg.Wait()

	for i, a := range results {
		require.NotNil(t, a)
		assert.Equal(t, float64(i*2), a.CompatibilityScore)
		assert.Equal(t, ClassifyTier(float64(i*2)), a.Tier)
	}
}

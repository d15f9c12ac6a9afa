package compatibility

import (
	"context"
	"errors"
	"time"

	apperrors "compatibility-workers/internal/common/errors"
	"compatibility-workers/internal/common/logger"
	"compatibility-workers/internal/common/metrics"
	"compatibility-workers/internal/scoring"
)

const scoringServiceName = "scoring"

// Scorer is the external AI scoring service.
type Scorer interface {
	Score(ctx context.Context, req scoring.Request) (*scoring.Response, error)
}

// Analyzer turns one scoring call into a classified, human-readable analysis.
// It keeps no state between calls and is safe for concurrent use.
type Analyzer struct {
	scorer Scorer
	logger logger.Logger
	now    func() time.Time
}

func NewAnalyzer(scorer Scorer, log logger.Logger) *Analyzer {
	return &Analyzer{
		scorer: scorer,
		logger: log.WithFields(map[string]interface{}{"component": "compatibility-analyzer"}),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Analyze normalizes the offer type, calls the scoring service once and assembles the
// analysis. The caller owns the deadline and cancellation through ctx: a deadline
// surfaces as TIMEOUT, a cancellation is returned as context.Canceled so the result
// can be dropped. No partial analysis is returned with an error.
func (a *Analyzer) Analyze(ctx context.Context, candidateID, offerID, offerTypeAlias string) (*Analysis, error) {
	kind, err := NormalizeOfferType(offerTypeAlias)
	if err != nil {
		a.recordFailure(err)
		return nil, err
	}

	start := time.Now()
	resp, err := a.scorer.Score(ctx, scoring.Request{
		CandidateID: candidateID,
		OfferID:     offerID,
		OfferType:   kind.String(),
	})
	metrics.CompatibilityAnalysisDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())

	if err == nil && errors.Is(ctx.Err(), context.Canceled) {
		err = ctx.Err()
	}
	if err == nil && resp == nil {
		err = errors.New("empty scoring response")
	}
	if err != nil {
		err = translateScoringError(ctx, err)
		a.recordFailure(err)
		a.logger.Warn("compatibility analysis failed", map[string]interface{}{
			"candidateId": candidateID,
			"offerId":     offerID,
			"offerKind":   kind,
			"errorCode":   apperrors.CodeOf(err),
			"error":       err.Error(),
		})
		return nil, err
	}

	analysis := a.assemble(candidateID, offerID, kind, resp)

	metrics.CompatibilityAnalyses.WithLabelValues(kind.String(), string(analysis.Tier.Level)).Inc()
	a.logger.Info("compatibility analysis completed", map[string]interface{}{
		"candidateId": candidateID,
		"offerId":     offerID,
		"offerKind":   kind,
		"score":       analysis.CompatibilityScore,
		"tier":        analysis.Tier.Level,
		"scoreSaved":  analysis.ScoreSaved,
	})

	return analysis, nil
}

func (a *Analyzer) assemble(candidateID, offerID string, kind OfferKind, resp *scoring.Response) *Analysis {
	score := FormatValue(resp.CompatibilityScore)
	detailed := MapDetailedScores(kind, resp.DetailedScores)
	tier := ClassifyTier(score)
	assessment := GenerateAssessment(kind, detailed)

	analysisDate, ok := resp.ParsedAnalysisDate()
	if !ok {
		analysisDate = a.now()
	}

	return &Analysis{
		CandidateID:            candidateID,
		OfferID:                offerID,
		OfferKind:              kind,
		CompatibilityScore:     score,
		DetailedScores:         detailed,
		Tier:                   tier,
		RecommendationCategory: tier.RecommendationCategory,
		Strengths:              assessment.Strengths,
		Weaknesses:             assessment.Weaknesses,
		Recommendations:        assessment.Recommendations,
		ServiceRecommendation:  resp.Recommendation,
		AnalysisDate:           analysisDate,
		ScoreSaved:             resp.ScoreSaved,
	}
}

// translateScoringError keeps taxonomy errors and cancellations as they are and maps
// anything else a Scorer returns onto TIMEOUT or SERVICE_UNAVAILABLE.
func translateScoringError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if _, ok := apperrors.AsStandardError(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperrors.NewTimeoutError(scoringServiceName, err)
	}
	return apperrors.NewServiceUnavailableError(scoringServiceName, 0, err)
}

func (a *Analyzer) recordFailure(err error) {
	code := string(apperrors.CodeOf(err))
	if code == "" {
		code = "CANCELLED"
	}
	metrics.CompatibilityAnalysisFailures.WithLabelValues(code).Inc()
}

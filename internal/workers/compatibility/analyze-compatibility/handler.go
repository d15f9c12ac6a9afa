// internal/workers/compatibility/analyze-compatibility/handler.go
package analyzecompatibility

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "compatibility-workers/internal/common/errors"
	"compatibility-workers/internal/common/logger"
	"compatibility-workers/internal/common/validation"
	"compatibility-workers/internal/compatibility"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-compatibility"
)

var inputValidator = validation.MustCompile(inputSchema)

// Analyzer runs one compatibility analysis.
type Analyzer interface {
	Analyze(ctx context.Context, candidateID, offerID, offerTypeAlias string) (*compatibility.Analysis, error)
}

// OfferDirectory resolves the stored type alias of an offer.
type OfferDirectory interface {
	OfferType(ctx context.Context, offerID string) (string, error)
}

type Handler struct {
	config       *Config
	analyzer     Analyzer
	offers       OfferDirectory
	guard        *InFlightGuard
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the worker. locker may be nil to run without the in-flight guard.
func NewHandler(config *Config, analyzer Analyzer, offers OfferDirectory, locker Locker, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	var guard *InFlightGuard
	if locker != nil {
		guard = NewInFlightGuard(locker, config.Timeout, log)
	}

	return &Handler{
		config:       config,
		analyzer:     analyzer,
		offers:       offers,
		guard:        guard,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

// Handle processes one job and reports the outcome to Zeebe. The returned error is the
// one already reported.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := parseInput(job.Variables)
	if err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.errorHandler.HandleJobError(context.Background(), client, job, err)
		return err
	}

	return h.completeJob(client, job, output)
}

// Execute resolves the offer type when needed and runs the analysis under the pair's
// in-flight lock.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	release, err := h.guard.Acquire(ctx, input.CandidateID, input.OfferID)
	if err != nil {
		return nil, err
	}
	defer release()

	alias := input.OfferType
	if alias == "" {
		if h.offers == nil {
			return nil, apperrors.NewParseError("offerType is required when no offer directory is configured")
		}
		alias, err = h.offers.OfferType(ctx, input.OfferID)
		if err != nil {
			return nil, err
		}
		h.logger.Debug("offer type resolved", map[string]interface{}{
			"offerId":   input.OfferID,
			"offerType": alias,
		})
	}

	analysis, err := h.analyzer.Analyze(ctx, input.CandidateID, input.OfferID, alias)
	if err != nil {
		return nil, err
	}

	return &Output{Analysis: analysis}, nil
}

func parseInput(variables string) (*Input, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &raw); err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("parse input: %v", err))
	}

	result, err := inputValidator.ValidateDocument(raw)
	if err != nil {
		return nil, apperrors.NewParseError(err.Error())
	}
	if !result.Valid {
		return nil, apperrors.NewParseError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewParseError(fmt.Sprintf("parse input: %v", err))
	}
	input.CandidateID = strings.TrimSpace(input.CandidateID)
	input.OfferID = strings.TrimSpace(input.OfferID)
	input.OfferType = strings.TrimSpace(input.OfferType)

	if input.CandidateID == "" || input.OfferID == "" {
		return nil, apperrors.NewParseError("candidateId and offerId must not be blank")
	}

	return &input, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey": job.Key,
		"score":  output.Analysis.CompatibilityScore,
		"tier":   output.Analysis.Tier.Level,
	})
	return nil
}

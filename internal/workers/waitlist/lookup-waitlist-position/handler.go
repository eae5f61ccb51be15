package lookupwaitlistposition

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"hostelverse-workers/internal/common/camunda"
	"hostelverse-workers/internal/common/errors"
	"hostelverse-workers/internal/common/logger"
	"hostelverse-workers/internal/common/metrics"
	"hostelverse-workers/internal/common/observability"
	"hostelverse-workers/internal/common/validation"
	"hostelverse-workers/internal/waitlist"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const TaskType = "lookup-waitlist-position"

type PositionService interface {
	ApplicantPosition(ctx context.Context, hostelID, userID string) (*waitlist.Position, error)
}

type HandlerOptions struct {
	Config        *Config
	Query         PositionService
	Validator     *validation.Validator
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config    *Config
	query     PositionService
	validator *validation.Validator
	obs       *observability.Observability
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Query == nil {
		return nil, fmt.Errorf("%s: position service is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"worker": TaskType})

	return &Handler{
		config:    cfg,
		query:     opts.Query,
		validator: opts.Validator,
		obs:       opts.Observability,
		errors:    errors.NewErrorHandler(log, cfg.MaxRetries),
		logger:    log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	ctx, span := h.obs.StartSpan(ctx, TaskType, attribute.Int64("job.key", job.GetKey()))
	defer span.End()

	input, err := h.parseInput(job)
	var output *Output
	if err == nil {
		span.SetAttributes(
			attribute.String("hostel.id", input.HostelID),
			attribute.String("user.id", input.UserID),
		)
		output, err = h.Execute(ctx, input)
	}
	if err != nil {
		stdErr := errors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		span.RecordError(stdErr)
		span.SetStatus(codes.Error, string(stdErr.Code))
		h.obs.RecordJob(ctx, TaskType, "failed", time.Since(startTime))
		h.errors.HandleJobError(context.Background(), client, job, stdErr)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJob(ctx, TaskType, "completed", time.Since(startTime))
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("parse job variables: %v", err))
	}

	result, err := h.validator.ValidateInput(TaskType, variables)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, errors.NewInvalidInputError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("decode job variables: %v", err))
	}
	if input.UserID == "" {
		return nil, errors.NewInvalidInputError("userId is required")
	}
	return &input, nil
}

// Execute looks up the applicant's standing. An applicant missing from the
// ranking completes with waitlisted=false unless FailIfNotWaitlisted is set,
// in which case NOT_WAITLISTED is thrown.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	position, err := h.query.ApplicantPosition(ctx, input.HostelID, input.UserID)
	if stderrors.Is(err, waitlist.ErrNotWaitlisted) && !input.FailIfNotWaitlisted {
		return &Output{HostelID: input.HostelID, UserID: input.UserID}, nil
	}
	if err != nil {
		return nil, errors.FromWaitlist(err, input.HostelID, input.UserID)
	}

	breakdown := position.Applicant.ScoreBreakdown
	return &Output{
		HostelID:       position.HostelID,
		UserID:         position.Applicant.UserID,
		Waitlisted:     true,
		Rank:           position.Applicant.Rank,
		Score:          position.Applicant.Score,
		ScoreBreakdown: &breakdown,
		ApplicantCount: position.ApplicantCount,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(context.Background()); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("Waitlist position resolved", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"hostelId":   output.HostelID,
		"userId":     output.UserID,
		"waitlisted": output.Waitlisted,
		"rank":       output.Rank,
	})
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

// WorkerOptions sizes the job worker from the resolved handler config.
func (h *Handler) WorkerOptions() camunda.WorkerOptions {
	return camunda.WorkerOptions{
		TaskType:      TaskType,
		MaxJobsActive: h.config.MaxJobsActive,
		Timeout:       h.config.Timeout,
	}
}

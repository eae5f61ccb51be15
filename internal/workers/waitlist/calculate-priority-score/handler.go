package calculatepriorityscore

import (
	"context"
	"encoding/json"
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

const TaskType = "calculate-priority-score"

// ProfileSource resolves a single applicant profile.
type ProfileSource interface {
	Profile(ctx context.Context, userID string) (waitlist.ApplicantProfile, error)
}

type HandlerOptions struct {
	Config        *Config
	Profiles      ProfileSource
	Validator     *validation.Validator
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config    *Config
	profiles  ProfileSource
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

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"worker": TaskType})

	return &Handler{
		config:    cfg,
		profiles:  opts.Profiles,
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
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	profile, err := h.resolveProfile(ctx, input)
	if err != nil {
		return nil, err
	}

	breakdown := waitlist.CalculateScore(profile)

	h.logger.Debug("Priority score calculated", map[string]interface{}{
		"userId": profile.UserID,
		"score":  breakdown.Total,
	})

	return &Output{
		UserID:         profile.UserID,
		Score:          breakdown.Total,
		ScoreBreakdown: breakdown,
	}, nil
}

func (h *Handler) resolveProfile(ctx context.Context, input *Input) (waitlist.ApplicantProfile, error) {
	if input.Profile != nil {
		profile := *input.Profile
		if input.UserID != "" {
			profile.UserID = input.UserID
		}
		return profile, nil
	}

	if input.UserID == "" {
		return waitlist.ApplicantProfile{}, errors.NewInvalidInputError("userId or profile is required")
	}
	if h.profiles == nil {
		return waitlist.ApplicantProfile{}, errors.NewInternalError(fmt.Errorf("no profile source configured"))
	}

	profile, err := h.profiles.Profile(ctx, input.UserID)
	if err != nil {
		return waitlist.ApplicantProfile{}, errors.FromWaitlist(err, "", input.UserID)
	}
	return profile, nil
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

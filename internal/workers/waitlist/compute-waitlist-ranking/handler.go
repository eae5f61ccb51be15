package computewaitlistranking

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

const TaskType = "compute-waitlist-ranking"

// RankingService is the part of *waitlist.Query this worker drives.
type RankingService interface {
	ComputeWaitlistRanking(ctx context.Context, hostelID string) (waitlist.Ranking, error)
	Publish(ctx context.Context, snapshot waitlist.Snapshot) error
}

type HandlerOptions struct {
	Config        *Config
	Query         RankingService
	Validator     *validation.Validator
	Observability *observability.Observability
	Logger        logger.Logger
}

type Handler struct {
	config    *Config
	query     RankingService
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
		return nil, fmt.Errorf("%s: ranking service is required", TaskType)
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

	ctx, span := h.obs.StartSpan(ctx, TaskType,
		attribute.Int64("job.key", job.GetKey()),
		attribute.Int64("process.instance.key", job.GetProcessInstanceKey()),
	)
	defer span.End()

	h.logger.Info("Processing waitlist ranking request", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	var output *Output
	if err == nil {
		span.SetAttributes(attribute.String("hostel.id", input.HostelID))
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
	return &input, nil
}

// Execute computes the ranking for input.HostelID. With Publish set the
// snapshot is handed to the configured sinks; a sink failure is logged and
// does not fail the job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ranking, err := h.query.ComputeWaitlistRanking(ctx, input.HostelID)
	if err != nil {
		return nil, errors.FromWaitlist(err, input.HostelID, "")
	}

	snapshot := waitlist.NewSnapshot(input.HostelID, ranking)
	if input.Publish {
		if err := h.query.Publish(ctx, snapshot); err != nil {
			h.logger.Warn("Ranking computed but not fully published", map[string]interface{}{
				"hostelId":  input.HostelID,
				"rankingId": snapshot.RankingID,
				"error":     err.Error(),
			})
		}
	}

	return outputFromSnapshot(snapshot), nil
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

	h.logger.Info("Waitlist ranking completed", map[string]interface{}{
		"jobKey":         job.GetKey(),
		"hostelId":       output.HostelID,
		"rankingId":      output.RankingID,
		"applicantCount": output.ApplicantCount,
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

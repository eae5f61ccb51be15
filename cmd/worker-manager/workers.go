package main

import (
	"fmt"

	"hostelverse-workers/internal/common/camunda"
	"hostelverse-workers/internal/common/config"
	"hostelverse-workers/internal/common/logger"
	"hostelverse-workers/internal/common/observability"
	"hostelverse-workers/internal/common/validation"
	"hostelverse-workers/internal/waitlist"

	cps "hostelverse-workers/internal/workers/waitlist/calculate-priority-score"
	cwr "hostelverse-workers/internal/workers/waitlist/compute-waitlist-ranking"
	lwp "hostelverse-workers/internal/workers/waitlist/lookup-waitlist-position"
)

// waitlistHandler is what startWorkers needs from each worker package.
type waitlistHandler interface {
	camunda.JobHandler
	GetTaskType() string
	IsEnabled() bool
	WorkerOptions() camunda.WorkerOptions
}

func newHandlers(
	cfg *config.Config,
	query *waitlist.Query,
	validator *validation.Validator,
	obs *observability.Observability,
	log logger.Logger,
) ([]waitlistHandler, error) {
	compute, err := cwr.NewHandler(cwr.HandlerOptions{
		Config:        cwr.ConfigFromAppConfig(cfg),
		Query:         query,
		Validator:     validator,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}
	score, err := cps.NewHandler(cps.HandlerOptions{
		Config:        cps.ConfigFromAppConfig(cfg),
		Profiles:      query,
		Validator:     validator,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}
	position, err := lwp.NewHandler(lwp.HandlerOptions{
		Config:        lwp.ConfigFromAppConfig(cfg),
		Query:         query,
		Validator:     validator,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}

	return []waitlistHandler{compute, score, position}, nil
}

// startWorkers opens a job worker for every enabled waitlist task type.
func startWorkers(
	cfg *config.Config,
	client *camunda.Client,
	query *waitlist.Query,
	validator *validation.Validator,
	obs *observability.Observability,
	log logger.Logger,
) ([]*camunda.CamundaWorker, error) {
	handlers, err := newHandlers(cfg, query, validator, obs, log)
	if err != nil {
		return nil, err
	}

	var workers []*camunda.CamundaWorker
	for _, h := range handlers {
		if !h.IsEnabled() {
			log.Info("worker disabled", map[string]interface{}{"taskType": h.GetTaskType()})
			continue
		}
		workers = append(workers, camunda.NewWorker(client.GetClient(), h.WorkerOptions(), h, log))
	}

	if len(workers) == 0 {
		return nil, fmt.Errorf("no workers enabled")
	}
	log.Info("Waitlist workers registered", map[string]interface{}{"count": len(workers)})
	return workers, nil
}

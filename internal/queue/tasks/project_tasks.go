package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/metrics"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/services"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/logger"
)

// ProjectWorkflow is the part of services.ProposalService the worker drives.
type ProjectWorkflow interface {
	GenerateHabilitacaoChecklist(ctx context.Context, projectID uuid.UUID) ([]models.HabilitacaoDocument, error)
	RecomputeAggregate(ctx context.Context, projectID uuid.UUID) (*services.AggregateResult, error)
}

// ProjectTaskHandler handles project-scoped background tasks.
type ProjectTaskHandler struct {
	workflow ProjectWorkflow
}

func NewProjectTaskHandler(workflow ProjectWorkflow) *ProjectTaskHandler {
	return &ProjectTaskHandler{workflow: workflow}
}

// Register mounts every handler on mux.
func (h *ProjectTaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(services.TypeHabilitacaoGenerate, h.HandleGenerateChecklist)
	mux.HandleFunc(services.TypeRecomputeAggregate, h.HandleRecomputeAggregate)
}

func (h *ProjectTaskHandler) HandleGenerateChecklist(ctx context.Context, t *asynq.Task) error {
	id, err := parseProjectPayload(t)
	if err != nil {
		return h.done(t, err)
	}
	logger.L().Info("handling checklist task", zap.String("project_id", id.String()))

	docs, err := h.workflow.GenerateHabilitacaoChecklist(ctx, id)
	if err != nil {
		logger.L().Error("generate checklist failed", zap.String("project_id", id.String()), zap.Error(err))
		return h.done(t, err)
	}

	logger.L().Info("checklist task finished", zap.String("project_id", id.String()), zap.Int("documents", len(docs)))
	return h.done(t, nil)
}

func (h *ProjectTaskHandler) HandleRecomputeAggregate(ctx context.Context, t *asynq.Task) error {
	id, err := parseProjectPayload(t)
	if err != nil {
		return h.done(t, err)
	}
	logger.L().Info("handling recompute aggregate task", zap.String("project_id", id.String()))

	res, err := h.workflow.RecomputeAggregate(ctx, id)
	if err != nil {
		logger.L().Error("recompute aggregate failed", zap.String("project_id", id.String()), zap.Error(err))
		return h.done(t, err)
	}

	logger.L().Info("recompute aggregate task finished",
		zap.String("project_id", id.String()),
		zap.String("status", string(res.Status)),
		zap.Bool("changed", res.Changed))
	return h.done(t, nil)
}

// done records the outcome and marks errors that retrying cannot fix.
func (h *ProjectTaskHandler) done(t *asynq.Task, err error) error {
	if err == nil {
		metrics.TasksProcessed.WithLabelValues(t.Type(), "ok").Inc()
		return nil
	}
	if permanent(err) {
		metrics.TasksProcessed.WithLabelValues(t.Type(), "skipped").Inc()
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	metrics.TasksProcessed.WithLabelValues(t.Type(), "retry").Inc()
	return err
}

func permanent(err error) bool {
	switch appErr.CodeOf(err) {
	case appErr.CodeInvalid, appErr.CodeNotFound, appErr.CodeNotEligibleForHabilitacao, appErr.CodeInvalidTransition:
		return true
	default:
		return false
	}
}

func parseProjectPayload(t *asynq.Task) (uuid.UUID, error) {
	var p services.ProjectTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid project task payload", zap.String("task", t.Type()), zap.Error(err))
		return uuid.Nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid task payload")
	}
	id, err := uuid.Parse(p.ProjectID)
	if err != nil {
		logger.L().Error("invalid project id in task", zap.String("task", t.Type()), zap.Error(err))
		return uuid.Nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid project id")
	}
	return id, nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/logger"
)

// Background task types handled by cmd/worker.
const (
	TypeHabilitacaoGenerate = "habilitacao:generate"
	TypeRecomputeAggregate  = "project:recompute-aggregate"
)

// ProjectTaskPayload is the payload of every project-scoped task.
type ProjectTaskPayload struct {
	ProjectID string `json:"project_id"`
}

// TaskEnqueuer is the subset of *asynq.Client the services use.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

func (a Actor) requireRole(roles ...models.Role) error {
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return appErr.New(appErr.CodeForbidden, "operation not allowed for role "+string(a.Role))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct tags on v and maps failures to an invalid error
// listing the offending fields.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErr.Wrap(err, appErr.CodeInvalid, "invalid input")
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Namespace()))
	}
	return appErr.New(appErr.CodeInvalid, "invalid input").WithMeta("fields", fields)
}

// enqueue submits task, tolerating a missing client and duplicates of a
// task id that is still pending.
func enqueue(ctx context.Context, q TaskEnqueuer, task *asynq.Task, opts ...asynq.Option) {
	if q == nil {
		logger.L().Warn("asynq client not configured, skipping enqueue", zap.String("task", task.Type()))
		return
	}
	if _, err := q.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			logger.L().Info("task already queued", zap.String("task", task.Type()))
			return
		}
		logger.L().Error("enqueue task failed", zap.String("task", task.Type()), zap.Error(err))
	}
}

func systemClock() time.Time { return time.Now().UTC() }

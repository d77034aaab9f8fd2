package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/api/middleware"
	"github.com/pnab-cultura/engine/internal/api/types"
	"github.com/pnab-cultura/engine/internal/models"
	"github.com/pnab-cultura/engine/internal/services"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/logger"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: string(appErr.CodeInvalid), Message: msg}})
}

// fail writes err with the status its code maps to.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := types.StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeError(w, status, err)
}

func ok(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.APIResponse{Success: true, Data: data})
}

// decode reads a JSON body into dst and runs its validation tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "invalid json")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return appErr.Wrap(err, appErr.CodeInvalid, "invalid request")
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Namespace()))
		}
		return appErr.New(appErr.CodeInvalid, "invalid request").WithMeta("fields", fields)
	}
	return nil
}

// actor builds the caller identity set by the auth middleware.
func actor(r *http.Request) (services.Actor, error) {
	uid, err := uuid.Parse(middleware.GetUserID(r.Context()))
	if err != nil {
		return services.Actor{}, appErr.New(appErr.CodeUnauthorized, "missing user identity")
	}
	return services.Actor{UserID: uid, Role: middleware.GetRole(r.Context())}, nil
}

func idParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, appErr.Newf(appErr.CodeInvalid, "invalid %s", name)
	}
	return id, nil
}

func optionalUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, appErr.New(appErr.CodeInvalid, "invalid uuid").WithMeta("value", s)
	}
	return id, nil
}

func pagination(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}

// userView hides the password hash and soft-delete bookkeeping.
func userView(u *models.User) map[string]any {
	return map[string]any{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  u.Role,
	}
}

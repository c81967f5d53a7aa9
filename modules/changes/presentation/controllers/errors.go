package controllers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tablemaster/tablemaster/modules/changes/domain/changerequest"
	"github.com/tablemaster/tablemaster/modules/changes/services"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/httpapi"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
	"github.com/tablemaster/tablemaster/pkg/serrors"
)

const (
	codeInvalidBody       = "INVALID_BODY"
	codeValidation        = "VALIDATION_ERROR"
	codeUnsupportedEntity = "UNSUPPORTED_ENTITY"
	codeForbidden         = "FORBIDDEN"
	codeWriteFailed       = "WRITE_FAILED"
	codeTargetNotFound    = "TARGET_NOT_FOUND"
	codeInternal          = "INTERNAL"
)

// writeServiceError maps workflow errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation  *changerequest.ValidationError
		unsupported *changerequest.UnsupportedEntityError
		fieldErrs   validator.ValidationErrors
		writeErr    *recordstore.WriteError
	)
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		writeCoded(w, r, http.StatusUnauthorized, err)
	case errors.Is(err, services.ErrChangeRequestNotFound), errors.Is(err, services.ErrAccessRequestNotFound):
		writeCoded(w, r, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidStatusTransition):
		writeCoded(w, r, http.StatusConflict, err)
	case errors.Is(err, services.ErrInvalidDecision):
		writeCoded(w, r, http.StatusUnprocessableEntity, err)
	case errors.As(err, &validation), errors.As(err, &fieldErrs):
		_ = httpapi.WriteAPIError(w, r, http.StatusUnprocessableEntity, codeValidation, err.Error())
	case errors.As(err, &unsupported):
		_ = httpapi.WriteAPIError(w, r, http.StatusUnprocessableEntity, codeUnsupportedEntity, err.Error())
	case errors.As(err, &writeErr):
		composables.UseLogger(r.Context()).WithError(err).Error("record store write failed")
		_ = httpapi.WriteAPIError(w, r, http.StatusBadGateway, codeWriteFailed, err.Error())
	case errors.Is(err, recordstore.ErrNotFound):
		_ = httpapi.WriteAPIError(w, r, http.StatusNotFound, codeTargetNotFound, err.Error())
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("changes api: unexpected error")
		_ = httpapi.WriteAPIError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

func writeCoded(w http.ResponseWriter, r *http.Request, status int, err error) {
	var base *serrors.BaseError
	if errors.As(err, &base) {
		_ = httpapi.WriteAPIError(w, r, status, base.Code, base.Message)
		return
	}
	_ = httpapi.WriteAPIError(w, r, status, codeInternal, err.Error())
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		_ = httpapi.WriteAPIError(w, r, http.StatusUnprocessableEntity, codeValidation, err.Error())
		return
	}
	_ = httpapi.WriteAPIError(w, r, http.StatusBadRequest, codeInvalidBody, "invalid json body")
}

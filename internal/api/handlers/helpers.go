package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/api/middleware"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/utils"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/validator"
)

// now is the request clock; tests replace it
var now = func() time.Time { return time.Now().UTC() }

const maxBodyBytes = 64 << 10

// requireUser writes 401 and returns false when the request carries no verified user
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Authentication required"))
		return "", false
	}
	return userID, true
}

// decodeAndValidate decodes a JSON body into dst and runs struct validation
func decodeAndValidate(w http.ResponseWriter, r *http.Request, val *validator.Validator, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return false
	}
	if errs := val.Validate(dst); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return false
	}
	return true
}

// writeServiceError logs err at a level matching its status and writes it
func writeServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error, msg string) {
	entry := log.Ctx(r.Context()).WithError(err)
	if appErr, ok := errors.As(err); ok && appErr.StatusCode < http.StatusInternalServerError {
		entry.Warn(msg)
	} else {
		entry.Error(msg)
	}
	utils.WriteErr(w, err)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/chartapp/chartapp-services/api/middleware"
	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/internal/events"
	"github.com/chartapp/chartapp-services/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	maxBodyBytes = 1 << 20

	internalErrorMessage = "Something went wrong issue with the server"
)

func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}, location ...string) {

	w.Header().Set("Content-Type", "application/json")

	// We don't want to cache API responses so the client receives most curent data
	w.Header().Set("Cache-Control", "max-age=0")

	// Conditionally set the Location header if provided
	if len(location) > 0 && location[0] != "" {
		w.Header().Set("Location", location[0])
	}

	w.WriteHeader(statusCode)

	// 204 responses carry no body
	if response != nil && statusCode != http.StatusNoContent {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
	}
}

// HandleSuccessResponse writes a successful envelope.
func HandleSuccessResponse(w http.ResponseWriter, statusCode int, message string, data any, location ...string) {
	WriteResponse(w, statusCode, models.Response{
		Status:  true,
		Message: message,
		Data:    data,
	}, location...)
}

// HandleErrResponse writes the failure envelope for err with the status code
// its kind maps to. message describes domain failures; internal faults always
// use the generic server message and only expose the raw error when redact is false.
func HandleErrResponse(w http.ResponseWriter, err error, message string, redact bool) {
	statusCode := apperrors.StatusCode(err)
	response := models.Response{Status: false, Message: message}

	var verr *apperrors.ValidationError
	switch {
	case statusCode == http.StatusInternalServerError:
		response.Message = internalErrorMessage
		if !redact {
			response.Error = err.Error()
		}
	case errors.As(err, &verr):
		response.Error = verr.Fields
	default:
		response.Error = err.Error()
	}

	WriteResponse(w, statusCode, response)
}

func (svc *Service) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	logger := zerolog.Ctx(r.Context())
	if apperrors.StatusCode(err) == http.StatusInternalServerError {
		logger.Error().Err(err).Msg(message)
	} else {
		logger.Debug().Err(err).Msg(message)
	}
	HandleErrResponse(w, err, message, svc.redactErrors())
}

// readBody reads a size-limited request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, fmt.Errorf("%w: limit is %d bytes", apperrors.ErrRequestTooLarge, tooLarge.Limit)
	}
	if err != nil {
		return nil, apperrors.NewValidationError("detail", fmt.Sprintf("JSON parse error - %s", err))
	}
	return body, nil
}

// decodeJSON decodes the request body into v. Malformed JSON is a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	return unmarshalBody(body, v)
}

func unmarshalBody(body []byte, v any) error {
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.NewValidationError("detail", fmt.Sprintf("JSON parse error - %s", err))
	}
	return nil
}

// requestActor returns the user resolved by the JWT middleware.
func requestActor(r *http.Request) (*models.User, error) {
	actor, ok := middleware.Actor(r.Context())
	if !ok {
		return nil, fmt.Errorf("missing actor: %w", apperrors.ErrInvalidToken)
	}
	return actor, nil
}

// pathID parses a numeric route variable. A value that is not an id names no
// resource.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s %q: %w", name, mux.Vars(r)[name], apperrors.ErrNotFound)
	}
	return id, nil
}

// notify publishes an audit event. Failures are logged and never fail the request.
func (svc *Service) notify(ctx context.Context, event events.Event) {
	if svc.Events == nil {
		return
	}
	event.Timestamp = time.Now().UTC().Unix()
	if err := svc.Events.Notify(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event", event.Type).Msg("failed to publish audit event")
	}
}

func muxVar(r *http.Request, name string) (string, bool) {
	v, ok := mux.Vars(r)[name]
	return v, ok
}

package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/tollgate-lab/tollgate/internal/api/v1"
	httperr "github.com/tollgate-lab/tollgate/internal/core/errors"
	"github.com/tollgate-lab/tollgate/internal/queue"
)

const (
	msgReadBodyFailed   = "Failed to read request body"
	msgInvalidJSON      = "Invalid JSON body"
	msgPublishFailed    = "Failed to publish usage"
	msgQueueUnavailable = "Usage queue is not accepting messages"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// PublishHandler accepts a usage over HTTP and hands it to the channel.
// Persistence happens asynchronously in the consumer; 202 means queued.
func (s *Service) PublishHandler(c *gin.Context) {
	usage, payloadSize, err := s.parseUsage(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := validateUsage(usage); err != nil {
		writeError(c, err)
		return
	}

	msg, err := s.publishUsage(c.Request.Context(), usage)
	if err != nil {
		writeError(c, err)
		return
	}

	slog.Info("Usage accepted",
		"message_id", msg.ID,
		"plaza", usage.Plaza,
		"city", usage.City,
		"payload_size", payloadSize)

	c.JSON(http.StatusAccepted, gin.H{
		"status":     "accepted",
		"message_id": msg.ID.String(),
	})
}

// parseUsage reads the size-limited body and binds it into a Usage.
func (s *Service) parseUsage(c *gin.Context) (*v1.Usage, int, *ingestionError) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpPayloadTooLargeError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_bytes": maxBytes,
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var usage v1.Usage
	if err := c.ShouldBindJSON(&usage); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	usage.ID = 0
	return &usage, len(bodyBytes), nil
}

// validateUsage gives the producer immediate feedback. The consumer validates again.
func validateUsage(usage *v1.Usage) *ingestionError {
	err := usage.Validate()
	if err == nil {
		return nil
	}

	slog.Warn("Usage validation failed", "error", err, "plaza", usage.Plaza)

	resp := &ingestionError{
		statusCode: http.StatusBadRequest,
		errorType:  httperr.HttpValidationError,
		message:    err.Error(),
	}
	var verr *v1.ValidationError
	if errors.As(err, &verr) {
		resp.details = map[string]interface{}{
			"kind":  verr.Kind,
			"field": verr.Field,
		}
	}
	return resp
}

// publishUsage encodes the usage and publishes it keyed by plaza.
func (s *Service) publishUsage(ctx context.Context, usage *v1.Usage) (queue.Message, *ingestionError) {
	if s.publisher == nil {
		return queue.Message{}, &ingestionError{
			statusCode: http.StatusServiceUnavailable,
			errorType:  httperr.HttpQueueUnavailableError,
			message:    msgQueueUnavailable,
		}
	}

	body, err := json.Marshal(usage)
	if err != nil {
		slog.Error("Failed to encode usage", "error", err)
		return queue.Message{}, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPublishFailed,
		}
	}

	msg, err := s.publisher.Publish(ctx, usage.Plaza, body)
	if err != nil {
		if errors.Is(err, queue.ErrClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("Usage queue unavailable", "error", err)
			return queue.Message{}, &ingestionError{
				statusCode: http.StatusServiceUnavailable,
				errorType:  httperr.HttpQueueUnavailableError,
				message:    msgQueueUnavailable,
			}
		}

		slog.Error("Failed to publish usage", "error", err)
		return queue.Message{}, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPublishFailed,
		}
	}

	return msg, nil
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}

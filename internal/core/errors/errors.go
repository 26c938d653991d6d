package errors

const (
	HttpInternalError         = "internal_error"
	HttpInvalidJsonError      = "invalid_json"
	HttpPayloadTooLargeError  = "payload_too_large"
	HttpValidationError       = "validation_failed"
	HttpInvalidQueryError     = "invalid_query"
	HttpQueueUnavailableError = "queue_unavailable"
	HttpStoreUnavailableError = "store_unavailable"
)

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

package predictapi

import "fmt"

// GenericPredictionMessage is shown when the server gives no usable detail.
const GenericPredictionMessage = "Prediction failed"

// ConnectionError reports that the health endpoint was unreachable or unhealthy.
type ConnectionError struct {
	StatusCode int   // 0 when no response was received
	Err        error // underlying transport or decode error, if any
}

func (e *ConnectionError) Error() string {
	switch {
	case e.Err != nil:
		return "API connection failed: " + e.Err.Error()
	case e.StatusCode != 0:
		return fmt.Sprintf("API connection failed: status %d", e.StatusCode)
	default:
		return "API connection failed"
	}
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// PredictionError reports a failed prediction call. Error returns the
// server-supplied detail when there was one.
type PredictionError struct {
	StatusCode int
	Detail     string
	Err        error
}

func (e *PredictionError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return GenericPredictionMessage
}

func (e *PredictionError) Unwrap() error { return e.Err }

// Package predict implements the HTTP client for the glacier
// segmentation backend.
package predict

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"glacier-annotator/internal/geo"
)

// Request is the JSON body posted to the backend's predict endpoint.
type Request struct {
	Extent  geo.Extent `json:"extent"`
	Classes []string   `json:"classes"`
	Models  string     `json:"models"`
}

// Response is the backend's answer: the echoed extent, an optional
// base64-encoded soft-probability raster, and the vectorized prediction
// geometry.
type Response struct {
	Extent     geo.Extent                 `json:"extent"`
	OutputSoft string                     `json:"output_soft,omitempty"`
	Geometry   *geojson.FeatureCollection `json:"y_geo,omitempty"`
}

// ModelInfo describes a model the backend can serve.
type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ErrorKind classifies prediction failures for user-facing reporting.
type ErrorKind int

const (
	ErrEncode  ErrorKind = iota // request could not be serialized
	ErrNetwork                  // transport-level failure
	ErrStatus                   // backend returned a non-200 status
	ErrDecode                   // response body could not be decoded
)

// String returns a short label for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrEncode:
		return "encode"
	case ErrNetwork:
		return "network"
	case ErrStatus:
		return "status"
	case ErrDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// PredictionError is the typed failure surfaced to the UI instead of a
// silent no-op. Status is set only for ErrStatus.
type PredictionError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *PredictionError) Error() string {
	if e.Kind == ErrStatus {
		return fmt.Sprintf("prediction failed: backend returned status %d", e.Status)
	}
	return fmt.Sprintf("prediction failed (%s): %v", e.Kind, e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

package render

import (
	"errors"
	"fmt"
)

// Kind classifies a render failure.
type Kind string

const (
	// KindInputInvalid is a bad URL, device, mode or point list. Nothing was
	// attempted.
	KindInputInvalid Kind = "InputInvalid"

	// KindProviderExhausted means no screenshot provider succeeded. Renders
	// degrade to a placeholder instead of failing with it.
	KindProviderExhausted Kind = "ProviderExhausted"

	// KindDetectionFailed means no detector produced hotspots.
	KindDetectionFailed Kind = "DetectionFailed"

	// KindRasterFailure is a failure inside accumulate, blur, colorize,
	// composite or encode. It indicates a bug rather than flaky infrastructure.
	KindRasterFailure Kind = "RasterFailure"

	// KindDimensionExtractionFailed means the screenshot bytes could not be
	// decoded.
	KindDimensionExtractionFailed Kind = "DimensionExtractionFailed"
)

// Phase names, used in errors, timings and metrics.
const (
	PhaseValidate   = "validate"
	PhaseScreenshot = "screenshot"
	PhaseDecode     = "decode"
	PhaseSummary    = "summary"
	PhaseDetect     = "detect"
	PhasePoints     = "points"
	PhaseAccumulate = "accumulate"
	PhaseBlur       = "blur"
	PhaseColorize   = "colorize"
	PhaseComposite  = "composite"
	PhaseOutline    = "outline"
	PhaseEncode     = "encode"
)

// Error is a phase-tagged render failure.
type Error struct {
	Kind    Kind   `json:"kind"`
	Phase   string `json:"phase"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s in %s: %s: %v", e.Kind, e.Phase, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s in %s: %s", e.Kind, e.Phase, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a render *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == kind
}

func invalid(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInputInvalid, Phase: PhaseValidate, Message: fmt.Sprintf(format, args...)}
}

func rasterError(phase string, err error) *Error {
	return &Error{Kind: KindRasterFailure, Phase: phase, Message: "raster stage failed", Cause: err}
}

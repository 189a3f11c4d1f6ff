package hotspot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ironsheep/attention-heatmap-mcp/internal/logging"
)

// Fallback tries Primary and, when it fails, Secondary. The result of a
// successful Secondary run is flagged with Meta.Fallback.
type Fallback struct {
	Primary   Detector
	Secondary Detector
	logger    logging.Logger
}

// WithFallback combines two detectors. A nil primary yields secondary alone
// wrapped so callers always see the same type.
func WithFallback(primary, secondary Detector, logger logging.Logger) *Fallback {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Fallback{Primary: primary, Secondary: secondary, logger: logger}
}

// Name reports the primary engine, or the secondary one when there is no
// primary.
func (f *Fallback) Name() string {
	if f.Primary != nil {
		return f.Primary.Name()
	}
	return f.Secondary.Name()
}

// PromptSignature forwards the primary detector's signature, if any.
func (f *Fallback) PromptSignature() string {
	if s, ok := f.Primary.(Signer); ok {
		return s.PromptSignature()
	}
	return ""
}

// Detect runs the primary detector and falls back on any error, including
// a candidate list with nothing left after Sanitize.
func (f *Fallback) Detect(ctx context.Context, pc PageContext) (*Result, error) {
	if f.Primary == nil {
		return f.runSecondary(ctx, pc, nil)
	}

	start := time.Now()
	res, err := f.Primary.Detect(ctx, pc)
	if err == nil && (res == nil || len(res.Hotspots) == 0) {
		err = fmt.Errorf("%w: %s returned no candidates", ErrDetectionFailed, f.Primary.Name())
	}
	if err == nil && len(Sanitize(res.Hotspots, pc.Parity).Kept) == 0 {
		err = fmt.Errorf("%w: %s returned no usable candidates (%d rejected)",
			ErrDetectionFailed, f.Primary.Name(), len(res.Hotspots))
	}
	if err == nil {
		res.Meta.Duration = time.Since(start)
		return res, nil
	}

	f.logger.Warn("primary detector failed, using fallback",
		logging.String("engine", f.Primary.Name()),
		logging.String("fallback", f.Secondary.Name()),
		logging.String("url", pc.URL),
		logging.Err(err))
	return f.runSecondary(ctx, pc, err)
}

func (f *Fallback) runSecondary(ctx context.Context, pc PageContext, cause error) (*Result, error) {
	if f.Secondary == nil {
		if cause == nil {
			cause = errors.New("no detector configured")
		}
		return nil, cause
	}

	start := time.Now()
	res, err := f.Secondary.Detect(ctx, pc)
	if err != nil {
		if cause != nil {
			return nil, fmt.Errorf("fallback %s failed after %v: %w", f.Secondary.Name(), cause, err)
		}
		return nil, err
	}
	res.Meta.Duration = time.Since(start)
	if cause != nil {
		res.Meta.Fallback = true
		res.Meta.FallbackReason = cause.Error()
	}
	return res, nil
}

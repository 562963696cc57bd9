package indicator

import "errors"

// Sentinel errors for indicator sources and graph construction.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrSourceDrained indicates that an indicator source has no further
	// records. It is the normal end-of-stream signal from Source.Next, not
	// a failure.
	//
	// Example:
	//	ind, err := src.Next(ctx)
	//	if errors.Is(err, indicator.ErrSourceDrained) {
	//	    break
	//	}
	ErrSourceDrained = errors.New("indicator source drained")

	// ErrDecode indicates that a raw feed record could not be decoded into
	// an Indicator. The underlying decode error is wrapped for context.
	ErrDecode = errors.New("indicator decode failed")
)

package convert

import "errors"

var (
	// ErrConversion wraps a tagger failure during a conversion call.
	ErrConversion = errors.New("conversion failed")
	// ErrUnknownDict is returned when a request names a dictionary that is not loaded.
	ErrUnknownDict = errors.New("unknown dictionary")
	// ErrBatchSize is returned for an empty batch or one over MaxBatch items.
	ErrBatchSize = errors.New("invalid batch size")
)

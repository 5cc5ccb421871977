package upscale

import "errors"

// Failure taxonomy. Every error returned by this package and its callers wraps
// exactly one of these, so errors.Is identifies the failing stage.
var (
	ErrLoad            = errors.New("failed to load image")
	ErrDecode          = errors.New("failed to decode image")
	ErrModelLoad       = errors.New("failed to load model")
	ErrContextCreation = errors.New("failed to create canvas")
	ErrTileCrop        = errors.New("failed to crop tile")
	ErrInference       = errors.New("model inference failed")
	ErrEncode          = errors.New("failed to encode image")
	ErrPersist         = errors.New("failed to save image")
)

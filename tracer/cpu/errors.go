package cpu

import "errors"

var (
	ErrNoSceneData   = errors.New("cpu tracer: no scene data uploaded")
	ErrNoCameraData  = errors.New("cpu tracer: no camera data uploaded")
	ErrInvalidBlock  = errors.New("cpu tracer: invalid block request")
	ErrTracerBusy    = errors.New("cpu tracer: worker is busy or not running")
	ErrUnknownUpdate = errors.New("cpu tracer: unsupported update")
)

package renderer

import "errors"

var (
	ErrNoTracers          = errors.New("renderer: no tracers attached")
	ErrSceneNotDefined    = errors.New("renderer: no scene defined")
	ErrCameraNotDefined   = errors.New("renderer: no camera defined")
	ErrInterrupted        = errors.New("renderer: interrupted while rendering")
	ErrInvalidFrameSize   = errors.New("renderer: invalid frame size")
	ErrBufferSizeMismatch = errors.New("renderer: buffer size mismatch")
	ErrClosed             = errors.New("renderer: renderer is closed")
)

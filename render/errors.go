package render

import (
	"errors"
	"fmt"
)

// Sentinel errors for the frame executor's recoverable conditions
// (spec section 7 "Device lost / surface out-of-date / suboptimal").
var (
	ErrDeviceLost        = errors.New("render: device lost")
	ErrSurfaceOutOfDate  = errors.New("render: surface out of date")
)

// ErrShaderCompile carries the external compiler's stderr when a
// GLSL→SPIR-V compile fails (spec 6 "SPIR-V — produced by invoking an
// external GLSL→SPIR-V compiler").
type ErrShaderCompile struct {
	Variant string
	Stderr  string
}

func (e *ErrShaderCompile) Error() string {
	return fmt.Sprintf("render: shader compile failed for variant %s: %s", e.Variant, e.Stderr)
}

package ibl

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-pbr/pkg/envmap"
)

// Stage is one step of the pipeline.
type Stage int

const (
	StageLoad Stage = iota
	StageConvert
	StageIrradiance
	StagePrefilter
	StageBRDFLUT

	stageCount = 5
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageConvert:
		return "equirect-to-cube"
	case StageIrradiance:
		return "irradiance"
	case StagePrefilter:
		return "prefilter"
	case StageBRDFLUT:
		return "brdf-lut"
	default:
		return "stage?"
	}
}

// Bundle is the set of lighting textures a shaded draw samples. The
// handles are owned by the Pipeline and stay valid until it is released
// or a stage runs again.
type Bundle struct {
	Irradiance      uint32
	Prefilter       uint32
	BRDFLUT         uint32
	PrefilterLevels int32

	// Generation identifies the pipeline state the bundle was taken from.
	// It changes every time a stage completes.
	Generation uint64
}

// Valid reports whether b was taken from a completed pipeline. The zero
// Bundle is not valid.
func (b Bundle) Valid() bool {
	return b.Generation != 0 && b.Irradiance != 0 && b.Prefilter != 0 && b.BRDFLUT != 0
}

// CaptureViews returns the six face views used by every cube pass.
func CaptureViews() [envmap.FaceCount]mgl32.Mat4 {
	return envmap.CaptureViews()
}

// CaptureProjection returns the 90 degree square projection of the cube
// passes.
func CaptureProjection(near, far float32) mgl32.Mat4 {
	return envmap.CaptureProjection(near, far)
}

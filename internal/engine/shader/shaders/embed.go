// Package shaders provides embedded GLSL shader sources.
package shaders

import (
	_ "embed"
	"fmt"
)

// MaxLights is the length of the light uniform arrays in the PBR program.
const MaxLights = 8

// Source is a vertex/fragment pair and the names the host sets on it.
// Uniforms and Blocks are checked against the linked program at startup.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
	Uniforms []string
	Blocks   []string
}

// CubemapVertexShader renders the unit cube through the capture view and
// projection. It is shared by the three cube capture programs.
//
//go:embed cubemap.vert
var CubemapVertexShader string

// EquirectFragmentShader samples an equirectangular panorama by direction.
//
//go:embed equirect.frag
var EquirectFragmentShader string

// IrradianceFragmentShader convolves the environment over the hemisphere.
//
//go:embed irradiance.frag
var IrradianceFragmentShader string

// PrefilterFragmentShader importance-samples the GGX lobe of uRoughness.
//
//go:embed prefilter.frag
var PrefilterFragmentShader string

// BRDFVertexShader passes the full-screen quad through.
//
//go:embed brdf.vert
var BRDFVertexShader string

// BRDFFragmentShader integrates the split-sum scale and bias.
//
//go:embed brdf.frag
var BRDFFragmentShader string

// BackgroundVertexShader draws the environment behind the scene.
//
//go:embed background.vert
var BackgroundVertexShader string

// BackgroundFragmentShader tone maps the environment.
//
//go:embed background.frag
var BackgroundFragmentShader string

// PBRVertexShader transforms meshes with the CameraMatrices block.
//
//go:embed pbr.vert
var PBRVertexShader string

// PBRFragmentShader shades a metallic-roughness material with point lights
// and image based lighting.
//
//go:embed pbr.frag
var PBRFragmentShader string

var captureUniforms = []string{"uProjection", "uView"}

var (
	Equirect = Source{
		Name:     "equirect",
		Vertex:   CubemapVertexShader,
		Fragment: EquirectFragmentShader,
		Uniforms: append(captureUniforms[:len(captureUniforms):len(captureUniforms)], "uEquirectMap"),
	}
	Irradiance = Source{
		Name:     "irradiance",
		Vertex:   CubemapVertexShader,
		Fragment: IrradianceFragmentShader,
		Uniforms: append(captureUniforms[:len(captureUniforms):len(captureUniforms)], "uEnvironmentMap", "uSampleDelta"),
	}
	Prefilter = Source{
		Name:     "prefilter",
		Vertex:   CubemapVertexShader,
		Fragment: PrefilterFragmentShader,
		Uniforms: append(captureUniforms[:len(captureUniforms):len(captureUniforms)], "uEnvironmentMap", "uRoughness", "uResolution"),
	}
	BRDF = Source{
		Name:     "brdf",
		Vertex:   BRDFVertexShader,
		Fragment: BRDFFragmentShader,
	}
	Background = Source{
		Name:     "background",
		Vertex:   BackgroundVertexShader,
		Fragment: BackgroundFragmentShader,
		Uniforms: append(captureUniforms[:len(captureUniforms):len(captureUniforms)], "uEnvironmentMap", "uLod"),
	}
	PBR = Source{
		Name:     "pbr",
		Vertex:   PBRVertexShader,
		Fragment: PBRFragmentShader,
		Uniforms: append([]string{
			"uModel", "uNormalMatrix",
			"uAlbedoMap", "uNormalMap", "uRoughnessMetallicMap", "uAOMap",
			"uIrradianceMap", "uPrefilterMap", "uBRDFLUT", "uPrefilterLevels",
			"uLightCount",
		}, lightUniforms()...),
		Blocks: []string{"CameraMatrices"},
	}
)

func lightUniforms() []string {
	names := make([]string, 0, 2*MaxLights)
	for i := 0; i < MaxLights; i++ {
		names = append(names, fmt.Sprintf("uLightPositions[%d]", i), fmt.Sprintf("uLightColors[%d]", i))
	}
	return names
}

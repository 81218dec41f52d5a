package model

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-pbr/internal/engine/gfx"
	"github.com/Faultbox/midgard-pbr/internal/engine/ibl"
	"github.com/Faultbox/midgard-pbr/internal/engine/mesh"
	"github.com/Faultbox/midgard-pbr/internal/engine/shader"
	"github.com/Faultbox/midgard-pbr/internal/engine/texture"
)

// Model is a set of meshes sharing one transform.
type Model struct {
	Meshes []*mesh.Mesh
	Path   string
	Bounds Bounds

	Position mgl32.Vec3
	// Rotation holds Euler angles in degrees, applied X then Y then Z.
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

// Option configures Load.
type Option func(*loader)

// WithLogger sets the logger for load and draw warnings.
func WithLogger(log *zap.Logger) Option {
	return func(l *loader) { l.log = log }
}

type loader struct {
	dev       gfx.Device
	doc       *gltf.Document
	path      string
	dir       string
	cache     *texture.Cache
	fallbacks *texture.Fallbacks
	log       *zap.Logger

	// resolved document textures, 0 when unusable
	textures map[int]uint32
}

// Load reads a glTF or GLB file. Every triangle primitive of the default
// scene becomes a mesh with its node transform baked in. Material textures
// go through cache; channels without a texture use fallbacks.
//
// A file that cannot be read or has no drawable primitive is fatal. A
// primitive or texture that fails is logged and skipped.
func Load(dev gfx.Device, path string, cache *texture.Cache, fallbacks *texture.Fallbacks, opts ...Option) (*Model, error) {
	l := &loader{
		dev:       dev,
		path:      path,
		dir:       filepath.Dir(path),
		cache:     cache,
		fallbacks: fallbacks,
		log:       zap.NewNop(),
		textures:  make(map[int]uint32),
	}
	for _, opt := range opts {
		opt(l)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, gfx.Fatal("load model", fmt.Errorf("%w: %s: %w", gfx.ErrDecode, path, err))
	}
	l.doc = doc

	m := &Model{
		Path:   path,
		Bounds: emptyBounds(),
		Scale:  mgl32.Vec3{1, 1, 1},
	}
	if err := l.build(m); err != nil {
		m.Release()
		return nil, err
	}

	l.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("textures", len(l.textures)))
	return m, nil
}

func (l *loader) build(m *Model) error {
	world := worldMatrices(l.doc, sceneRoots(l.doc))
	var errs error
	// walk nodes in document order so mesh order is stable
	for ni, n := range l.doc.Nodes {
		mat, reachable := world[ni]
		if !reachable || n.Mesh == nil || *n.Mesh >= len(l.doc.Meshes) {
			continue
		}
		gm := l.doc.Meshes[*n.Mesh]
		for pi, prim := range gm.Primitives {
			msh, err := l.primitive(prim, mat, m)
			if err != nil {
				err = fmt.Errorf("mesh %d (%s) primitive %d: %w", *n.Mesh, gm.Name, pi, err)
				l.log.Warn("primitive skipped", zap.Error(err))
				errs = multierr.Append(errs, err)
				continue
			}
			m.Meshes = append(m.Meshes, msh)
		}
	}
	if len(m.Meshes) == 0 {
		if errs == nil {
			errs = fmt.Errorf("no triangle primitives")
		}
		return gfx.Fatal("load model", fmt.Errorf("%s: %w", l.path, errs))
	}
	return nil
}

func (l *loader) primitive(prim *gltf.Primitive, world mgl32.Mat4, m *Model) (*mesh.Mesh, error) {
	g, err := readPrimitive(l.doc, prim, world)
	if err != nil {
		return nil, err
	}
	for _, v := range g.vertices {
		m.Bounds.add(v.Position)
	}

	var material mesh.Material
	if prim.Material != nil && *prim.Material < len(l.doc.Materials) {
		material = l.material(l.doc.Materials[*prim.Material])
	}
	if l.fallbacks != nil {
		if material, err = material.WithFallbacks(l.fallbacks); err != nil {
			return nil, err
		}
	}
	return mesh.New(l.dev, g.vertices, g.indices, material,
		mesh.WithLogger(l.log), mesh.WithFallbacks(l.fallbacks))
}

// material maps glTF channels: base color to albedo, normal to normal,
// metallicRoughness to roughness-metallic, occlusion to AO.
func (l *loader) material(gm *gltf.Material) mesh.Material {
	var m mesh.Material
	add := func(list []uint32, idx int) []uint32 {
		if id := l.texture(idx); id != 0 {
			return append(list, id)
		}
		return list
	}
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorTexture != nil {
			m.Albedo = add(m.Albedo, pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			m.RoughnessMetallic = add(m.RoughnessMetallic, pbr.MetallicRoughnessTexture.Index)
		}
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		m.Normal = add(m.Normal, *gm.NormalTexture.Index)
	}
	if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
		m.AO = add(m.AO, *gm.OcclusionTexture.Index)
	}
	return m
}

// texture resolves a document texture index to a GPU texture, loading the
// image on first use. Failures are logged once and yield 0.
func (l *loader) texture(idx int) uint32 {
	if id, ok := l.textures[idx]; ok {
		return id
	}
	id, err := l.loadTexture(idx)
	if err != nil {
		l.log.Warn("material texture skipped", zap.Int("texture", idx), zap.Error(err))
	}
	l.textures[idx] = id
	return id
}

func (l *loader) loadTexture(idx int) (uint32, error) {
	if l.cache == nil {
		return 0, fmt.Errorf("no texture cache")
	}
	if idx < 0 || idx >= len(l.doc.Textures) {
		return 0, fmt.Errorf("texture index %d out of range", idx)
	}
	src := l.doc.Textures[idx].Source
	if src == nil || *src >= len(l.doc.Images) {
		return 0, fmt.Errorf("texture %d has no image", idx)
	}
	img := l.doc.Images[*src]
	key := fmt.Sprintf("%s#image%d", l.path, *src)

	switch {
	case img.BufferView != nil && *img.BufferView < len(l.doc.BufferViews):
		data, err := modeler.ReadBufferView(l.doc, l.doc.BufferViews[*img.BufferView])
		if err != nil {
			return 0, err
		}
		return l.cache.LoadData(key+mimeExt(img.MimeType), data)
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return 0, err
		}
		return l.cache.LoadData(key+mimeExt(img.MimeType), data)
	case img.URI != "":
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		return l.cache.Load(filepath.Join(l.dir, filepath.FromSlash(uri)))
	}
	return 0, fmt.Errorf("image %d has no data", *src)
}

func mimeExt(mime string) string {
	if i := strings.IndexByte(mime, '/'); i >= 0 {
		return "." + mime[i+1:]
	}
	return ""
}

// ModelMatrix returns translate * scale * rotX * rotY * rotZ.
func (m *Model) ModelMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2]).
		Mul4(mgl32.Scale3D(m.Scale[0], m.Scale[1], m.Scale[2])).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(m.Rotation[0]))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(m.Rotation[1]))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(m.Rotation[2])))
}

// NormalMatrix returns the inverse transpose of the model matrix's upper
// 3x3.
func (m *Model) NormalMatrix() mgl32.Mat3 {
	return normalMatrix(m.ModelMatrix())
}

// DrawPBR sets the model transform on program and draws every mesh.
// Errors from individual meshes are combined; they only carry warnings.
func (m *Model) DrawPBR(program *shader.Program, bundle ibl.Bundle, tb *gfx.TextureBindings) error {
	if err := program.Use(); err != nil {
		return err
	}
	program.SetMat4("uModel", m.ModelMatrix())
	program.SetMat3("uNormalMatrix", m.NormalMatrix())

	var errs error
	for _, msh := range m.Meshes {
		errs = multierr.Append(errs, msh.DrawPBR(program, bundle, tb))
	}
	return errs
}

// Release frees the meshes. Textures stay in the cache.
func (m *Model) Release() {
	if m == nil {
		return
	}
	for _, msh := range m.Meshes {
		msh.Release()
	}
	m.Meshes = nil
}

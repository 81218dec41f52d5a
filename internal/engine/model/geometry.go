package model

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/midgard-pbr/internal/engine/mesh"
)

// geometry is one primitive flattened into world space.
type geometry struct {
	vertices []mesh.Vertex
	indices  []uint32
}

// readPrimitive reads a primitive's attributes and bakes world into them.
// Missing normals become flat face normals and missing tangents are
// derived from UVs.
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive, world mgl32.Mat4) (geometry, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok || posIdx >= len(doc.Accessors) {
		return geometry{}, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return geometry{}, fmt.Errorf("positions: %w", err)
	}

	var (
		normals  [][3]float32
		uvs      [][2]float32
		tangents [][4]float32
	)
	if idx, ok := prim.Attributes["NORMAL"]; ok && idx < len(doc.Accessors) {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return geometry{}, fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok && idx < len(doc.Accessors) {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return geometry{}, fmt.Errorf("texcoords: %w", err)
		}
	}
	if idx, ok := prim.Attributes["TANGENT"]; ok && idx < len(doc.Accessors) {
		if tangents, err = modeler.ReadTangent(doc, doc.Accessors[idx], nil); err != nil {
			return geometry{}, fmt.Errorf("tangents: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil && *prim.Indices < len(doc.Accessors) {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return geometry{}, fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if indices, err = triangulate(prim.Mode, indices); err != nil {
		return geometry{}, err
	}

	hasNormals := len(normals) == len(positions)
	hasTangents := hasNormals && len(tangents) == len(positions) && len(uvs) == len(positions)

	nm := normalMatrix(world)
	basis := world.Mat3()
	g := geometry{vertices: make([]mesh.Vertex, len(positions)), indices: indices}
	for i, p := range positions {
		v := &g.vertices[i]
		v.Position = world.Mul4x1(mgl32.Vec3(p).Vec4(1)).Vec3()
		if hasNormals {
			v.Normal = safeNormalize(nm.Mul3x1(mgl32.Vec3(normals[i])))
		}
		if i < len(uvs) {
			v.TexCoords = mgl32.Vec2(uvs[i])
		}
		if hasTangents {
			t := tangents[i]
			v.Tangent = safeNormalize(basis.Mul3x1(mgl32.Vec3{t[0], t[1], t[2]}))
			b := v.Normal.Cross(v.Tangent)
			if t[3] < 0 {
				b = b.Mul(-1)
			}
			v.Bitangent = b
		}
	}

	// a mirroring transform flips the winding
	if basis.Det() < 0 {
		for i := 0; i+2 < len(g.indices); i += 3 {
			g.indices[i+1], g.indices[i+2] = g.indices[i+2], g.indices[i+1]
		}
	}

	if !hasNormals {
		g.vertices, g.indices = FlatShade(g.vertices, g.indices)
	}
	if !hasTangents {
		mesh.ComputeTangents(g.vertices, g.indices)
	}
	return g, nil
}

// triangulate converts strips and fans into a triangle list.
func triangulate(mode gltf.PrimitiveMode, indices []uint32) ([]uint32, error) {
	switch mode {
	case gltf.PrimitiveTriangles:
		return indices[:len(indices)/3*3], nil
	case gltf.PrimitiveTriangleStrip:
		var out []uint32
		for i := 0; i+2 < len(indices); i++ {
			if i%2 == 0 {
				out = append(out, indices[i], indices[i+1], indices[i+2])
			} else {
				out = append(out, indices[i+1], indices[i], indices[i+2])
			}
		}
		return out, nil
	case gltf.PrimitiveTriangleFan:
		var out []uint32
		for i := 1; i+1 < len(indices); i++ {
			out = append(out, indices[0], indices[i], indices[i+1])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported primitive mode %d", mode)
	}
}

// FlatShade unwelds the triangles so every corner gets its own vertex and
// assigns each triangle its face normal. glTF requires flat normals when a
// primitive has none.
func FlatShade(vertices []mesh.Vertex, indices []uint32) ([]mesh.Vertex, []uint32) {
	n := uint32(len(vertices))
	outV := make([]mesh.Vertex, 0, len(indices))
	outI := make([]uint32, 0, len(indices))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		p0, p1, p2 := vertices[a].Position, vertices[b].Position, vertices[c].Position
		face := safeNormalize(p1.Sub(p0).Cross(p2.Sub(p0)))
		for _, idx := range [3]uint32{a, b, c} {
			v := vertices[idx]
			v.Normal = face
			outI = append(outI, uint32(len(outV)))
			outV = append(outV, v)
		}
	}
	return outV, outI
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	l := math32.Sqrt(v.Dot(v))
	if l < 1e-12 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Mul(1 / l)
}

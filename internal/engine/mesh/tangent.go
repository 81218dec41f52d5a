package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ComputeTangents fills Tangent and Bitangent of every vertex from the
// triangle uv gradients. Contributions of shared vertices are summed and
// normalized. Vertices without a usable uv gradient get an arbitrary frame
// perpendicular to their normal.
func ComputeTangents(vertices []Vertex, indices []uint32) {
	tan := make([]mgl32.Vec3, len(vertices))
	bit := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= len(vertices) || int(i1) >= len(vertices) || int(i2) >= len(vertices) {
			continue
		}
		v0, v1, v2 := &vertices[i0], &vertices[i1], &vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.TexCoords.Sub(v0.TexCoords)
		d2 := v2.TexCoords.Sub(v0.TexCoords)

		det := d1[0]*d2[1] - d2[0]*d1[1]
		if math32.Abs(det) < 1e-8 {
			continue
		}
		r := 1 / det
		t := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(r)
		b := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(r)
		for _, idx := range [3]uint32{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			bit[idx] = bit[idx].Add(b)
		}
	}

	for i := range vertices {
		n := vertices[i].Normal
		t := tan[i]
		// Gram-Schmidt against the normal
		t = t.Sub(n.Mul(n.Dot(t)))
		if t.Len() < 1e-6 {
			t = perpendicular(n)
		}
		t = t.Normalize()

		b := n.Cross(t)
		if bit[i].Dot(b) < 0 {
			b = b.Mul(-1)
		}
		vertices[i].Tangent = t
		vertices[i].Bitangent = b
	}
}

func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math32.Abs(n[0]) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return axis.Sub(n.Mul(n.Dot(axis)))
}

package model

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// localMatrix returns the node transform relative to its parent. An explicit
// matrix wins over TRS.
func localMatrix(n *gltf.Node) mgl32.Mat4 {
	if n.Matrix != [16]float64{} && n.Matrix != gltf.DefaultMatrix {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault() // x, y, z, w
	s := n.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// worldMatrices resolves the world transform of every node reachable from
// roots. Nodes visited twice through a malformed hierarchy keep their first
// transform.
func worldMatrices(doc *gltf.Document, roots []int) map[int]mgl32.Mat4 {
	world := make(map[int]mgl32.Mat4, len(doc.Nodes))
	var walk func(idx int, parent mgl32.Mat4)
	walk = func(idx int, parent mgl32.Mat4) {
		if idx < 0 || idx >= len(doc.Nodes) {
			return
		}
		if _, seen := world[idx]; seen {
			return
		}
		n := doc.Nodes[idx]
		m := parent.Mul4(localMatrix(n))
		world[idx] = m
		for _, c := range n.Children {
			walk(c, m)
		}
	}
	for _, r := range roots {
		walk(r, mgl32.Ident4())
	}
	return world
}

// sceneRoots returns the root nodes of the default scene, or every
// parentless node when the document has no scene.
func sceneRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	if len(doc.Scenes) > 0 {
		return doc.Scenes[0].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// normalMatrix is the inverse transpose of the upper 3x3 of m.
func normalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	m3 := m.Mat3()
	if m3.Det() == 0 {
		return mgl32.Ident3()
	}
	return m3.Inv().Transpose()
}

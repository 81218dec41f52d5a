package envmap

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Cube is an RGB float cube map with one level.
type Cube struct {
	Size  int
	Faces [FaceCount][]float32
}

// NewCube allocates a zeroed cube.
func NewCube(size int) *Cube {
	c := &Cube{Size: size}
	for i := range c.Faces {
		c.Faces[i] = make([]float32, size*size*3)
	}
	return c
}

// At returns texel (x, y) of face f.
func (c *Cube) At(f Face, x, y int) [3]float32 {
	i := (y*c.Size + x) * 3
	p := c.Faces[f]
	return [3]float32{p[i], p[i+1], p[i+2]}
}

// Set stores texel (x, y) of face f.
func (c *Cube) Set(f Face, x, y int, rgb [3]float32) {
	i := (y*c.Size + x) * 3
	p := c.Faces[f]
	p[i], p[i+1], p[i+2] = rgb[0], rgb[1], rgb[2]
}

// Center returns the texel nearest to the center of face f.
func (c *Cube) Center(f Face) [3]float32 {
	return c.At(f, c.Size/2, c.Size/2)
}

// Sample filters the cube in direction dir. Filtering does not cross faces.
func (c *Cube) Sample(dir mgl32.Vec3) [3]float32 {
	f, s, t := DirectionFace(dir)
	return sampleBilinear(c.Size, c.Size, 3, c.Faces[f], s, t)
}

// TexelDirection returns the direction through the center of texel (x, y).
func (c *Cube) TexelDirection(f Face, x, y int) mgl32.Vec3 {
	size := float32(c.Size)
	return FaceDirection(f, (float32(x)+0.5)/size, (float32(y)+0.5)/size)
}

// fill evaluates fn for every texel, one goroutine per face.
func (c *Cube) fill(fn func(dir mgl32.Vec3) [3]float32) {
	var wg sync.WaitGroup
	for _, f := range Faces {
		wg.Add(1)
		go func(f Face) {
			defer wg.Done()
			for y := 0; y < c.Size; y++ {
				for x := 0; x < c.Size; x++ {
					c.Set(f, x, y, fn(c.TexelDirection(f, x, y)))
				}
			}
		}(f)
	}
	wg.Wait()
}

// FromEquirect projects an equirectangular panorama onto a cube of edge size.
func FromEquirect(img *Image, size int) *Cube {
	c := NewCube(size)
	c.fill(func(dir mgl32.Vec3) [3]float32 {
		return SampleEquirect(img, dir)
	})
	return c
}

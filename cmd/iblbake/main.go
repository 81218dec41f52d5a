// iblbake precomputes image-based lighting data on the CPU: the BRDF
// lookup table and the cube faces of an HDR panorama.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/midgard-pbr/pkg/envmap"
	"github.com/Faultbox/midgard-pbr/pkg/lut"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "lut":
		err = cmdLUT(args)
	case "cube":
		err = cmdCube(args)
	case "info":
		err = cmdInfo(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`iblbake - image-based lighting precomputation

Usage:
  iblbake <command> [options]

Commands:
  lut [-size N] [-samples N] <out.blut>       Integrate the BRDF lookup table
  cube [-size N] [-irradiance N] [-prefilter N] <in.hdr|exr> <outdir>
                                              Write cube, irradiance and prefilter faces as EXR
  info <file.blut>                            Show lookup table information

Examples:
  iblbake lut -size 512 brdf.blut
  iblbake cube -size 256 sky.hdr ./baked
  iblbake info brdf.blut`)
}

func cmdLUT(args []string) error {
	fs := flag.NewFlagSet("lut", flag.ContinueOnError)
	size := fs.Int("size", 512, "table edge in texels")
	samples := fs.Int("samples", 1024, "importance samples per texel")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: iblbake lut [-size N] [-samples N] <out.blut>")
	}
	if *size < 1 || *size > lut.MaxSize {
		return fmt.Errorf("%w: %d", lut.ErrInvalidSize, *size)
	}
	if *samples < 1 {
		return fmt.Errorf("samples must be positive, got %d", *samples)
	}

	start := time.Now()
	t := envmap.IntegrateBRDFTable(*size, *samples)
	if err := lut.Save(fs.Arg(0), t); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%dx%d, %d samples) in %v\n", fs.Arg(0), t.Size, t.Size, *samples, time.Since(start).Round(time.Millisecond))
	return nil
}

// faceNames are the file name suffixes of the cube faces.
var faceNames = [envmap.FaceCount]string{"px", "nx", "py", "ny", "pz", "nz"}

type bakeOptions struct {
	size           int
	irradianceSize int
	// prefilter mips written, 0 skips the specular bake
	prefilterLevels int
	samples         int
	sampleDelta     float32
}

// bakeCube writes the environment faces, the irradiance faces and the
// prefiltered mips of img into dir and returns the written paths.
func bakeCube(img *envmap.Image, dir string, opts bakeOptions) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var written []string
	writeCube := func(c *envmap.Cube, prefix string) error {
		for _, f := range envmap.Faces {
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.exr", prefix, faceNames[f]))
			if err := envmap.WriteFaceEXR(path, c, f); err != nil {
				return fmt.Errorf("writing %s face %s: %w", prefix, f, err)
			}
			written = append(written, path)
		}
		return nil
	}

	env := envmap.FromEquirect(img, opts.size)
	if err := writeCube(env, "env"); err != nil {
		return written, err
	}
	if err := writeCube(envmap.Irradiance(env, opts.irradianceSize, opts.sampleDelta), "irradiance"); err != nil {
		return written, err
	}
	for mip := 0; mip < opts.prefilterLevels; mip++ {
		size := envmap.MipSize(opts.size, mip)
		r := envmap.Roughness(mip, opts.prefilterLevels)
		if err := writeCube(envmap.Prefilter(env, size, r, opts.samples), fmt.Sprintf("prefilter_mip%d", mip)); err != nil {
			return written, err
		}
	}
	return written, nil
}

func cmdCube(args []string) error {
	fs := flag.NewFlagSet("cube", flag.ContinueOnError)
	size := fs.Int("size", 256, "environment face edge in texels")
	irradiance := fs.Int("irradiance", 32, "irradiance face edge in texels")
	prefilter := fs.Int("prefilter", 0, "prefiltered mip levels to write (0 skips)")
	samples := fs.Int("samples", 256, "importance samples per prefilter texel")
	delta := fs.Float64("delta", 0.025, "irradiance integration step in radians")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: iblbake cube [-size N] [-irradiance N] [-prefilter N] <in.hdr|exr> <outdir>")
	}
	if *size < 1 || *irradiance < 1 {
		return fmt.Errorf("face sizes must be positive")
	}
	if *prefilter < 0 || *prefilter > envmap.MipLevels(*size) {
		return fmt.Errorf("prefilter levels must be in [0, %d], got %d", envmap.MipLevels(*size), *prefilter)
	}

	img, err := envmap.DecodeFile(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("Panorama: %s (%dx%d, %d channels)\n", fs.Arg(0), img.Width, img.Height, img.Channels)

	start := time.Now()
	written, err := bakeCube(img, fs.Arg(1), bakeOptions{
		size:            *size,
		irradianceSize:  *irradiance,
		prefilterLevels: *prefilter,
		samples:         *samples,
		sampleDelta:     float32(*delta),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d faces to %s in %v\n", len(written), fs.Arg(1), time.Since(start).Round(time.Millisecond))
	return nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: iblbake info <file.blut>")
	}
	t, err := lut.Load(args[0])
	if err != nil {
		return err
	}
	s := summarize(t)

	fmt.Printf("File: %s\n", args[0])
	fmt.Printf("Version: %d\n", lut.Version)
	fmt.Printf("Size: %dx%d (%d channels)\n", t.Size, t.Size, lut.Channels)
	fmt.Printf("Scale: min %.4f max %.4f\n", s.minScale, s.maxScale)
	fmt.Printf("Bias:  min %.4f max %.4f\n", s.minBias, s.maxBias)
	return nil
}

type summary struct {
	minScale, maxScale float32
	minBias, maxBias   float32
}

func summarize(t *lut.Table) summary {
	s := summary{minScale: 1e9, minBias: 1e9, maxScale: -1e9, maxBias: -1e9}
	for y := 0; y < t.Size; y++ {
		for x := 0; x < t.Size; x++ {
			scale, bias := t.At(x, y)
			s.minScale, s.maxScale = min(s.minScale, scale), max(s.maxScale, scale)
			s.minBias, s.maxBias = min(s.minBias, bias), max(s.maxBias, bias)
		}
	}
	return s
}

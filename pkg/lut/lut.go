// Package lut stores BRDF integration lookup tables on disk.
//
// A BLUT file is a small little-endian header followed by an lz4 frame of
// half floats, two per texel (scale and bias of the split-sum term). Row 0
// holds the lowest roughness and column 0 the lowest N·V.
package lut

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mrjoshuak/go-openexr/half"
	"github.com/pierrec/lz4/v4"
)

// BLUT format errors.
var (
	ErrInvalidMagic       = errors.New("invalid BLUT magic: expected 'BLUT'")
	ErrUnsupportedVersion = errors.New("unsupported BLUT version")
	ErrTruncatedData      = errors.New("truncated BLUT data")
	ErrInvalidSize        = errors.New("invalid BLUT size")
)

// Version is the current file version.
const Version uint16 = 1

// Channels is the number of values stored per texel.
const Channels = 2

// MaxSize bounds the table edge so a corrupt header cannot allocate gigabytes.
const MaxSize = 4096

var magic = [4]byte{'B', 'L', 'U', 'T'}

const headerSize = 12

type header struct {
	Magic    [4]byte
	Version  uint16
	Channels uint8
	_        uint8
	Size     uint32
}

// Table is a square RG float table.
type Table struct {
	Size int
	Data []float32 // Size*Size*Channels values, row-major
}

// NewTable allocates a zeroed table.
func NewTable(size int) *Table {
	return &Table{Size: size, Data: make([]float32, size*size*Channels)}
}

// At returns the two values of texel (x, y).
func (t *Table) At(x, y int) (scale, bias float32) {
	i := (y*t.Size + x) * Channels
	return t.Data[i], t.Data[i+1]
}

// Set stores the two values of texel (x, y).
func (t *Table) Set(x, y int, scale, bias float32) {
	i := (y*t.Size + x) * Channels
	t.Data[i] = scale
	t.Data[i+1] = bias
}

// Encode writes t in BLUT format.
func Encode(w io.Writer, t *Table) error {
	if t.Size <= 0 || t.Size > MaxSize || len(t.Data) != t.Size*t.Size*Channels {
		return fmt.Errorf("%w: %d", ErrInvalidSize, t.Size)
	}

	h := header{Magic: magic, Version: Version, Channels: Channels, Size: uint32(t.Size)}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	raw := make([]byte, len(t.Data)*2)
	for i, v := range t.Data {
		binary.LittleEndian.PutUint16(raw[i*2:], half.FromFloat32(v).Bits())
	}

	lzw := lz4.NewWriter(w)
	if err := lzw.Apply(lz4.CompressionLevelOption(lz4.Fast)); err != nil {
		return fmt.Errorf("configuring lz4: %w", err)
	}
	if _, err := lzw.Write(raw); err != nil {
		return fmt.Errorf("compressing payload: %w", err)
	}
	if err := lzw.Close(); err != nil {
		return fmt.Errorf("closing lz4 frame: %w", err)
	}
	return nil
}

// Decode reads a BLUT table.
func Decode(r io.Reader) (*Table, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrTruncatedData, err)
	}
	if h.Magic != magic {
		return nil, ErrInvalidMagic
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Channels != Channels || h.Size == 0 || h.Size > MaxSize {
		return nil, fmt.Errorf("%w: size %d, channels %d", ErrInvalidSize, h.Size, h.Channels)
	}

	t := NewTable(int(h.Size))
	raw := make([]byte, len(t.Data)*2)
	if _, err := io.ReadFull(lz4.NewReader(r), raw); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrTruncatedData, err)
	}
	for i := range t.Data {
		t.Data[i] = half.FromBits(binary.LittleEndian.Uint16(raw[i*2:])).Float32()
	}
	return t, nil
}

// Load reads a table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(data))
}

// Save writes t to path, replacing any existing file.
func Save(path string, t *Table) error {
	var buf bytes.Buffer
	if err := Encode(&buf, t); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

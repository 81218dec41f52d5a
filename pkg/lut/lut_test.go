package lut

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"
)

func testTable() *Table {
	t := NewTable(8)
	for y := 0; y < t.Size; y++ {
		for x := 0; x < t.Size; x++ {
			t.Set(x, y, float32(x)/8, float32(y)/16)
		}
	}
	return t
}

func TestEncodeDecode(t *testing.T) {
	src := testTable()

	var buf bytes.Buffer
	if err := Encode(&buf, src); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("BLUT")) {
		t.Fatalf("missing magic: % x", buf.Bytes()[:4])
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Size != src.Size {
		t.Fatalf("size = %d, want %d", got.Size, src.Size)
	}
	// x/8 and y/16 are exact in half precision.
	for i := range src.Data {
		if got.Data[i] != src.Data[i] {
			t.Fatalf("value %d = %v, want %v", i, got.Data[i], src.Data[i])
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	var valid bytes.Buffer
	if err := Encode(&valid, testTable()); err != nil {
		t.Fatal(err)
	}

	badMagic := append([]byte("XLUT"), valid.Bytes()[4:]...)

	badVersion := append([]byte(nil), valid.Bytes()...)
	binary.LittleEndian.PutUint16(badVersion[4:], 9)

	badSize := append([]byte(nil), valid.Bytes()...)
	binary.LittleEndian.PutUint32(badSize[8:], MaxSize+1)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncatedData},
		{"magic", badMagic, ErrInvalidMagic},
		{"version", badVersion, ErrUnsupportedVersion},
		{"size", badSize, ErrInvalidSize},
		{"truncated payload", valid.Bytes()[:headerSize+10], ErrTruncatedData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeRejectsMismatchedData(t *testing.T) {
	tbl := &Table{Size: 4, Data: make([]float32, 3)}
	if err := Encode(&bytes.Buffer{}, tbl); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Encode() error = %v, want ErrInvalidSize", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brdf.blut")
	src := testTable()

	if err := Save(path, src); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if a, b := got.At(3, 5); a != 3.0/8 || b != 5.0/16 {
		t.Errorf("At(3,5) = (%v, %v)", a, b)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.blut")); err == nil {
		t.Error("expected error for missing file")
	}
}

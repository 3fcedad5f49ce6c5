package testsupport

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

var exifTagIDs = map[string]uint16{
	"DateTime":          0x0132,
	"DateTimeOriginal":  0x9003,
	"DateTimeDigitized": 0x9004,
}

// JPEGWithExif returns a minimal JPEG stream whose APP1 segment carries an
// EXIF IFD0 with the given ASCII date fields. Keys are DateTime,
// DateTimeOriginal and DateTimeDigitized; unknown keys are ignored.
func JPEGWithExif(fields map[string]string) []byte {
	type entry struct {
		id    uint16
		value []byte
	}
	entries := make([]entry, 0, len(fields))
	for name, value := range fields {
		id, ok := exifTagIDs[name]
		if !ok {
			continue
		}
		entries = append(entries, entry{id: id, value: append([]byte(value), 0)})
	}
	slices.SortFunc(entries, func(a, b entry) int { return int(a.id) - int(b.id) })

	order := binary.LittleEndian
	ifdOffset := 8
	dataOffset := ifdOffset + 2 + 12*len(entries) + 4

	tiff := make([]byte, dataOffset)
	copy(tiff, "II")
	order.PutUint16(tiff[2:], 42)
	order.PutUint32(tiff[4:], uint32(ifdOffset))
	order.PutUint16(tiff[ifdOffset:], uint16(len(entries)))

	for i, e := range entries {
		pos := ifdOffset + 2 + 12*i
		order.PutUint16(tiff[pos:], e.id)
		order.PutUint16(tiff[pos+2:], 2) // ASCII
		order.PutUint32(tiff[pos+4:], uint32(len(e.value)))
		if len(e.value) <= 4 {
			copy(tiff[pos+8:pos+12], e.value)
			continue
		}
		order.PutUint32(tiff[pos+8:], uint32(len(tiff)))
		tiff = append(tiff, e.value...)
	}

	payload := append([]byte("Exif\x00\x00"), tiff...)
	out := []byte{0xFF, 0xD8, 0xFF, 0xE1}
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	out = append(out, payload...)
	return append(out, 0xFF, 0xD9)
}

// WriteJPEG writes JPEGWithExif(fields) to path, creating parent directories.
func WriteJPEG(t testing.TB, path string, fields map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, JPEGWithExif(fields), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

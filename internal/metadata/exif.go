package metadata

import (
	"fmt"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"recsort/internal/services"
)

var exifFields = map[string]exif.FieldName{
	FieldDateTimeOriginal:  exif.DateTimeOriginal,
	FieldDateTimeDigitized: exif.DateTimeDigitized,
	FieldDateTime:          exif.DateTime,
}

// Extractor reads EXIF date candidates from image files.
type Extractor struct{}

// NewExtractor returns an EXIF-backed extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Candidates opens path and returns the raw date strings found in its EXIF
// block. Non-critical decode errors still yield the tags that were read; the
// error is returned only when nothing usable could be decoded.
func (e *Extractor) Candidates(path string) (Candidates, error) {
	f, err := os.Open(path)
	if err != nil {
		return Candidates{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return Candidates{}, services.Wrap(services.ErrMetadata, "metadata", "decode exif", path, err)
	}

	out := make(Candidates, len(exifFields))
	for name, field := range exifFields {
		tag, getErr := x.Get(field)
		if getErr != nil {
			continue
		}
		value, ok := tagString(tag)
		if !ok {
			continue
		}
		out[name] = value
	}
	return out, nil
}

func tagString(tag *tiff.Tag) (string, bool) {
	if tag == nil {
		return "", false
	}
	value, err := tag.StringVal()
	if err != nil {
		return "", false
	}
	return value, true
}

package createdat

import (
	"context"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

type exifExtractor struct{}

func (e exifExtractor) CreatedAt(_ context.Context, path string) (time.Time, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		// An unreadable file has no metadata date.
		return time.Time{}, false, nil
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, false, nil
	}

	// Prefer DateTimeOriginal, then DateTimeDigitized, then DateTime.
	if tm, ok := exifTimeFromTag(x, exif.DateTimeOriginal); ok {
		return tm, true, nil
	}
	if tm, ok := exifTimeFromTag(x, exif.DateTimeDigitized); ok {
		return tm, true, nil
	}
	if tm, ok := exifTimeFromTag(x, exif.DateTime); ok {
		return tm, true, nil
	}
	if t, err := x.DateTime(); err == nil {
		return t, true, nil
	}

	return time.Time{}, false, nil
}

func exifTimeFromTag(x *exif.Exif, tag exif.FieldName) (time.Time, bool) {
	f, err := x.Get(tag)
	if err != nil {
		return time.Time{}, false
	}

	s, err := f.StringVal()
	if err != nil {
		return time.Time{}, false
	}

	// EXIF DateTime format: "2006:01:02 15:04:05".
	// It often has no timezone; interpret as Local.
	tm, err := time.ParseInLocation("2006:01:02 15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}

	return tm, true
}

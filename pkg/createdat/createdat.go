package createdat

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/arendv/media-archiver/pkg/scan"
)

// Source describes where a capture timestamp was derived from.
//
// The priority order is:
//  1. metadata (EXIF or video container)
//  2. filename
//  3. unknown
type Source string

const (
	SourceMetadata Source = "metadata"
	SourceFilename Source = "filename"
	SourceUnknown  Source = "unknown"
)

// Result contains a resolved capture timestamp and its source, or, when
// Source is SourceUnknown, the reason resolution failed.
type Result struct {
	CreatedAt time.Time
	Source    Source
	Reason    string
}

// Resolved reports whether a capture timestamp was found.
func (r Result) Resolved() bool {
	return r.Source != SourceUnknown && !r.CreatedAt.IsZero()
}

// MetadataExtractor extracts an embedded creation timestamp from a media
// file.
//
// Implementations should return (t, true, nil) when a timestamp is found.
// If no timestamp exists, or the file cannot be read or decoded, return
// (time.Time{}, false, nil). Errors are treated as best-effort failures by
// Resolve and trigger the filename fallback.
type MetadataExtractor interface {
	CreatedAt(ctx context.Context, path string) (time.Time, bool, error)
}

// Options configures Resolve.
type Options struct {
	// Location is used for timestamps parsed from filenames that contain
	// no timezone. If nil, time.Local is used.
	Location *time.Location

	// Image optionally extracts embedded timestamps from image files.
	// If nil, an EXIF-based extractor is used.
	Image MetadataExtractor

	// Video optionally extracts embedded timestamps from video files.
	// If nil, an ffprobe-based extractor is used; when ffprobe is not on
	// PATH, an ISO-BMFF container reader takes its place.
	Video MetadataExtractor

	// ProbeTimeout bounds a single ffprobe invocation.
	// If zero, DefaultProbeTimeout is used.
	ProbeTimeout time.Duration
}

// Resolve returns the capture timestamp for path, trying the class-specific
// metadata extractor first and the filename digit patterns second. Each
// stage runs at most once; unsupported files resolve to nothing without
// touching any extractor.
func Resolve(ctx context.Context, path string, class scan.MediaClass, opts Options) Result {
	var extractor MetadataExtractor
	var reason string

	switch class {
	case scan.ClassImage:
		extractor = opts.Image
		if extractor == nil {
			extractor = exifExtractor{}
		}
		reason = "no date from exif or filename"
	case scan.ClassVideo:
		extractor = opts.Video
		if extractor == nil {
			extractor = defaultVideoExtractor(opts.ProbeTimeout)
		}
		reason = "no date from probe or filename"
	default:
		return Result{Source: SourceUnknown, Reason: "unsupported file type"}
	}

	if t, ok, err := extractor.CreatedAt(ctx, path); err == nil && ok {
		return Result{CreatedAt: t, Source: SourceMetadata}
	}

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if t, ok := parseFromFilename(stem, loc); ok {
		return Result{CreatedAt: t, Source: SourceFilename}
	}

	return Result{Source: SourceUnknown, Reason: reason}
}

var (
	reUnderscore = regexp.MustCompile(`(\d{8})_(\d{6})`)
	reCompact    = regexp.MustCompile(`\d{14}`)
	reDashDots   = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[ _](\d{2})\.(\d{2})\.(\d{2})`)
)

// parseFromFilename tries the digit patterns in order, first match wins:
//
//  1. 8 digits, underscore, 6 digits => YYYYMMDD_HHMMSS
//  2. 14 contiguous digits          => YYYYMMDDHHMMSS
//  3. YYYY-MM-DD HH.MM.SS           => a name this tool generated earlier
//
// A match whose fields do not form a real calendar date (month 13, hour 25)
// is treated as a non-match and the next pattern is tried.
func parseFromFilename(stem string, loc *time.Location) (time.Time, bool) {
	if m := reUnderscore.FindStringSubmatch(stem); m != nil {
		if t, ok := makeTimestamp(m[1]+m[2], loc); ok {
			return t, true
		}
	}
	if m := reCompact.FindString(stem); m != "" {
		if t, ok := makeTimestamp(m, loc); ok {
			return t, true
		}
	}
	if m := reDashDots.FindStringSubmatch(stem); m != nil {
		if t, ok := makeTimestamp(m[1]+m[2]+m[3]+m[4]+m[5]+m[6], loc); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// makeTimestamp builds a timestamp from 14 digits (YYYYMMDDHHMMSS) and
// rejects values that time.Date would silently normalize.
func makeTimestamp(digits string, loc *time.Location) (time.Time, bool) {
	if len(digits) != 14 {
		return time.Time{}, false
	}

	y, ok := atoi(digits[0:4])
	if !ok || y < 1 {
		return time.Time{}, false
	}
	mo, ok := atoi(digits[4:6])
	if !ok {
		return time.Time{}, false
	}
	d, ok := atoi(digits[6:8])
	if !ok {
		return time.Time{}, false
	}
	h, ok := atoi(digits[8:10])
	if !ok {
		return time.Time{}, false
	}
	mi, ok := atoi(digits[10:12])
	if !ok {
		return time.Time{}, false
	}
	s, ok := atoi(digits[12:14])
	if !ok {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(mo), d, h, mi, s, 0, loc)
	if t.Year() != y || t.Month() != time.Month(mo) || t.Day() != d ||
		t.Hour() != h || t.Minute() != mi || t.Second() != s {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

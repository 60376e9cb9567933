package createdat

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"time"
)

// DefaultProbeTimeout bounds a single ffprobe run so a wedged subprocess
// cannot stall the whole pipeline.
const DefaultProbeTimeout = 5 * time.Second

const probeBinary = "ffprobe"

// probeExtractor reads the container-level creation_time tag via ffprobe.
type probeExtractor struct {
	// Timeout per invocation; DefaultProbeTimeout when zero.
	Timeout time.Duration

	// Binary overrides the probe executable name, for tests.
	Binary string
}

type probeOutput struct {
	Format struct {
		Tags map[string]string `json:"tags"`
	} `json:"format"`
}

func (p probeExtractor) CreatedAt(ctx context.Context, path string) (time.Time, bool, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	binary := p.Binary
	if binary == "" {
		binary = probeBinary
	}

	cmd := exec.CommandContext(ctx, binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_entries", "format_tags=creation_time",
		path,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	// Launch failures, non-zero exits and timeouts all mean the same
	// thing here: no metadata date.
	if err := cmd.Run(); err != nil {
		return time.Time{}, false, nil
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return time.Time{}, false, nil
	}

	raw := out.Format.Tags["creation_time"]
	if raw == "" {
		return time.Time{}, false, nil
	}

	return parseCreationTime(raw)
}

// parseCreationTime normalizes a raw creation_time value such as
// "2023-08-09T16:24:53.000000Z" into a calendar timestamp: the UTC marker
// is stripped, the date/time separator becomes a space, and the value is
// truncated to the 19 characters of "YYYY-MM-DD HH:MM:SS".
func parseCreationTime(raw string) (time.Time, bool, error) {
	s := strings.ReplaceAll(raw, "Z", "")
	s = strings.ReplaceAll(s, "T", " ")
	if len(s) > 19 {
		s = s[:19]
	}

	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// defaultVideoExtractor prefers ffprobe. When the tool is missing from
// PATH entirely, the ISO-BMFF container reader takes over; a present but
// failing ffprobe still falls through to the filename patterns instead.
func defaultVideoExtractor(timeout time.Duration) MetadataExtractor {
	if _, err := exec.LookPath(probeBinary); err != nil {
		return mvhdExtractor{}
	}
	return probeExtractor{Timeout: timeout}
}

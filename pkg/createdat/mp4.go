package createdat

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	mp4 "github.com/abema/go-mp4"
)

// appleEpochOffset is the number of seconds between the Apple/Mac epoch
// (1904-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01 00:00:00 UTC).
const appleEpochOffset = 2082844800

// isoContainerExts lists the video extensions stored in an ISO Base Media
// File Format container, whose mvhd box carries a creation time.
var isoContainerExts = map[string]bool{
	".mp4": true,
	".mov": true,
}

// mvhdExtractor reads the creation time from the moov/mvhd box of an
// ISO-BMFF container. It stands in for ffprobe when that tool is absent.
type mvhdExtractor struct{}

func (m mvhdExtractor) CreatedAt(_ context.Context, path string) (time.Time, bool, error) {
	if !isoContainerExts[strings.ToLower(filepath.Ext(path))] {
		return time.Time{}, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false, nil
	}
	defer f.Close()

	boxes, err := mp4.ExtractBoxWithPayload(f, nil,
		mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeMvhd()})
	if err != nil || len(boxes) == 0 {
		return time.Time{}, false, nil
	}

	mvhd, ok := boxes[0].Payload.(*mp4.Mvhd)
	if !ok {
		return time.Time{}, false, nil
	}

	ct := mvhd.GetCreationTime()
	if ct == 0 {
		return time.Time{}, false, nil
	}

	t := time.Unix(int64(ct)-appleEpochOffset, 0).UTC()
	if t.Year() < 1970 {
		// Cameras with an unset clock write the container epoch.
		return time.Time{}, false, nil
	}

	return t, true, nil
}

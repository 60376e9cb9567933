package scan

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MediaClass is the extension-derived classification of a discovered file.
type MediaClass string

const (
	ClassImage       MediaClass = "image"
	ClassVideo       MediaClass = "video"
	ClassUnsupported MediaClass = "unsupported"
)

type Options struct {
	MaxDepth int

	// Exclude lists slash-separated paths, relative to the scan root,
	// whose subtrees are skipped entirely. Used to keep the organized and
	// skipped roots out of a scan when they live under the source root.
	Exclude []string

	ImageExtensions []string
	VideoExtensions []string
}

func DefaultOptions() Options {
	return Options{
		MaxDepth: -1,
		ImageExtensions: []string{
			".jpg", ".jpeg", ".png", ".gif", ".heic",
		},
		VideoExtensions: []string{
			".mp4", ".mov", ".avi", ".mkv",
		},
	}
}

// Record describes one regular file found under the scan root.
type Record struct {
	Path          string     `json:"path"`
	Class         MediaClass `json:"class"`
	FileSizeBytes int64      `json:"file_size_bytes"`
	ModTime       time.Time  `json:"mod_time"`
}

// Scan returns the relative paths of all image and video files under root.
func Scan(fsys fs.FS, root string, opts Options) ([]string, error) {
	records, err := ScanRecords(fsys, root, opts)
	if err != nil {
		return nil, err
	}

	matches := make([]string, 0, len(records))
	for _, r := range records {
		if r.Class == ClassUnsupported {
			continue
		}
		matches = append(matches, r.Path)
	}
	return matches, nil
}

// ScanRecords walks root and returns a record for every regular file,
// including unsupported ones, sorted by path. The full list is collected
// before returning, so callers may move files out of the tree without
// racing the walk.
func ScanRecords(fsys fs.FS, root string, opts Options) ([]Record, error) {
	if opts.MaxDepth < -1 {
		return nil, fs.ErrInvalid
	}

	imageExts := normalizeExts(opts.ImageExtensions)
	videoExts := normalizeExts(opts.VideoExtensions)
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, e := range opts.Exclude {
		excluded[path.Clean(filepath.ToSlash(e))] = true
	}

	var matches []Record

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if excluded[rel] {
				return fs.SkipDir
			}
			if opts.MaxDepth >= 0 && depth(rel) > opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if opts.MaxDepth >= 0 && depth(rel) > opts.MaxDepth {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}

		matches = append(matches, Record{
			Path:          rel,
			Class:         classify(rel, imageExts, videoExts),
			FileSizeBytes: info.Size(),
			ModTime:       info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Path < matches[j].Path
	})
	return matches, nil
}

func classify(p string, imageExts, videoExts map[string]bool) MediaClass {
	ext := strings.ToLower(filepath.Ext(p))
	switch {
	case imageExts[ext]:
		return ClassImage
	case videoExts[ext]:
		return ClassVideo
	default:
		return ClassUnsupported
	}
}

func normalizeExts(exts []string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, ext := range exts {
		e := strings.TrimSpace(strings.ToLower(ext))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		m[e] = true
	}
	return m
}

func depth(rel string) int {
	rel = path.Clean(rel)
	if rel == "." {
		return 0
	}
	return strings.Count(rel, "/")
}

package plan

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Action says what an operation does with its file.
type Action string

const (
	ActionOrganize Action = "organize"
	ActionSkip     Action = "skip"
)

// Operation represents a planned move from source to destination.
type Operation struct {
	SourcePath      string
	DestinationPath string
	Action          Action
}

// timestampLayout names organized files so that lexicographic order equals
// chronological order.
const timestampLayout = "2006-01-02 15.04.05"

// Destination computes the organized path for a file captured at createdAt.
//
// The path follows the pattern: <organizedRoot>/YYYY/YYYY-MM-DD HH.MM.SS<ext>
// If that name is already taken in the existing map, a suffix _N is
// appended before the extension, where N starts at 1.
func Destination(organizedRoot string, createdAt time.Time, ext string, existing map[string]bool) string {
	year := fmt.Sprintf("%04d", createdAt.Year())
	dir := filepath.Join(organizedRoot, year)
	filename := createdAt.Format(timestampLayout) + ext

	return resolveCollision(dir, filename, existing)
}

// SkipDestination computes the skip path for a file whose capture date
// could not be resolved. The original filename is preserved, with the same
// _N suffixing on collision.
func SkipDestination(skippedRoot string, filename string, existing map[string]bool) string {
	return resolveCollision(skippedRoot, filename, existing)
}

// resolveCollision returns a unique destination path by appending _N before
// the extension if needed.
func resolveCollision(dir string, filename string, existing map[string]bool) string {
	basePath := filepath.Join(dir, filename)

	if existing == nil {
		existing = make(map[string]bool)
	}

	if !existing[basePath] {
		existing[basePath] = true
		return basePath
	}

	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)

	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", nameWithoutExt, i, ext))
		if !existing[candidate] {
			existing[candidate] = true
			return candidate
		}
	}
}

package move

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arendv/media-archiver/pkg/plan"
)

// Result contains the outcome of a single move operation.
type Result struct {
	Operation plan.Operation

	// FinalPath is where the file actually landed. It differs from the
	// planned destination when that path was already occupied on disk.
	FinalPath string

	Success bool
	Error   error
}

// Execute moves files according to the given operations.
//
// It will:
//   - Create destination directories if they don't exist
//   - Never overwrite: an occupied destination gets the next free _N suffix
//   - Fall back to copy+delete when the rename crosses filesystems
//
// A failing operation is recorded in its Result; it never stops the run.
func Execute(operations []plan.Operation) []Result {
	results := make([]Result, 0, len(operations))

	for _, op := range operations {
		result := Result{Operation: op}

		destDir := filepath.Dir(op.DestinationPath)
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			result.Error = fmt.Errorf("create directory: %w", err)
			results = append(results, result)
			continue
		}

		final, err := uniqueDestination(op.DestinationPath)
		if err != nil {
			result.Error = err
			results = append(results, result)
			continue
		}

		if err := moveFile(op.SourcePath, final); err != nil {
			result.Error = fmt.Errorf("move file: %w", err)
			results = append(results, result)
			continue
		}

		result.FinalPath = final
		result.Success = true
		results = append(results, result)
	}

	return results
}

// uniqueDestination returns path itself when free, otherwise the first
// unoccupied _N suffix variant.
func uniqueDestination(path string) (string, error) {
	dir := filepath.Dir(path)
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	for n := 0; ; n++ {
		candidate := path
		if n > 0 {
			candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, n, ext))
		}

		_, err := os.Lstat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
	}
}

// moveFile renames src to dst, degrading to copy+delete when the two live
// on different filesystems.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source: %w", err)
	}
	return nil
}

// copyFile copies a single file from src to dst without overwriting.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("copy content: %w", err)
	}

	if err := dstFile.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	return nil
}

//go:build !unix

package move

// Cross-device detection is unix-specific; elsewhere a failed rename is
// reported as-is.
func isCrossDevice(error) bool { return false }

// Package createdat resolves a media file's capture timestamp.
//
// Resolution is layered: embedded metadata first (EXIF for images, the
// container creation_time for videos), then digit patterns in the filename.
// Filesystem timestamps are never consulted.
package createdat

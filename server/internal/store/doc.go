// Package store caches processed uploads in memory. Entries are keyed by the
// SHA-256 of the uploaded bytes, so re-uploading an identical file reuses
// the enriched table instead of processing it again. Entries expire after a
// TTL; nothing is persisted across restarts.
package store

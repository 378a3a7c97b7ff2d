package storage

import "context"

type ArchiveResult struct {
	Key      string
	Location string
	ETag     string
}

// SnapshotArchiver stores finished-tournament snapshots in durable object
// storage. Archival is best-effort: the tournament engine never depends on
// it having happened.
type SnapshotArchiver interface {
	Archive(ctx context.Context, key string, data []byte) (*ArchiveResult, error)

	GetPublicURL(key string) string
}

// Package snapshot persists content descriptions to object storage so
// map states can be captured, inspected and restored later.
//
// A snapshot bundles the description with the viewport it was captured
// under and is stored as one JSON object per snapshot. Reads go through
// a TTL cache with singleflight stampede protection; writes and deletes
// invalidate the cached copy.
//
// View-annotation resources are runtime-only state and do not survive
// the JSON round trip; hosts rebind them after a restore if attachment
// is wanted.
//
// # Usage
//
//	store := snapshot.NewStore(client, bucket, cfg)
//	err := store.Save(ctx, snapshot.Snapshot{Name: "before-release", Description: desc})
//	snap, err := store.Get(ctx, "before-release")
package snapshot

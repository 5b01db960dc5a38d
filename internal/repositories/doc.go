// Package repositories implements the storage collaborators of a sync run.
//
// Key Implementations:
//   - [ProfileStore] : one JSON document per profile at <data_dir>/profiles/<id>/profile.json, written atomically
//   - [SyncRunRepository] : SQLite run history with soft deletes and per-table sequence numbers
//   - [RunHistory] : adapts [SyncRunRepository] to the engine's run recorder
//
// [ProfileStore.Scan] reconciles a profile with the archives actually present in its mod folder.
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories

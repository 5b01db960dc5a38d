// Package models defines domain entities and persistence interfaces for the modsync catalog synchronizer.
//
// The package contains two categories of types:
//
// 1. Profile data: owned by the calling application and persisted as JSON
//   - [Profile] : A mod folder paired with an optional server catalog URL
//   - [ModRecord] : One tracked mod archive, keyed by file name
//   - [ModDescriptor] : Metadata read from an archive's embedded descriptor
//
// 2. Sync data: produced by a synchronization run
//   - [RemoteModRecord] : One entry parsed from the server catalog (never persisted)
//   - [SyncProgress] : Transient progress event pushed to the caller
//   - [SyncRun] : Database-backed history of a finished run
//
// Persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models

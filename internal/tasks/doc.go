// Package tasks orchestrates mod catalog synchronization with real-time progress reporting.
//
// # Run
//
// [SyncEngine.Run] performs one pass for a profile:
//
//  1. Validates the catalog URL and fetches the catalog ([CatalogFetcher])
//  2. Creates the mod folder if needed
//  3. For each catalog entry, in order:
//     - Skips it when the profile tracks the file, the file exists and the server version matches or is empty
//     - Otherwise downloads it ([Downloader]), retrying transient failures with a fixed backoff
//     - Merges the entry into the profile and saves the profile ([ProfileSaver])
//  4. Sets the last sync date and saves once more
//
// Mods missing from the catalog are never removed. A mod that fails every attempt is listed in
// [SyncResult.FailedMods] and the run continues.
//
// # Cancellation
//
// Each run owns a [Coordinator]. [Registry] maps profile IDs to the coordinator of their active run, which
// rejects a second concurrent run for the same profile and lets [SyncEngine.Cancel] reach it from another goroutine.
//
// # Progress Reporting
//
// Progress is delivered through a [ProgressFunc] called synchronously on the run's goroutine.
// [ChannelProgress] wraps a channel with non-blocking sends for UI layers.
//
// # Run History
//
// The optional [RunRecorder] (repositories.RunHistory) stores every finished run. Recording errors are logged only.
package tasks

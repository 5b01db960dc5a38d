// Package services implements the network side of a catalog synchronization.
//
// # Catalog
//
// [CatalogService] performs the HTTP GET against a profile's catalog URL, enforces a fixed timeout,
// classifies failures into the shared error taxonomy and hands the body to [catalog.Parser].
//
// # Downloads
//
// [DownloadService] streams one mod archive into the profile's mod folder. Bytes land in a
// "<file>.part" sibling first and are renamed into place once the transfer is judged complete,
// so an interrupted download never clobbers a file that was already there.
//
// Both services take a [context.Context] as the cancellation token of the run: cancelling it
// aborts the in-flight request and is reported as [shared.ErrCancelled].
package services

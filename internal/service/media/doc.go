// Package media is the acquisition and local-availability core of the video library.
//
// The Coordinator accepts download requests, runs at most one transfer per item through a
// TransferEngine, tracks per-item DownloadRecords, and persists completed items through the
// Catalog. The Resolver answers which URI a player should use: the local file once an item is
// available, the remote URL otherwise.
package media

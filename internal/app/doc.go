// Package app wires configuration, storage, the media client and the download coordinator
// together and implements the CLI commands on top of them: downloading items, listing the
// library, resolving playback URIs, serving the local HTTP API and editing the configuration.
package app

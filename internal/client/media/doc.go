// Package media provides the HTTP client for the remote video catalog and the video files it points to.
// It fetches and decodes the catalog JSON, opens streaming bodies for media transfers,
// and issues lightweight HEAD probes used for connectivity detection.
package media

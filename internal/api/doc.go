// Package api serves the media library over a local HTTP API: the combined catalog view,
// download requests and cancellation, playback URIs, session statistics, and the stored files.
package api

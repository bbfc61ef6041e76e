// Package http provides the HTTP client plumbing shared by the remote catalog and media fetches:
// a transport chain with debug request/response logging and User-Agent injection,
// and constructors for clients with and without an overall request timeout.
package http

// Package server provides the HTTP API for a running counter service.
//
// This package is internal and handles all HTTP concerns:
//
//   - REST API: "/api/state" returns the latest state snapshot as JSON
//   - Dispatch: "/api/dispatch" accepts a JSON action and applies it
//   - Server-Sent Events: "/api/sse" streams every new snapshot
//
// Reads are served from a [hub.Hub]; writes go through a [Dispatcher] that
// owns the store. The server supports graceful shutdown via context
// cancellation, with a 5-second timeout for in-flight requests.
package server

// Package app assembles the counter service: a tally store owned by a
// driver goroutine, a hub fed by a store subscriber, and the HTTP server.
//
// The service is created with [New] and functional options, and runs until
// the context passed to [Service.Start] is cancelled. An optional script of
// actions is played through the same driver as HTTP requests, one action per
// step interval.
package app

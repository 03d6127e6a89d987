// Package driver runs a redux store on a single owning goroutine.
//
// A [redux.Store] is not safe for concurrent use. [Driver] accepts actions
// from any number of goroutines and applies them one at a time on its own
// goroutine, so each dispatch, including all subscriber notifications, runs
// as one uninterrupted step. Submitters block until their action has been
// applied and receive the resulting state.
//
// Panics raised by the reducer or by subscribers are recovered per action,
// logged with a correlation ID and stack trace, and returned to the
// submitter as an error. The driver keeps running afterwards.
package driver

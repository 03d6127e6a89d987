// Package counter is the example domain for the redux store: an integer
// counter changed by increment and decrement actions.
//
// Actions have a compact text form, "kind:amount", used on the command line
// and in YAML configuration:
//
//	increment:1
//	decrement:12
//
// In YAML an action may also be written as a mapping:
//
//	actions:
//	  - increment:1
//	  - kind: decrement
//	    amount: 2
//
// [NewStore] returns a [redux.Store] wired with [Reduce].
package counter

// Command example replays a few actions through a counter store, printing
// the value after every dispatch and then the final value.
package main

import (
	"fmt"

	"github.com/jpalmerr/redux"
)

type action struct {
	kind   string
	amount int
}

func reduce(state int, a action) int {
	switch a.kind {
	case "increment":
		return state + a.amount
	case "decrement":
		return state - a.amount
	default:
		return state
	}
}

func main() {
	store := redux.NewFunc(reduce, 0)
	store.Subscribe(func(state int) {
		fmt.Println(state)
	})

	store.Dispatch(action{kind: "increment", amount: 1})
	store.Dispatch(action{kind: "decrement", amount: 2})
	store.Dispatch(action{kind: "increment", amount: 3})

	fmt.Println(store.State())
}

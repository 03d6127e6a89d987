package counter

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/jpalmerr/redux"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name   string
		state  int
		action Action
		want   int
	}{
		{name: "increment", state: 1, action: Increment(1), want: 2},
		{name: "decrement", state: 1, action: Decrement(1), want: 0},
		{name: "below zero", state: 0, action: Decrement(5), want: -5},
		{name: "unknown kind", state: 9, action: Action{Kind: "reset"}, want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reduce(tt.state, tt.action); got != tt.want {
				t.Errorf("Reduce(%d, %v) = %d, want %d", tt.state, tt.action, got, tt.want)
			}
		})
	}
}

func TestNewStore_Sequence(t *testing.T) {
	store := NewStore(0, redux.WithLogger(testLogger()))

	actions := []Action{
		Decrement(12), Decrement(31), Increment(15),
		Decrement(78), Increment(12), Increment(14),
	}
	for _, a := range actions {
		store.Dispatch(a)
	}

	if got := store.State(); got != -80 {
		t.Errorf("State() = %d, want %d", got, -80)
	}
	if got := redux.Fold(Reducer, 0, actions...); got != -80 {
		t.Errorf("Fold() = %d, want %d", got, -80)
	}
}

func TestNewStore_SubscriberLog(t *testing.T) {
	store := NewStore(0, redux.WithLogger(testLogger()))

	var log []int
	store.Subscribe(func(state int) { log = append(log, state) })

	store.Dispatch(Increment(1))
	store.Dispatch(Decrement(2))

	if !reflect.DeepEqual(log, []int{1, -1}) {
		t.Errorf("log = %v, want [1 -1]", log)
	}
}

func TestNewTallyStore(t *testing.T) {
	store := NewTallyStore(10, redux.WithLogger(testLogger()))

	if got := store.State(); got != (Tally{Value: 10}) {
		t.Errorf("State() = %+v, want %+v", got, Tally{Value: 10})
	}

	var seen []Tally
	store.Subscribe(func(tally Tally) { seen = append(seen, tally) })

	store.Dispatch(Increment(5))
	store.Dispatch(Decrement(20))

	want := []Tally{
		{Value: 15, Seq: 1, Last: Increment(5)},
		{Value: -5, Seq: 2, Last: Decrement(20)},
	}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("seen = %+v, want %+v", seen, want)
	}
}

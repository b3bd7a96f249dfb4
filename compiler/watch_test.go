package compiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResetDebounce(t *testing.T) {
	require := require.New(t)

	timer := resetDebounce(nil, false)
	defer timer.Stop()

	// Let the timer expire without consuming the tick, then rearm as a
	// racing event would. The stale tick must not leak through as an
	// early pass.
	time.Sleep(debounce + 100*time.Millisecond)
	timer = resetDebounce(timer, true)
	select {
	case <-timer.C:
		t.Fatal("stale tick fired before the debounce interval elapsed")
	case <-time.After(debounce / 2):
	}

	// The rearmed timer still fires once the interval elapses.
	select {
	case <-timer.C:
	case <-time.After(2 * debounce):
		t.Fatal("rearmed timer never fired")
	}

	// A consumed tick leaves nothing to drain.
	timer = resetDebounce(timer, false)
	select {
	case <-timer.C:
	case <-time.After(2 * debounce):
		t.Fatal("reset timer never fired")
	}
	require.NotNil(timer)
}

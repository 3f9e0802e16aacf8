// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package memo

import (
	"fmt"
	"sync/atomic"

	"github.com/staranto/ttlmemo/internal/cachekey"
)

// EventKind classifies a diagnostic Event.
type EventKind int

const (
	EventMiss EventKind = iota
	EventHit
	EventStored
	EventExpired
	EventCorrupt
	EventRaceLost
	EventLockAbandoned
	EventLockBusy

	numEventKinds
)

var eventNames = [numEventKinds]string{
	"miss", "hit", "stored", "expired", "corrupt", "race-lost", "lock-abandoned", "lock-busy",
}

func (k EventKind) String() string {
	if k >= 0 && k < numEventKinds {
		return eventNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event describes something the cache did on behalf of one call.
type Event struct {
	Kind     EventKind
	Identity cachekey.Identity
	// Key is the clear-text cache key.
	Key  string
	Path string
	Err  error
}

// Observer receives events. Observe must not block for long; it runs inline
// with the call.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) { f(e) }

type observers []Observer

func (o observers) Observe(e Event) {
	for _, ob := range o {
		ob.Observe(e)
	}
}

// Observers fans events out to each non-nil observer in order.
func Observers(obs ...Observer) Observer {
	var out observers
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

// Counter counts events by kind.
type Counter struct {
	counts [numEventKinds]atomic.Int64
}

// Observe implements Observer.
func (c *Counter) Observe(e Event) {
	if e.Kind >= 0 && e.Kind < numEventKinds {
		c.counts[e.Kind].Add(1)
	}
}

// Count returns how many events of kind were seen.
func (c *Counter) Count(kind EventKind) int64 {
	if kind < 0 || kind >= numEventKinds {
		return 0
	}
	return c.counts[kind].Load()
}

// Counts returns the non-zero counts keyed by kind name.
func (c *Counter) Counts() map[string]int64 {
	out := map[string]int64{}
	for k := EventKind(0); k < numEventKinds; k++ {
		if n := c.counts[k].Load(); n > 0 {
			out[k.String()] = n
		}
	}
	return out
}

// Package component runs hardware components through a one-shot setup
// sequence ordered by priority.
package component

import (
	"log"
	"sort"
)

// Setup priorities. Higher values run earlier.
const (
	PriorityBus             = 1000.0
	PriorityIO              = 900.0
	PriorityHardware        = 800.0
	PriorityData            = 600.0
	PriorityProcessor       = 400.0
	PriorityAfterWiFi       = 200.0
	PriorityAfterConnection = 100.0
	PriorityDefault         = 0.0
	PriorityLate            = -100.0
)

// Component is driven by the Application lifecycle.
type Component interface {
	// SetupPriority returns the ordering value for Setup. Must be constant.
	SetupPriority() float64

	// Setup runs once during boot.
	Setup()

	// DumpConfig logs the component's configuration.
	DumpConfig()
}

type entry struct {
	name string
	c    Component
	seq  int
}

// Application owns the registered components and their boot order.
// Not safe for concurrent use; call from the run loop only.
type Application struct {
	entries []entry
	booted  bool
}

// NewApplication returns an empty Application.
func NewApplication() *Application {
	return &Application{}
}

// Register adds a component. Registration after Setup is ignored.
func (a *Application) Register(name string, c Component) {
	if a.booted {
		log.Printf("component: %s registered after setup, ignoring", name)
		return
	}
	a.entries = append(a.entries, entry{name: name, c: c, seq: len(a.entries)})
}

// Setup runs every component's Setup in descending priority, then dumps
// each configuration in the same order. Equal priorities keep registration
// order. Subsequent calls do nothing. Returns the names in setup order.
func (a *Application) Setup() []string {
	if a.booted {
		return nil
	}
	a.booted = true

	ordered := make([]entry, len(a.entries))
	copy(ordered, a.entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].c.SetupPriority() > ordered[j].c.SetupPriority()
	})

	names := make([]string, 0, len(ordered))
	for _, e := range ordered {
		log.Printf("component: setup %s (priority %.1f)", e.name, e.c.SetupPriority())
		e.c.Setup()
		names = append(names, e.name)
	}
	for _, e := range ordered {
		e.c.DumpConfig()
	}
	return names
}

// Len returns the number of registered components.
func (a *Application) Len() int {
	return len(a.entries)
}

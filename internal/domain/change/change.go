// Package change describes committed primary-store mutations that need reindexing.
package change

import (
	"fmt"

	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
)

// Kind is the mutation that produced an event.
type Kind string

// Event kinds. Deletions are not deferred: they remove synchronously.
const (
	Created Kind = "created"
	Updated Kind = "updated"
)

// Event identifies an entity to reindex after commit. It carries no payload:
// the entity is re-read from the primary store when the event is processed.
type Event struct {
	Kind Kind
	Type indexable.Type
	ID   string
}

// Key identifies the entity an event refers to.
type Key struct {
	Type indexable.Type
	ID   string
}

// Key returns the (type, id) of e.
func (e Event) Key() Key { return Key{Type: e.Type, ID: e.ID} }

func (e Event) String() string { return fmt.Sprintf("%s %s/%s", e.Kind, e.Type, e.ID) }

// Coalesce keeps one event per entity, in first-emission order. A Created event
// absorbs later Updates of the same entity.
func Coalesce(events []Event) []Event {
	if len(events) < 2 {
		return events
	}
	pos := make(map[Key]int, len(events))
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if i, ok := pos[e.Key()]; ok {
			if e.Kind == Created {
				out[i].Kind = Created
			}
			continue
		}
		pos[e.Key()] = len(out)
		out = append(out, e)
	}
	return out
}

package sim

import "math"

// VTime is a point or an interval on the simulated timeline, in abstract
// time units chosen by the model (hours, days, ...).
type VTime uint32

// UpperBound is the largest value accepted by the configuration setters.
const UpperBound = math.MaxUint32 - 1

// EntityID identifies an entity for the lifetime of the process.
type EntityID string

const untitled = "untitled"

// An Entity is a schedulable actor, such as a patient or an arrival
// generator. Entities are owned by the model; the calendar only keeps
// references to them.
//
// An unavailable entity has exactly one live calendar entry. The kernel makes
// the entity available again right before firing its due event, so the event
// may schedule the same entity again.
type Entity struct {
	ID          EntityID
	Name        string
	Available   bool
	Utilisation uint64
}

// NewEntity creates an available entity with a fresh ID.
func NewEntity(name string) *Entity {
	e := &Entity{
		ID:        EntityID(GetIDGenerator().Generate()),
		Name:      untitled,
		Available: true,
	}
	e.SetName(name)

	return e
}

// SetName renames the entity. Empty names are ignored.
func (e *Entity) SetName(name string) {
	if name == "" {
		return
	}

	e.Name = name
}

// A Resource is a counted pool of capacity shared by entities, such as the
// beds of a ward. The kernel does not enforce any discipline on Count; the
// model allocates and releases units.
type Resource struct {
	Name         string
	InitialValue uint32
	Count        uint32
	Utilisation  uint64
}

// NewResource creates a resource with all its initial units available.
func NewResource(name string, initialValue uint32) *Resource {
	if name == "" {
		name = untitled
	}

	return &Resource{
		Name:         name,
		InitialValue: initialValue,
		Count:        initialValue,
	}
}

// Reset restores the initial capacity and clears the utilisation. Models
// usually call it when a run starts.
func (r *Resource) Reset() {
	r.Count = r.InitialValue
	r.Utilisation = 0
}

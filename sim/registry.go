package sim

import "github.com/sirupsen/logrus"

// EntityAndResourceManager keeps the entities and resources of a model.
// Registration is only allowed while the simulation is idle.
type EntityAndResourceManager struct {
	stateTeller StateTeller

	entities    []*Entity
	entityIndex map[EntityID]int
	resources   []*Resource
}

// NewEntityAndResourceManager creates an empty manager.
func NewEntityAndResourceManager(
	stateTeller StateTeller,
) *EntityAndResourceManager {
	return &EntityAndResourceManager{
		stateTeller: stateTeller,
		entityIndex: make(map[EntityID]int),
	}
}

// AddEntity registers an entity.
func (m *EntityAndResourceManager) AddEntity(e *Entity) error {
	if err := mustBeIdle(m.stateTeller, "entity "+e.Name); err != nil {
		return err
	}

	m.entities = append(m.entities, e)
	m.entityIndex[e.ID] = len(m.entities) - 1

	logrus.WithField("id", e.ID).Infof("entity %s added", e.Name)

	return nil
}

// AddResource registers a resource.
func (m *EntityAndResourceManager) AddResource(r *Resource) error {
	if err := mustBeIdle(m.stateTeller, "resource "+r.Name); err != nil {
		return err
	}

	m.resources = append(m.resources, r)

	logrus.Infof("resource %s added", r.Name)

	return nil
}

// Entity returns the registered entity with the given ID.
func (m *EntityAndResourceManager) Entity(id EntityID) (*Entity, bool) {
	i, ok := m.entityIndex[id]
	if !ok {
		return nil, false
	}

	return m.entities[i], true
}

// Resource returns the first registered resource with the given name.
func (m *EntityAndResourceManager) Resource(name string) (*Resource, bool) {
	for _, r := range m.resources {
		if r.Name == name {
			return r, true
		}
	}

	return nil, false
}

// Entities returns the registered entities in registration order.
func (m *EntityAndResourceManager) Entities() []*Entity {
	return append([]*Entity(nil), m.entities...)
}

// Resources returns the registered resources in registration order.
func (m *EntityAndResourceManager) Resources() []*Resource {
	return append([]*Resource(nil), m.resources...)
}

// EventAndActivityManager keeps the B events and the C activities of a
// model. Registration is only allowed while the simulation is idle.
type EventAndActivityManager struct {
	stateTeller StateTeller

	events     []Event
	activities []Activity
}

// NewEventAndActivityManager creates an empty manager.
func NewEventAndActivityManager(
	stateTeller StateTeller,
) *EventAndActivityManager {
	return &EventAndActivityManager{
		stateTeller: stateTeller,
	}
}

// AddEvent registers a B event.
func (m *EventAndActivityManager) AddEvent(e Event) error {
	if err := mustBeIdle(m.stateTeller, "B event "+e.Name()); err != nil {
		return err
	}

	m.events = append(m.events, e)

	logrus.Infof("B event %s added", e.Name())

	return nil
}

// AddActivity registers a C activity. Activities are tried in registration
// order during every C phase.
func (m *EventAndActivityManager) AddActivity(a Activity) error {
	if err := mustBeIdle(m.stateTeller, "C activity "+a.Name()); err != nil {
		return err
	}

	m.activities = append(m.activities, a)

	logrus.Infof("C activity %s added", a.Name())

	return nil
}

// Events returns the registered B events.
func (m *EventAndActivityManager) Events() []Event {
	return append([]Event(nil), m.events...)
}

// Activities returns the registered C activities in registration order.
func (m *EventAndActivityManager) Activities() []Activity {
	return append([]Activity(nil), m.activities...)
}

func mustBeIdle(stateTeller StateTeller, what string) error {
	state := stateTeller.CurrentState()
	if state == Idle {
		return nil
	}

	err := &ConfigurationChangeError{What: what, State: state}
	logrus.Error(err)

	return err
}

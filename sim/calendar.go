package sim

// A CalendarEntry binds an entity to the B event that happens to it at
// TimeCell.
type CalendarEntry struct {
	ID          string
	Entity      *Entity
	Event       Event
	TimeCell    VTime
	ScheduledAt VTime
}

// Calendar is the list of pending B events. It keeps entries in insertion
// order and maintains no time ordering; the A phase scans it linearly.
type Calendar struct {
	entries []*CalendarEntry
}

// NewCalendar creates an empty calendar.
func NewCalendar() *Calendar {
	return &Calendar{
		entries: make([]*CalendarEntry, 0),
	}
}

// Add appends an entry.
func (c *Calendar) Add(entry *CalendarEntry) {
	c.entries = append(c.entries, entry)
}

// Remove deletes the given entry, preserving the order of the remaining ones.
// It returns false if the entry is not in the calendar.
func (c *Calendar) Remove(entry *CalendarEntry) bool {
	for i, e := range c.entries {
		if e == entry {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return true
		}
	}

	return false
}

// Len returns the number of entries.
func (c *Calendar) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries in insertion order.
func (c *Calendar) Entries() []*CalendarEntry {
	entries := make([]*CalendarEntry, len(c.entries))
	copy(entries, c.entries)

	return entries
}

// Clear removes all the entries.
func (c *Calendar) Clear() {
	c.entries = make([]*CalendarEntry, 0)
}

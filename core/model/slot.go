package model

// Slot is an offered unit of scheduling capacity: a time window at a
// location with a set of available resources.
type Slot struct {
	ID         string    `json:"id"`
	Window     TimeRange `json:"window"`
	LocationID string    `json:"location_id"`
	// Resources lists the resource keys (kind/id) available in the slot.
	Resources []string `json:"resources"`
	// Capacity is the number of events the slot can still take.
	Capacity int `json:"capacity"`
	// Cost is an opaque cost hint supplied by the caller.
	Cost float64 `json:"cost"`
	// Preference weights the slot when several candidates fit equally.
	Preference float64 `json:"preference"`
}

// HasResource reports whether the slot offers the given resource key.
func (s Slot) HasResource(key string) bool {
	for _, r := range s.Resources {
		if r == key {
			return true
		}
	}
	return false
}

// Fits reports whether an event of the given duration fits in the slot.
func (s Slot) Fits(e Event) bool {
	return s.Capacity > 0 && e.Window.Duration() <= s.Window.Duration()
}

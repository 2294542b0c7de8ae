// Package events defines the scheduling related events emitted on the event bus.
//
// Available event types:
//   - ConflictEvent: conflicts produced by a detection pass
//   - ResolutionEvent: outcome of a resolution attempt
//   - OptimizeEvent: summary of an optimizer run
//   - TravelFallbackEvent: a travel estimate served by the fallback provider
package events

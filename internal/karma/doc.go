// Package karma implements the event pipeline: token scanning, entity
// resolution against the identity directory, score mutation, directory
// refresh, and the per-event dispatcher that ties them together.
package karma

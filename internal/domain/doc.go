// Package domain holds the model types and interfaces shared across the
// karmabot pipeline: inbound events, karma records, the identity directory,
// and the contracts for the stores and the outbound message transport.
package domain

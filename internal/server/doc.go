// Package server wires the HTTP surface: the Slack events webhook,
// health probes, Prometheus metrics, and the version endpoint.
package server

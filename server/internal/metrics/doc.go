// Package metrics keeps the server's operational counters and renders them
// in the Prometheus text exposition format at GET /metrics.
//
// Families are built directly as client_model protobufs and encoded with
// expfmt; there is no global registry.
package metrics

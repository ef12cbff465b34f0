// Package ports defines interfaces between layers in the hexagonal architecture.
// The service port is implemented by the application layer and called by
// inbound adapters (handlers). Repository, transaction, and event ports are
// implemented by outbound adapters and called by the application layer.
package ports

// Package metrics defines the Prometheus collectors gifcap updates while
// capturing and encoding. They register on the default registry and can be
// written to a node-exporter textfile with WriteTextfile.
package metrics

// Package metrics defines the sink interface for analysis telemetry. Sinks
// like the Prometheus and InfluxDB implementations record one event per
// orchestrator operation and can be combined with a MultiSink. The factory
// helpers build the configured sink set from the metrics config section.
package metrics

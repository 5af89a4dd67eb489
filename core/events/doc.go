// Package events defines the event types published on the internal bus
// while analyses run. Subscribers such as the metrics collector consume
// them without coupling the orchestrator to any sink.
package events

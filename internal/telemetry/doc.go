// Package telemetry wraps OpenTelemetry SDK setup for the dataset
// pipeline's traces and metrics. When telemetry is disabled, no exporters
// are created and the global providers remain noop.
package telemetry

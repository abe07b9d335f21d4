// Package tracing is a thin wrapper around OpenTelemetry so that the rest of
// the code-base can emit spans without depending on the upstream API surface
// directly. Nothing is re-implemented; everything delegates to the SDK.
package tracing

// Package middleware holds the chi middleware of the pipeline HTTP surface:
// request IDs, structured request logging, panic recovery, rate limiting,
// security headers and OpenTelemetry request instrumentation. Error
// responses use RFC 7807 problem documents.
package middleware

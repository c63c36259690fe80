// Package http implements the HTTP handlers of the pipeline host.
//
// Handlers stay thin: they parse and validate the request, call the
// scheduler or the run history, and render JSON with go-chi/render. Errors
// are RFC 7807 problem documents written by the middleware package.
//
// Endpoints, all under /api:
//
//	GET  /health      liveness plus scheduler state
//	GET  /version     build information
//	GET  /steps       registered pipeline steps and their dependencies
//	GET  /runs        run history, newest first (?status=&limit=)
//	POST /runs        trigger a full run; 202, or 409 while one is active
//	GET  /runs/{id}   one run with its step outcomes
package http

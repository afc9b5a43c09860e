// Package http exposes the validation engine as a JSON API on a chi router.
//
// Routes:
//
//	GET  /healthz
//	GET  /info
//	GET  /metrics                      (with WithMetrics)
//	GET  /v1/schemas
//	POST /v1/schemas/{name}/validate   200 valid, 422 invalid
//	GET  /v1/reports/{id}
package http

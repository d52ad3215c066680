// Package api implements the HTTP REST API for drillscope-server.
//
// New(store, cfg) returns an http.Handler that serves:
//
//	GET  /api/v1/health                       status, cached upload count, alert counts
//	POST /api/v1/uploads                      process a CSV (raw body or multipart "file")
//	GET  /api/v1/uploads                      all cached uploads
//	GET  /api/v1/uploads/{id}                 summary, diagnostics, filter defaults
//	GET  /api/v1/uploads/{id}/records         filtered enriched rows
//	GET  /api/v1/uploads/{id}/export          filtered enriched rows as CSV
//	GET  /api/v1/uploads/{id}/charts/{kind}   filtered chart figure
//	GET  /api/v1/alerts                       firing and recently resolved alerts
//
// Filters are the query parameters from, to (YYYY-MM-DD) and pattern
// (repeated or comma-separated). Charts also take bin_size.
//
// Errors are JSON {"error": ...}: 400 for malformed input or parameters,
// 404 for unknown uploads or chart kinds, 405 for wrong methods, 413 for
// oversized uploads, 422 for CSVs missing a column or holding an
// unparseable timestamp, and for charts the table cannot satisfy.
//
// Upload IDs are content hashes: posting identical bytes again returns the
// cached result with 200 instead of 201.
package api

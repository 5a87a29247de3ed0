// Package httpmiddleware holds the gin middleware shared by every route:
// panic recovery, request ids, request-scoped logging, CORS and rate
// limiting.
package httpmiddleware

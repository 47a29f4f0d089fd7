// Package httputil provides HTTP response helpers for the runigram server.
//
// # Overview
//
//   - [WriteJSON]: encode a value as a JSON response
//   - [WriteError]: encode an error as a JSON body with a mapped status
//   - [StatusFor]: map an error to its HTTP status code
//
// # Errors
//
// Errors carrying a code from pkg/errors are reported with that code and
// their user message:
//
//	{"error": {"code": "MALFORMED_INPUT", "message": "ppm: bad header tag \"P6\""}}
//
// Caller mistakes (malformed images, shape mismatches, bad parameters) map
// to 400 Bad Request, oversized bodies to 413, and everything else to 500.
// Messages of internal errors are not exposed.
package httputil

// Package server holds the HTTP server configuration and builds the Fiber application.
//
// NewApp applies the listen limits (body size, read timeout), installs a json-iterator
// codec and renders handler errors as {"error": "..."}. Snapshots are posted as JSON
// bodies, so the body limit is the main knob for large tables.
package server

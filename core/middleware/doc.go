// Package middleware groups the Fiber middleware of the function host.
//
//   - auth: rejects requests whose X-API-Key does not match the configured key.
//     An empty key disables the check.
//   - rayid: tags every request with a ray id, stored in locals and echoed in the
//     response headers, so logs of one call can be correlated.
//
// Register rayid first so the logging middleware and handlers see the id.
package middleware

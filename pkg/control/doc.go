// Package control enables and disables external services through a
// service-control API.
//
// Disable is the governor's enforcement action, so calls are hardened:
// bounded retries with exponential backoff for transient failures, and a
// non-retryable classification (permission denied, not found, bad request)
// that aborts immediately. Enable and Disable are idempotent at the
// provider; repeating them is safe.
package control

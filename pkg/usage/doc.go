// Package usage queries raw usage quantities from a monitoring API.
//
// Queries aggregate a metric over the current billing window (UTC month
// start to now). Each call carries a bounded timeout; a failed query is a
// data-quality event for the caller, never a silent zero.
package usage

// Package notify delivers budget alerts over independent channels.
//
// The Dispatcher enforces the alert contract: at most one alert per
// (service, level) per billing month, tracked in the persistent state
// store. Channels (email over SMTPS, Kafka events) are attempted
// independently; a failed delivery is logged and counted but never blocks
// the other channel and never re-arms the alert for the month.
package notify

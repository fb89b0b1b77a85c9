// Warden is a closed-loop cloud spend governor.
//
// It periodically measures per-service spend from usage metrics and unit
// prices, compares effective spend against monthly budgets, and disables a
// service's API access when its budget is exhausted, with WARNING and
// CRITICAL alerts delivered over independent channels.
//
// Usage:
//
//	# Start the daemon with default configuration
//	warden run
//
//	# Start with a custom configuration file
//	warden run --config /path/to/config.yaml
//
//	# Run one check cycle and print the summary
//	warden check
//
//	# Show version information
//	warden version
package main

func main() {
	Execute()
}

// Package scheduler runs periodic check cycles on a cron schedule.
//
// The daemon self-schedules: no external trigger infrastructure is needed,
// though POST /check still works for on-demand cycles alongside it.
package scheduler

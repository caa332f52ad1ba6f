// Package schedule runs periodic rescans on a cron schedule.
package schedule

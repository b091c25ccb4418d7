// Package engine derives every view of a transaction snapshot: balance,
// category breakdowns, time-window filtering, pagination, CSV rows and the
// summary figures shown on the dashboard.
//
// All functions are pure. They never retain or mutate the input slice, so a
// snapshot can be shared by concurrent computations without locking.
package engine

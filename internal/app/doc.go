// Package app wires the watch dashboard together.
//
// Run takes a ready client and the runs to watch, fills a state.Store once,
// starts the background poller and hands the store to the UI:
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> refresh()       first snapshot
//	       ├─────> StartPoller()   background updates
//	       └─────> ui.Run()        blocks until quit
//
// Each poll reads status and simulation time for every run through the
// client's StatusAll and SimTimeAll batches. A failure on one run is shown
// against that run; only a poll in which every run failed counts as a
// server failure. Consecutive server failures stretch the poll interval
// (2s, 4s, 8s, 16s, then 30s) until the server answers again.
package app

// Package state holds the data shared between the watch poller and the
// dashboard.
//
// The poller is the single writer; the UI reads snapshots on its own tick.
//
//	store := &state.Store{}
//	store.Update(runs, nil) // success replaces the runs
//	store.Update(nil, err)  // failure keeps the runs and counts the failure
//	snap := store.Snapshot()
//
// Snapshots are copies, so the UI may hold on to one while the poller keeps
// writing. Two consecutive failures mark the server offline.
package state

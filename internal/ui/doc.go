// Package ui renders the watch dashboard with Bubble Tea.
//
// The model never talks to the server. It re-reads a state.Store on a short
// tick and draws one table row per run (id, status, simulation time and the
// last per-run error), a header with status counts and connection state, and
// a detail line for the highlighted run. The poller in package app keeps the
// store fresh.
//
// Keys: j/k move, g/G jump, t cycles the color theme (saved to the prefs
// file), h or ? shows help, q quits.
package ui

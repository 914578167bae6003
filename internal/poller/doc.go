// Package poller waits for a run to reach a status.
package poller

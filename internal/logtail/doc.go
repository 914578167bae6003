// Package logtail extracts the last lines of a log.
//
// Run error logs can hold a full simulation traceback. Lines keeps a ring
// buffer of maxLines entries, so memory stays O(maxLines) however long the
// input is, and the lines come back in their original order.
//
//	lines := logtail.Tail(errorLog, 40)
package logtail

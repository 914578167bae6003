// Package fanout runs one operation over many inputs with bounded
// concurrency while keeping results aligned with their inputs.
package fanout

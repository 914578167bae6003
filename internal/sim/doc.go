// Package sim holds the domain vocabulary shared by the protocol dialects:
// identifiers, points, run statuses, the error taxonomy, and the Backend
// interface each dialect implements.
//
// # Errors
//
// Three error kinds are exposed and can be told apart with errors.As:
//
//   - ClientError: local failures (bad arguments, unknown point names,
//     connection problems, wait timeouts). Only KindNetwork is transient.
//   - APIError: the server rejected the request with a status >= 400.
//     Never retried.
//   - SimulationError: the run itself entered the error state. Carries the
//     run's error log.
package sim

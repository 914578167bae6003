// Package alfalfa is a client for the Alfalfa building simulation server.
//
// A Client uploads models, creates runs from them, starts, advances and stops
// those runs, and reads and writes their points by name:
//
//	c, err := alfalfa.New("http://localhost")
//	run, err := c.Submit(ctx, "models/small_office")
//	err = c.Start(ctx, run, alfalfa.StartParams{Start: start, End: end, ExternalClock: true})
//	err = c.SetInputs(ctx, run, map[string]any{"Zone Setpoint": 22.0})
//	err = c.Advance(ctx, run)
//	outputs, err := c.Outputs(ctx, run)
//
// Start, Stop, Submit and CreateRun wait for the resulting status unless
// NoWait is passed. Every run-scoped operation has a Many variant that runs
// it over a batch with bounded concurrency.
//
// Failures come in three kinds, told apart with errors.As:
//
//   - *ClientError: a bad argument, an unknown point name, a network failure,
//     or a wait that timed out. Only the network kind is transient.
//   - *APIError: the server answered with a status >= 400.
//   - *SimulationError: the run entered the error state; it carries the log.
//
// Batch calls wrap the first failure in an *ItemError naming the input.
package alfalfa

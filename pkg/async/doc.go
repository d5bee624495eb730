// Package async provides a minimal Future abstraction for running
// independent remote calls concurrently and collecting their results.
//
// The dashboard uses it to fan out per-ticker quote fetches: one Future per
// ticker, each awaited individually so a single failed call degrades to a
// placeholder instead of aborting the whole view.
//
//	future := async.Async(ctx, ticker, client.Results)
//	quote, err := future.Await()
package async

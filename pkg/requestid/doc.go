// Package requestid propagates request correlation identifiers between the
// API client, its logs, and HTTP handlers.
//
// The client stores the ID it sends in the outgoing request context; the
// logger extractor attaches it to every log record emitted while the call is
// in flight, and the middleware lets an HTTP server reuse a client-supplied
// "X-Request-ID" header (or mint a fresh UUIDv4) and echo it back.
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	id := requestid.FromContext(ctx)
package requestid

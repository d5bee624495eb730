// Package apiclient implements the HTTP contract of the stock-dashboard
// backend: credential exchange, registration, and the authorized user
// operations. It is transport-only; identity state lives in the session
// package, which drives this client.
//
// Every backend failure is normalized into the package error taxonomy
// before it reaches a caller:
//
//   - ErrTransport wraps network failures that happened before a response
//     arrived.
//   - RejectedError carries the HTTP status and the backend's structured
//     reason ({"detail": ...}) verbatim when one was supplied, or a message
//     synthesized from the status otherwise. It unwraps to ErrServerRejected
//     and, where the status maps to one, a more specific sentinel
//     (ErrUnauthorized, ErrForbidden, ErrNotFound, ErrValidation,
//     ErrConflict).
//
// Raw *url.Error or decoding errors never escape. The client performs no
// retries; callers decide.
//
// Authorization headers are not this package's concern: wire a
// bearer.Transport into the http.Client passed via WithHTTPClient.
//
// # Usage
//
//	client, err := apiclient.New("http://localhost:8000",
//	    apiclient.WithHTTPClient(&http.Client{Transport: bearer.New(src)}),
//	)
//	resp, err := client.Login(ctx, "alice", "secret1")
//	if errors.Is(err, apiclient.ErrUnauthorized) {
//	    // bad credentials
//	}
package apiclient

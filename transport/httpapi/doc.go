// Package httpapi provides the HTTP side of the Stone Scissors Paper client:
// the request normalizer middleware and the game API client built on it.
//
// Request Normalizer:
//
// Normalizer is an http.RoundTripper placed in front of every game API call.
// Outgoing requests without a Content-Type get application/json unless the
// body is binary or multipart. Every failed request (non-2xx status or
// transport error) produces exactly one Notifier call, using the server's
// "message" field when present and "Error Code: <status>" otherwise. The
// response or error is then handed back unchanged.
//
// Client:
//
// Client implements service.GameAPI against the REST endpoints:
//
//	POST /game/start            start a session
//	POST /game/play             play a move in a session
//	GET  /game/session/{id}     fetch session statistics
//	GET  /game/moves            list accepted moves
//	GET  /game/rules            plain-text rules
//
// Non-2xx responses are returned as *APIError. A 404 naming an unknown
// session matches service.ErrSessionNotFound through errors.Is.
//
// Usage:
//
//	notifier := httpapi.NewWriterNotifier(os.Stderr, nil)
//	client := httpapi.NewClient("http://localhost:8080/api", notifier)
//	resp, err := client.StartGame(ctx)
package httpapi

// Package services is the transport layer between libmirror and the remote music service.
//
// # Raw Access
//
// [APIService] performs raw GET and POST requests against the configured base URL and
// returns [APIResponse] values without interpreting the status. It doubles as the
// poster for mutation batches.
//
// # Feeds
//
// [MusicService] exposes one page method per remote collection. Every feed is a POST of
//
//	{"start-token": "<cursor>", "max-results": 1000}
//
// answered by
//
//	{"nextPageToken": "<cursor>", "data": {"items": [...]}}
//
// where an absent nextPageToken marks the final page.
//
// # Authentication
//
// [NewHTTPClient] wraps a static bearer token with [oauth2.StaticTokenSource] and limits
// request rate with [rate.Limiter]. Obtaining the token is out of scope.
//
// # Error Handling
//
// Feed methods return typed errors from the shared package:
//   - [shared.TransportError] : the request never produced a response
//   - [shared.ProtocolError] : non-2xx status or unparseable body
//   - [shared.ErrTrackNotFound] : direct track fetch for an unknown id
package services

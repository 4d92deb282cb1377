// Package raven implements the driven query port against a RavenDB server.
//
// A collection is fetched with a single RQL query posted to
// /databases/{db}/queries. Referenced documents named by the collection's
// include paths are requested in the same round trip and returned in the
// response's Includes map.
//
// # Change tokens
//
// When the caller passes the etag of a previous result it is sent as
// If-None-Match. The server then answers 304 Not Modified if the result
// set is unchanged and the client returns an empty result carrying the etag.
//
// # Authentication
//
// Secured servers require mutual TLS. The client certificate and private key
// are PEM-encoded and must be provided together.
//
// # Throttling
//
// Requests pass through a token bucket (golang.org/x/time/rate). A server
// Retry-After answer additionally holds back the next request until the
// given time. Failed requests are never retried.
package raven

// Package auth resolves bearer tokens to user contexts and provides the
// authorization guard middleware. Token verification pins a single
// signing algorithm; permission lookups go through the injected cache
// with a database fallback, so a cache miss degrades to a query, never
// to a denied or granted answer it should not give.
package auth

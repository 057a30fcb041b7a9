// Package middleware carries the gin middleware shared by the REST and
// websocket surfaces.
package middleware

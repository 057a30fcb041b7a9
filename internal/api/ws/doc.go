// Package ws carries the two websocket surfaces: the inbound native
// event stream and the outbound session push to the presentation layer.
package ws

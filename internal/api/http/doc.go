// Package http contains the REST handlers: session state and intents
// for the presentation layer, runtime settings, health, and the
// dev-only facade.
package http

// Package apps tracks app-identifier membership sets: which packages the
// user monitors for intervention, and which packages are launcher/home
// screens or our own surface and therefore never meaningful.
//
// The launcher set ships with built-in entries for major OEM variants
// and can be extended from a TOML seed file at startup. The monitored
// set is runtime-mutable through the settings API.
package apps

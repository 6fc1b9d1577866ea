// Package web serves the admin HTTP interface: registration of the first
// administrator, login, haiku creation and slicer start/stop.
//
// Routes are mounted on a chi router. Sessions live server-side and are
// referenced by a random token cookie with a sliding lifetime.
package web

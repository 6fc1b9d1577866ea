// Package logx is haikuadmin's structured logging on top of zerolog.
//
// Console output is human-readable with a short caller; the optional file
// sink gets one JSON object per line.
package logx

// Package serialize renders a *dbc.Network into external text formats: the
// DBC grammar dbcfile.Parse reads, a C header of per-message and per-signal
// #define constants, and a plain human-readable summary.
package serialize

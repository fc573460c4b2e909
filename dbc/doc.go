// Package dbc implements the in-memory network model for the DBC vehicle-bus
// database format together with the signal decode engine that extracts and
// physically interprets signals from a raw CAN payload.
//
// All entities are value-like: construction validates an entity once, and
// thereafter the only supported mutation is Network.Merge or wholesale
// replacement. Cross-entity references are resolved by name, never by
// pointer, so that a Network can be copied or merged without dangling
// references.
package dbc

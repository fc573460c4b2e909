package dbc

// BitTiming carries the baud rate and bus timing register values a network
// was configured with. It has no invariants beyond its field types.
type BitTiming struct {
	Baudrate uint64
	BTR1     uint64
	BTR2     uint64
}

package proto

const (
	// MaxTrace is the number of trace entries a potato record can carry.
	// Entries past this are dropped, never wrapped.
	MaxTrace = 512

	// RecordSize is the encoded size of a PotatoRecord: hops, trace length and
	// MaxTrace trace entries, each 4 bytes.
	RecordSize = 4 + 4 + 4*MaxTrace

	// ShutdownHops is the hop count of the potato the coordinator broadcasts to
	// end the game. It is never relayed between players and never carries a
	// trace.
	ShutdownHops = -2
	// InvalidHops marks a potato that must be discarded by whoever receives it.
	// Any negative hop count other than ShutdownHops is treated the same way.
	InvalidHops = -1

	// ShutdownAck is the value a player sends to acknowledge the end of the
	// game.
	ShutdownAck = 1

	// GameOverText is sent to every player after the shutdown potato unless the
	// coordinator is configured with a different message.
	GameOverText = "Game over. Shutting down..."

	// MaxTextLen is the longest text message that fits behind a 16-bit length.
	MaxTextLen = 1<<16 - 1
)

// Package proto encapsulates the messages exchanged between a hotpotato
// coordinator and its players, as well as the functions for reading and
// writing them off the wire.
//
// Every scalar is a fixed-width big-endian integer. Text is a 16-bit length
// followed by that many bytes of UTF-8.
//
// The setup exchange between P, a player, and C, the coordinator, is the
// following:
//
// P sends 'PlayerPort' (uint16) to C
// C sends 'OwnIdentity' (uint16) to P
// C sends 'PlayerCount' (uint16) to P
// C sends 'NeighborInfoBlock' (text) to P, only if PlayerCount > 1
//
// After setup, a 'PotatoRecord' may travel over any connection. The record is
// always exactly RecordSize bytes so that a reader never has to guess where
// one ends.
//
// The shutdown exchange is:
//
// C sends 'PotatoRecord{Hops: ShutdownHops}' to every P
// C sends 'GameOverMessage' (text) to every P
// P sends 'ShutdownAck' (uint16) to C
// P closes the connection
//
// The coordinator does not look at the ack's contents. Either the ack or the
// close is enough for it to count the player as done, so a player that dies
// between the game over message and its ack cannot hang the coordinator.
//
// Earlier implementations copied the potato's in-memory layout onto the wire,
// which only worked between machines of the same byte order. PotatoRecord
// fields are big-endian like everything else.
package proto

// Package hotpotato plays the hot potato game over TCP.
//
// One Coordinator and N Players take part. Players connect to the
// coordinator, which numbers them 1 through N in arrival order and tells
// each one where its left and right neighbors listen. The players then
// connect to each other to form a ring.
//
// The coordinator releases a potato carrying a hop budget to a random
// player. Each player that receives it records itself in the potato's trace
// and, while hops remain, passes it to a random neighbor. The player holding
// it when the hops run out sends it back to the coordinator, which prints
// the trace and shuts the game down. Shutting down sends every player a
// shutdown potato and a game over message, then waits for each one to
// acknowledge or hang up.
//
// Rings of one and two players are supported. A single player keeps the
// potato for every hop. Two players share one connection and always pass to
// each other.
package hotpotato

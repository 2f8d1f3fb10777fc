package ws

// ChatRelay forwards inbound chat frames to the room that owns them.
// Implemented by the room supervisor; declared here so the hub does not
// depend on the room package.
type ChatRelay interface {
	Message(roomCode, playerID, text string) error
}

package room

// Broadcaster fans an event out to every subscriber of a room's topic.
// Delivery is best-effort and at-most-once; actors publish after mutating
// state and never wait on subscribers.
type Broadcaster interface {
	Broadcast(roomCode string, action string, data interface{})
}

package http

// CreateRoomRequest represents the payload for /create-room.
type CreateRoomRequest struct {
	PlayerName string `json:"player_name"`
}

// JoinRequest represents the payload for /join.
type JoinRequest struct {
	RoomCode   string `json:"room_code"`
	PlayerName string `json:"player_name"`
}

// RoomRequest carries only a room code (leave, ready).
type RoomRequest struct {
	RoomCode string `json:"room_code"`
}

// QuestTeamRequest represents the king toggling a quest member.
type QuestTeamRequest struct {
	RoomCode string `json:"room_code"`
	TargetID string `json:"target_id"`
}

// TeamVoteRequest represents an approve/reject ballot.
type TeamVoteRequest struct {
	RoomCode string `json:"room_code"`
	Vote     string `json:"vote"` // "approve" or "reject"
}

// MissionVoteRequest represents an assist/sabotage ballot.
type MissionVoteRequest struct {
	RoomCode string `json:"room_code"`
	Vote     string `json:"vote"` // "assist" or "sabotage"
}

// ChatRequest represents a chat line.
type ChatRequest struct {
	RoomCode string `json:"room_code"`
	Text     string `json:"text"`
}

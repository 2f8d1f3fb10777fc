package room

import "errors"

var (
	// Validation: reported to the caller, no state change.
	ErrNameInvalid = errors.New("name must be 4-12 characters: letters, digits, spaces, underscores")
	ErrNameTaken   = errors.New("name already taken in this room")
	ErrEmptyText   = errors.New("message text must not be empty")

	// State: the action does not fit the room's current state.
	ErrLobbyFull      = errors.New("lobby already has 5 players")
	ErrGameInProgress = errors.New("a game is already running for this room")
	ErrGameExists     = errors.New("a game is already registered for this room")
	ErrWrongStage     = errors.New("action not allowed in the current stage")
	ErrTeamFull       = errors.New("quest team already has the required size")

	// Authorization: wrong actor for the action. Logged as a potential
	// abuse signal where it surfaces.
	ErrNotKing       = errors.New("only the king may change the quest team")
	ErrNotOnQuest    = errors.New("only quest members may vote on the mission")
	ErrUnknownPlayer = errors.New("not a participant of this room")

	// Lifecycle: the actor behind the handle is gone.
	ErrRoomClosed = errors.New("room is closed")
)

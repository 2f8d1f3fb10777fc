package room

// Team is a player's allegiance, assigned once at game start.
type Team string

const (
	TeamGood Team = "good"
	TeamBad  Team = "bad"
)

// Stage is one phase of the in-game state machine.
type Stage string

const (
	StageInit   Stage = "init"
	StageParty  Stage = "party_assembling"
	StageVoting Stage = "voting"
	StageQuest  Stage = "quest"
	StageReveal Stage = "quest_reveal"
	StageEnd    Stage = "end"
)

// TeamVote is a ballot on the proposed quest team.
type TeamVote string

const (
	VoteApprove TeamVote = "approve"
	VoteReject  TeamVote = "reject"
)

// QuestVote is a ballot cast by quest members on the mission itself.
type QuestVote string

const (
	VoteAssist   QuestVote = "assist"
	VoteSabotage QuestVote = "sabotage"
)

// Outcome is the result of one completed quest.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFail    Outcome = "fail"
)

// Participant is one member of a lobby roster.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// RosterEntry is the frozen (id, name) pair handed from lobby to game.
type RosterEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Player is one member of a running game. Role stays private to the game
// actor; public snapshots use PlayerPublic.
type Player struct {
	ID      string
	Name    string
	Role    Team
	IsKing  bool
	OnQuest bool
}

// PlayerPublic is the broadcast-safe view of a Player.
type PlayerPublic struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsKing   bool   `json:"is_king"`
	OnQuest  bool   `json:"on_quest"`
	HasVoted bool   `json:"has_voted"`
}

// LobbySnapshot is the lobby's public state, pulled by late subscribers
// before they attach to the room topic.
type LobbySnapshot struct {
	Code         string        `json:"code"`
	Participants []Participant `json:"participants"`
	CountingDown bool          `json:"counting_down"`
	GameActive   bool          `json:"game_active"`
}

// GameSnapshot is the game's public state. Roles are omitted until the game
// is over.
type GameSnapshot struct {
	Code             string          `json:"code"`
	Stage            Stage           `json:"stage"`
	Players          []PlayerPublic  `json:"players"`
	Round            int             `json:"round"`
	RequiredTeamSize int             `json:"required_team_size"`
	QuestOutcomes    []Outcome       `json:"quest_outcomes"`
	TeamRejections   int             `json:"team_rejections"`
	Winner           Team            `json:"winner,omitempty"`
	Roles            map[string]Team `json:"roles,omitempty"` // populated at StageEnd only
}

// RoomInfo is one row of the room listing.
type RoomInfo struct {
	Code  string         `json:"code"`
	Lobby *LobbySnapshot `json:"lobby,omitempty"`
	Game  *GameSnapshot  `json:"game,omitempty"`
}

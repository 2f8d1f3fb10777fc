package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureLobbyReturnsExistingActor(t *testing.T) {
	sup, _ := newTestSupervisor(testTimings())
	a := sup.EnsureLobby(testCode)
	b := sup.EnsureLobby(testCode)
	assert.Same(t, a, b)

	c := sup.EnsureLobby("XYZ789")
	assert.NotSame(t, a, c)
}

func TestRoomsListing(t *testing.T) {
	sup, _ := newTestSupervisor(testTimings())

	l := sup.EnsureLobby("AAAAAA")
	require.NoError(t, l.Join("id-0", "player 0"))
	_, err := sup.SpawnGame("BBBBBB", testRoster(5))
	require.NoError(t, err)

	rooms := sup.Rooms()
	require.Len(t, rooms, 2)

	byCode := map[string]RoomInfo{}
	for _, info := range rooms {
		byCode[info.Code] = info
	}

	require.Contains(t, byCode, "AAAAAA")
	require.NotNil(t, byCode["AAAAAA"].Lobby)
	assert.Len(t, byCode["AAAAAA"].Lobby.Participants, 1)
	assert.Nil(t, byCode["AAAAAA"].Game)

	require.Contains(t, byCode, "BBBBBB")
	require.NotNil(t, byCode["BBBBBB"].Game)
	assert.Len(t, byCode["BBBBBB"].Game.Players, 5)
}

func TestRoomsListingSkipsTerminatedRooms(t *testing.T) {
	sup, _ := newTestSupervisor(testTimings())
	sup.EnsureLobby("AAAAAA")

	waitFor(t, time.Second, func() bool {
		_, ok := sup.Lobby("AAAAAA")
		return !ok
	}, "lobby reap")

	assert.Empty(t, sup.Rooms())
}

func TestChatRelay(t *testing.T) {
	sup, bus := newTestSupervisor(testTimings())

	assert.ErrorIs(t, sup.Message(testCode, "id-0", "hello"), ErrRoomClosed)

	_, err := sup.SpawnGame(testCode, testRoster(5))
	require.NoError(t, err)

	require.NoError(t, sup.Message(testCode, "id-0", "hello"))
	chat, ok := bus.last("chat")
	require.True(t, ok)
	assert.Equal(t, "player 0", chat.Data.(map[string]interface{})["from"])

	assert.ErrorIs(t, sup.Message(testCode, "stranger", "hi"), ErrUnknownPlayer)
}

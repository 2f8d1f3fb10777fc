package http

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionPlayerKey = "player_id"

// PlayerID returns the opaque per-browser-session identity, minting one on
// first contact. The core trusts it as given; it is unique per session,
// not per room.
func PlayerID(c *gin.Context) string {
	sess := sessions.Default(c)
	if v, ok := sess.Get(sessionPlayerKey).(string); ok && v != "" {
		return v
	}
	id := uuid.NewString()
	sess.Set(sessionPlayerKey, id)
	_ = sess.Save()
	return id
}

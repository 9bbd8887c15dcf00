package handlers

import (
	"encoding/json"
	"time"

	"github.com/pocketplan/budget-api/middleware"
	"github.com/pocketplan/budget-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const sessionUserKey = "user_id"

// WSHandler pushes budget changes to the signed-in user's open clients.
type WSHandler struct {
	M *melody.Melody
}

type totalChangedMessage struct {
	Type  string          `json:"type"`
	Total decimal.Decimal `json:"total"`
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024
	// Keep-alive for hosted proxies that drop idle connections.
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get(sessionUserKey)
		utils.Logger().Debug("websocket connected", zap.String("user_id", utils.MaskID(toString(userID))))
	})
	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get(sessionUserKey)
		utils.Logger().Debug("websocket disconnected", zap.String("user_id", utils.MaskID(toString(userID))))
	})
	m.HandleError(func(s *melody.Session, err error) {
		utils.Logger().Warn("websocket error", zap.Error(err))
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades an authenticated request and tags the session with the user.
func (h *WSHandler) HandleWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	keys := map[string]interface{}{sessionUserKey: userID}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		utils.Logger().Error("failed to upgrade websocket", zap.Error(err))
	}
}

// NotifyTotal sends the user's new total budgeted amount to their clients.
func (h *WSHandler) NotifyTotal(userID string, total decimal.Decimal) {
	msg, err := json.Marshal(totalChangedMessage{Type: "budget_total_changed", Total: total})
	if err != nil {
		return
	}
	err = h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, exists := s.Get(sessionUserKey)
		return exists && id == userID
	})
	if err != nil {
		utils.Logger().Warn("failed to broadcast total", zap.String("user_id", utils.MaskID(userID)), zap.Error(err))
	}
}

// CloseUser ends every open session of userID, used on sign-out.
func (h *WSHandler) CloseUser(userID string) {
	sessions, err := h.M.Sessions()
	if err != nil {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "signed out")
	for _, s := range sessions {
		if id, ok := s.Get(sessionUserKey); ok && id == userID {
			_ = s.CloseWithMsg(msg)
		}
	}
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

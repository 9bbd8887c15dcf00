package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/pocketplan/budget-api/models"
)

var ErrMissingUserID = errors.New("message has no user id")

// UserConfirmedMessage announces that a sign-up was confirmed and the
// profile record can be created.
type UserConfirmedMessage struct {
	UserID    string                 `json:"user_id"`
	Email     string                 `json:"email"`
	Metadata  *models.SignupMetadata `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func NewUserConfirmedMessage(user models.ConfirmedUser) *UserConfirmedMessage {
	return &UserConfirmedMessage{
		UserID:    user.UserID,
		Email:     user.Email,
		Metadata:  user.Metadata,
		Timestamp: time.Now().UTC(),
	}
}

func (m *UserConfirmedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *UserConfirmedMessage) ConfirmedUser() models.ConfirmedUser {
	return models.ConfirmedUser{UserID: m.UserID, Email: m.Email, Metadata: m.Metadata}
}

// UserConfirmedMessageFromJSON decodes a message and rejects one without a user id.
func UserConfirmedMessageFromJSON(data []byte) (*UserConfirmedMessage, error) {
	var msg UserConfirmedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID == "" {
		return nil, ErrMissingUserID
	}
	return &msg, nil
}

// Package push receives change notifications from the server over a
// websocket. The connection is independent of the connectivity monitor:
// losing it says nothing about the record store.
package push

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/citybreaks/internal/client/models"
	"github.com/dmitrijs2005/citybreaks/internal/common"
)

type MessageType string

const (
	TypeCreated       MessageType = "created"
	TypeUpdated       MessageType = "updated"
	TypeAuthorization MessageType = "authorization"
)

// Message is the wire envelope in both directions.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type authorizationPayload struct {
	Token string `json:"token"`
}

// Notification is a validated created/updated message.
type Notification struct {
	Type   MessageType
	Record models.Record
}

// NewAuthorization builds the handshake message sent right after connecting.
func NewAuthorization(token string) (Message, error) {
	b, err := json.Marshal(authorizationPayload{Token: token})
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TypeAuthorization, Payload: b}, nil
}

// ParseNotification decodes and validates an incoming frame. Anything other
// than a created/updated message carrying a valid record is rejected.
func ParseNotification(data []byte) (Notification, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Notification{}, fmt.Errorf("%w: push frame: %v", common.ErrValidation, err)
	}

	switch m.Type {
	case TypeCreated, TypeUpdated:
	default:
		return Notification{}, fmt.Errorf("%w: unexpected push type %q", common.ErrValidation, m.Type)
	}

	rec, err := models.DecodeRecord(m.Payload)
	if err != nil {
		return Notification{}, fmt.Errorf("push %s payload: %w", m.Type, err)
	}
	if rec.ID == "" {
		return Notification{}, fmt.Errorf("%w: push %s payload without id", common.ErrValidation, m.Type)
	}

	return Notification{Type: m.Type, Record: rec}, nil
}

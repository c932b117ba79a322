package service

import (
	"fmt"

	"deposito-pos/internal/session"
	"deposito-pos/internal/ws"
)

type actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func actorOf(s session.Session) actor {
	return actor{ID: s.AccountID.String(), Name: s.Name, Email: s.Email}
}

// notify broadcasts a domain event carrying who did it.
func notify(hub ws.Broadcaster, eventType, action string, s session.Session, data any, format string, args ...any) {
	if hub == nil {
		return
	}
	hub.BroadcastJSON(ws.Event{
		Type:    eventType,
		Action:  action,
		User:    s.Name,
		Message: fmt.Sprintf(format, args...),
		Data: map[string]any{
			"actor":   actorOf(s),
			"payload": data,
		},
	})
}

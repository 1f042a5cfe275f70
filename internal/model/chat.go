package model

import "time"

// Chat is a two-party conversation. The participant pair is stable for the
// chat's lifetime and identified by a canonical PairKey, which makes
// find-or-create idempotent regardless of which side initiates.
type Chat struct {
	ID               string                 `json:"chatId"`
	PairKey          string                 `json:"-"`
	ParticipantIDs   []string               `json:"participantIds"`
	ParticipantNames map[string]string      `json:"participantNames"`
	ParticipantKinds map[string]AccountKind `json:"participantTypes"`
	LastMessage      string                 `json:"lastMessage"`
	LastMessageTime  time.Time              `json:"lastMessageTime"`
	UnreadCount      map[string]int64       `json:"unreadCount"`
}

// ChatPairKey builds the canonical identifier of an unordered participant
// pair: the smaller id first.
func ChatPairKey(aID, bID string) string {
	if bID < aID {
		aID, bID = bID, aID
	}
	return aID + ":" + bID
}

// OtherParticipantID returns the id of the participant other than userID.
func (c *Chat) OtherParticipantID(userID string) string {
	for _, id := range c.ParticipantIDs {
		if id != userID {
			return id
		}
	}
	return ""
}

// OtherParticipantName returns the display name of the other participant.
func (c *Chat) OtherParticipantName(userID string) string {
	if name, ok := c.ParticipantNames[c.OtherParticipantID(userID)]; ok {
		return name
	}
	return "Unknown"
}

// OtherParticipantKind returns the account kind of the other participant.
func (c *Chat) OtherParticipantKind(userID string) AccountKind {
	if kind, ok := c.ParticipantKinds[c.OtherParticipantID(userID)]; ok {
		return kind
	}
	return AccountKindStudent
}

// HasParticipant checks if userID belongs to the conversation
func (c *Chat) HasParticipant(userID string) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

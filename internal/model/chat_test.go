package model

import "testing"

func TestChatPairKeySymmetric(t *testing.T) {
	if ChatPairKey("a", "b") != ChatPairKey("b", "a") {
		t.Error("pair key must not depend on argument order")
	}

	if got := ChatPairKey("beta", "alpha"); got != "alpha:beta" {
		t.Errorf("ChatPairKey = %q, want %q", got, "alpha:beta")
	}
}

func TestChatOtherParticipant(t *testing.T) {
	chat := &Chat{
		ParticipantIDs: []string{"s1", "t1"},
		ParticipantNames: map[string]string{
			"s1": "Alice",
			"t1": "Bob",
		},
		ParticipantKinds: map[string]AccountKind{
			"s1": AccountKindStudent,
			"t1": AccountKindTutor,
		},
	}

	if got := chat.OtherParticipantID("s1"); got != "t1" {
		t.Errorf("OtherParticipantID = %q, want t1", got)
	}
	if got := chat.OtherParticipantName("s1"); got != "Bob" {
		t.Errorf("OtherParticipantName = %q, want Bob", got)
	}
	if got := chat.OtherParticipantKind("s1"); got != AccountKindTutor {
		t.Errorf("OtherParticipantKind = %q, want tutor", got)
	}
}

func TestChatOtherParticipantUnknown(t *testing.T) {
	chat := &Chat{ParticipantIDs: []string{"s1", "t1"}}

	if got := chat.OtherParticipantName("s1"); got != "Unknown" {
		t.Errorf("OtherParticipantName without names = %q, want Unknown", got)
	}
}

func TestChatHasParticipant(t *testing.T) {
	chat := &Chat{ParticipantIDs: []string{"s1", "t1"}}

	if !chat.HasParticipant("s1") || !chat.HasParticipant("t1") {
		t.Error("expected both participants to be members")
	}
	if chat.HasParticipant("stranger") {
		t.Error("expected stranger not to be a member")
	}
}

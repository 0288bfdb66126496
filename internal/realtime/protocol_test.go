package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentFrame struct {
	to      string
	payload map[string]interface{}
}

// fakeSender records every frame the protocol emits.
type fakeSender struct {
	frames []sentFrame
}

func (s *fakeSender) Send(connectionID string, payload []byte) error {
	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return err
	}
	s.frames = append(s.frames, sentFrame{to: connectionID, payload: decoded})
	return nil
}

func (s *fakeSender) ofType(eventType string) []sentFrame {
	var out []sentFrame
	for _, f := range s.frames {
		if f.payload["type"] == eventType {
			out = append(out, f)
		}
	}
	return out
}

func (s *fakeSender) reset() { s.frames = nil }

func newTestProtocol() (*Protocol, *Registry, *fakeSender) {
	registry := NewRegistry()
	sender := &fakeSender{}
	return NewProtocol(registry, sender, nil), registry, sender
}

func TestProtocol_JoinBroadcastsRosterAndAnnouncement(t *testing.T) {
	p, _, sender := newTestProtocol()

	p.HandleJoin("c1", "study", "ana")
	p.HandleJoin("c2", "study", "bo")

	// Second join: roster to both members, announcement to ana only.
	rosters := sender.ofType(EventRoomUsers)
	require.NotEmpty(t, rosters)
	last := rosters[len(rosters)-1]
	users := last.payload["users"].([]interface{})
	assert.Len(t, users, 2)

	rosterTargets := map[string]bool{}
	for _, f := range rosters[1:] {
		rosterTargets[f.to] = true
	}
	assert.True(t, rosterTargets["c1"])
	assert.True(t, rosterTargets["c2"])

	joined := sender.ofType(EventUserJoined)
	require.Len(t, joined, 1)
	assert.Equal(t, "c1", joined[0].to)
	assert.Equal(t, "bo", joined[0].payload["username"])
}

func TestProtocol_JoinFirstParticipantGetsNoAnnouncement(t *testing.T) {
	p, _, sender := newTestProtocol()

	p.HandleJoin("c1", "study", "ana")

	rosters := sender.ofType(EventRoomUsers)
	require.Len(t, rosters, 1)
	assert.Equal(t, "c1", rosters[0].to)
	assert.Empty(t, sender.ofType(EventUserJoined))
}

func TestProtocol_DuplicateJoinIsIdempotent(t *testing.T) {
	p, registry, sender := newTestProtocol()

	p.HandleJoin("c1", "study", "ana")
	p.HandleJoin("c2", "study", "bo")
	sender.reset()

	p.HandleJoin("c1", "study", "ana")

	assert.Len(t, registry.List("study"), 2)

	// Roster re-sent to the duplicate joiner only; no announcement to anyone.
	rosters := sender.ofType(EventRoomUsers)
	require.Len(t, rosters, 1)
	assert.Equal(t, "c1", rosters[0].to)
	assert.Empty(t, sender.ofType(EventUserJoined))
}

func TestProtocol_JoinValidation(t *testing.T) {
	p, registry, sender := newTestProtocol()

	p.HandleJoin("c1", "", "ana")
	p.HandleJoin("c1", "study", "")

	assert.Equal(t, 0, registry.RoomCount(), "no state mutated on invalid join")
	errs := sender.ofType(EventError)
	require.Len(t, errs, 2)
	for _, f := range errs {
		assert.Equal(t, "c1", f.to)
		assert.Equal(t, "bad_request", f.payload["code"])
	}
}

func TestProtocol_MessageReachesAllIncludingSender(t *testing.T) {
	p, _, sender := newTestProtocol()
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p.WithClock(func() time.Time { return fixed })

	p.HandleJoin("c1", "study", "ana")
	p.HandleJoin("c2", "study", "bo")
	p.HandleJoin("c3", "study", "cy")
	sender.reset()

	p.HandleMessage("c1", "study", "ana", "hello")

	msgs := sender.ofType(EventReceiveMessage)
	require.Len(t, msgs, 3)

	targets := map[string]int{}
	for _, f := range msgs {
		targets[f.to]++
		assert.Equal(t, "ana", f.payload["username"])
		assert.Equal(t, "hello", f.payload["message"])

		stamped, err := time.Parse(time.RFC3339, f.payload["time"].(string))
		require.NoError(t, err)
		assert.True(t, stamped.Equal(fixed), "timestamp is server-assigned")
	}
	assert.Equal(t, map[string]int{"c1": 1, "c2": 1, "c3": 1}, targets,
		"every participant, sender included, receives the message exactly once")
}

func TestProtocol_MessageRequiresMembership(t *testing.T) {
	p, _, sender := newTestProtocol()
	p.HandleJoin("c1", "study", "ana")
	sender.reset()

	p.HandleMessage("c2", "study", "bo", "sneaky")

	assert.Empty(t, sender.ofType(EventReceiveMessage))
	errs := sender.ofType(EventError)
	require.Len(t, errs, 1)
	assert.Equal(t, "c2", errs[0].to)
	assert.Equal(t, "not_joined", errs[0].payload["code"])
}

func TestProtocol_TypingExcludesSender(t *testing.T) {
	p, _, sender := newTestProtocol()
	p.HandleJoin("c1", "study", "ana")
	p.HandleJoin("c2", "study", "bo")
	sender.reset()

	p.HandleTyping("c1", "study", "ana")

	typing := sender.ofType(EventUserTyping)
	require.Len(t, typing, 1)
	assert.Equal(t, "c2", typing[0].to)
	assert.Equal(t, "ana", typing[0].payload["username"])
}

func TestProtocol_DisconnectBroadcastsToEachAffectedRoomOnce(t *testing.T) {
	p, registry, sender := newTestProtocol()
	p.HandleJoin("c1", "a", "ana")
	p.HandleJoin("c1", "b", "ana")
	p.HandleJoin("c2", "a", "bo")
	p.HandleJoin("c2", "b", "bo")
	p.HandleJoin("c3", "quiet", "cy")
	sender.reset()

	p.HandleDisconnect("c1")

	assert.False(t, registry.Contains("a", "c1"))
	assert.False(t, registry.Contains("b", "c1"))

	rosters := sender.ofType(EventRoomUsers)
	// c2 remains alone in rooms a and b: exactly one roster frame per room.
	require.Len(t, rosters, 2)
	rooms := map[string]bool{}
	for _, f := range rosters {
		assert.Equal(t, "c2", f.to)
		rooms[f.payload["roomId"].(string)] = true
		users := f.payload["users"].([]interface{})
		assert.Len(t, users, 1)
	}
	assert.True(t, rooms["a"])
	assert.True(t, rooms["b"])
	assert.False(t, rooms["quiet"], "untouched rooms get no broadcast")
}

func TestProtocol_DisconnectWithoutJoinIsSilent(t *testing.T) {
	p, _, sender := newTestProtocol()

	p.HandleDisconnect("ghost")

	assert.Empty(t, sender.frames)
}

func TestProtocol_HandleFrameDispatch(t *testing.T) {
	p, registry, sender := newTestProtocol()

	p.HandleFrame("c1", []byte(`{"type":"join-room","roomId":"study","username":"ana"}`))
	require.True(t, registry.Contains("study", "c1"))

	p.HandleFrame("c1", []byte(`{"type":"send-message","roomId":"study","username":"ana","message":"hi"}`))
	assert.Len(t, sender.ofType(EventReceiveMessage), 1)

	p.HandleFrame("c1", []byte(`{"type":"typing","roomId":"study","username":"ana"}`))
	// Sole participant: typing is announced to nobody.
	assert.Empty(t, sender.ofType(EventUserTyping))
}

func TestProtocol_HandleFrameRejectsGarbage(t *testing.T) {
	p, _, sender := newTestProtocol()

	p.HandleFrame("c1", []byte(`{not json`))
	p.HandleFrame("c1", []byte(`{"type":"self-destruct"}`))

	errs := sender.ofType(EventError)
	require.Len(t, errs, 2)
	assert.Equal(t, "bad_request", errs[0].payload["code"])
	assert.Equal(t, "unsupported_type", errs[1].payload["code"])
}

func TestProtocol_JoinDisconnectCountsBalance(t *testing.T) {
	p, registry, _ := newTestProtocol()

	for i, id := range []string{"c1", "c2", "c3", "c4"} {
		p.HandleJoin(id, "study", string(rune('a'+i)))
	}
	p.HandleDisconnect("c2")
	p.HandleDisconnect("c4")

	members := registry.List("study")
	require.Len(t, members, 2)
	assert.Equal(t, "c1", members[0].ConnectionID)
	assert.Equal(t, "c3", members[1].ConnectionID)
}

package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"chatsphere/domain"
	"chatsphere/lifecycle"
)

type testRoomModerationSuite struct {
	BaseEngineSuite
}

func TestRoomModerationSuite(t *testing.T) {
	suite.Run(t, &testRoomModerationSuite{})
}

func (s *testRoomModerationSuite) TestFullModerationFlow() {
	s.Identity.Register("alice", "Alice")
	s.Identity.Register("bob", "Bob")

	var roomID string

	s.Step("Create a room and join")
	{
		room, err := s.Manager.CreateRoom(lifecycle.CreateRoomRequest{
			Name: "General", HostID: "alice", Type: domain.RoomPublic,
		})
		s.Require().NoError(err)
		roomID = room.ID
		s.Require().Equal(`Alice created the public room "General"!`, room.Messages[0].Text)

		_, err = s.Manager.JoinRoom(roomID, "bob")
		s.Require().NoError(err)
	}

	s.Step("Clean message goes through untouched")
	{
		outcome, err := s.Service.PostMessage(roomID, message("bob", "hello there, how is everyone?"))
		s.Require().NoError(err)
		s.Require().True(outcome.Delivered)
		s.Require().Empty(outcome.Violations)
		s.Require().Empty(s.Notices.NoticesFor("bob"))
	}

	s.Step("Scam messages escalate from mute to ban")
	{
		for i := 0; i < 2; i++ {
			outcome, err := s.Service.PostMessage(roomID, message("bob", "urgent action required, wire transfer needed"))
			s.Require().NoError(err)
			s.Require().False(outcome.Delivered, "critical violations suppress the message")
			s.Require().Equal([]domain.Action{domain.ActionMute}, outcome.Actions)
		}

		outcome, err := s.Service.PostMessage(roomID, message("bob", "urgent action required, wire transfer needed"))
		s.Require().NoError(err)
		s.Require().False(outcome.Delivered)
		s.Require().Equal([]domain.Action{domain.ActionBan}, outcome.Actions)

		history, err := s.Ledger.GetHistory("bob")
		s.Require().NoError(err)
		s.Require().Equal(domain.StatusBanned, history.Status)
		s.Require().Len(history.Violations, 3)

		notices := s.Notices.NoticesFor("bob")
		s.Require().Len(notices, 3)
		s.Require().Contains(notices[2], "banned")
	}

	s.Step("Suppressed messages never reached the room")
	{
		room, err := s.Manager.GetRoom(roomID)
		s.Require().NoError(err)
		for _, msg := range room.Messages {
			s.Require().NotContains(msg.Text, "wire transfer")
		}
	}

	s.Step("Violations are searchable by detected text")
	{
		ids, err := s.Index.Search(context.Background(), "urgent", 10)
		s.Require().NoError(err)
		s.Require().Len(ids, 3)
	}

	s.Step("Host kicks the banned user")
	{
		s.Require().NoError(s.Manager.KickUser(roomID, "alice", "bob"))
		_, err := s.Manager.JoinRoom(roomID, "bob")
		s.Require().Error(err)

		room, err := s.Manager.GetRoom(roomID)
		s.Require().NoError(err)
		s.Require().False(room.HasParticipant("bob"))
		s.Require().True(room.IsKicked("bob"))
	}

	s.Step("Operator stats reflect the incident")
	{
		stats, err := s.Ledger.Stats(time.Now())
		s.Require().NoError(err)
		s.Require().Equal(3, stats.Total)
		s.Require().Equal(3, stats.ByType[domain.ViolationScam])
		s.Require().Equal(3, stats.BySeverity[domain.SeverityCritical])
	}
}

func (s *testRoomModerationSuite) TestOfficialRoomRetention() {
	s.Step("Official rooms accept messages into the supplemental log")
	msg := message("alice", "morning coffee crowd, anyone here?")
	outcome, err := s.Service.PostMessage("official-1", msg)
	s.Require().NoError(err)
	s.Require().True(outcome.Delivered)

	supplemental, err := s.Rooms.SupplementalMessages("official-1")
	s.Require().NoError(err)
	s.Require().Len(supplemental, 1)

	s.Step("Messages older than the retention period are pruned")
	old := domain.Message{
		ID: uuid.New(), Text: "from another era", SenderID: "bob",
		SentAt: time.Now().Add(-8 * 24 * time.Hour),
	}
	s.Require().NoError(s.Rooms.AppendSupplementalMessage("official-1", old))

	pruned, err := s.Rooms.PruneSupplementalBefore(time.Now().Add(-7 * 24 * time.Hour))
	s.Require().NoError(err)
	s.Require().Equal(1, pruned)

	supplemental, err = s.Rooms.SupplementalMessages("official-1")
	s.Require().NoError(err)
	s.Require().Len(supplemental, 1)
	s.Require().Equal(msg.Text, supplemental[0].Text)
}

func message(senderID, text string) domain.Message {
	return domain.Message{
		ID:       uuid.New(),
		Text:     text,
		SenderID: senderID,
		SentAt:   time.Now().UTC(),
	}
}

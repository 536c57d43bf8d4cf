package gateway

import (
	"github.com/covechat/cove/logger"
	"github.com/covechat/cove/service/store"
	"github.com/covechat/cove/tools/errs"
)

// handleJoinGuilds is the bulk sync after connect. The full target set
// (channel rooms plus guild rooms) is resolved before any join, so a
// resolution failure joins nothing; the join loop itself cannot fail.
func (s *Server) handleJoinGuilds(c *Client, _ *Frame) error {
	sess := c.sess

	ctx, cancel := s.resolveCtx()
	defer cancel()

	channels, err := s.opts.Membership.ChannelsForUser(ctx, sess.UserID)
	if err != nil {
		logger.Errorf("[gateway] resolve channels user=%s err=%v", sess.UserID, err)
		return errs.ErrResolution
	}
	guilds, err := s.opts.Membership.GuildsForUser(ctx, sess.UserID)
	if err != nil {
		logger.Errorf("[gateway] resolve guilds user=%s err=%v", sess.UserID, err)
		return errs.ErrResolution
	}

	for _, ch := range channels {
		s.joinChannelRoom(sess, ch.ID)
	}
	for _, g := range guilds {
		// Guild rooms carry guild-scoped events only; no lifecycle broadcast.
		s.rooms.Add(GuildRoom(g), sess.UserID, sess.ConnID)
	}
	logger.Infof("[gateway] synced user=%s channels=%d guilds=%d", sess.UserID, len(channels), len(guilds))
	return nil
}

func (s *Server) handleJoinChannel(c *Client, f *Frame) error {
	channelID, err := f.ChannelID()
	if err != nil {
		return err
	}
	sess := c.sess

	// Re-check membership per explicit join; bulk sync may be stale.
	ctx, cancel := s.resolveCtx()
	_, allowed, rerr := s.opts.Membership.ResolveChannel(ctx, sess.UserID, channelID)
	cancel()
	if rerr != nil {
		logger.Errorf("[gateway] resolve channel=%s user=%s err=%v", channelID, sess.UserID, rerr)
		return errs.ErrResolution
	}
	if !allowed {
		return errs.ErrForbidden
	}

	room := ChannelRoom(channelID)
	s.joinChannelRoom(sess, channelID)
	s.sendDirect(c, EvtChannelUsers, channelUsersPayload{
		ChannelID: channelID,
		Users:     s.snapshotRoom(room),
	})
	return nil
}

func (s *Server) handleLeaveChannel(c *Client, f *Frame) error {
	channelID, err := f.ChannelID()
	if err != nil {
		return err
	}
	sess := c.sess

	room := ChannelRoom(channelID)
	wasMember, userGone := s.rooms.Remove(room, sess.UserID, sess.ConnID)
	if !wasMember {
		// Leaving an un-joined room is a no-op.
		return nil
	}
	if userGone {
		s.typing.ClearUser(sess.UserID, []string{channelID})
		s.broadcastRoom(room, EvtUserLeft, userLeftPayload{
			UserID:   sess.UserID,
			Username: sess.Username,
		}, sess.ConnID)
	}
	return nil
}

func (s *Server) handleTypingStart(c *Client, f *Frame) error {
	channelID, err := f.ChannelID()
	if err != nil {
		return err
	}
	sess := c.sess

	// Typing trusts the room join that already passed authorization; a
	// sender not in the room gets refused instead of a database round trip.
	if !s.rooms.IsUserIn(ChannelRoom(channelID), sess.UserID) {
		return errs.ErrForbidden
	}

	s.typing.Start(channelID, sess.UserID)
	s.broadcastRoom(ChannelRoom(channelID), EvtUserTyping, typingPayload{
		UserID:    sess.UserID,
		Username:  sess.Username,
		ChannelID: channelID,
	}, sess.ConnID)
	return nil
}

func (s *Server) handleTypingStop(c *Client, f *Frame) error {
	channelID, err := f.ChannelID()
	if err != nil {
		return err
	}
	sess := c.sess

	if !s.typing.Stop(channelID, sess.UserID) {
		return nil
	}
	s.broadcastRoom(ChannelRoom(channelID), EvtUserStopTyping, stopTypingPayload{
		UserID:    sess.UserID,
		ChannelID: channelID,
	}, sess.ConnID)
	return nil
}

func (s *Server) handleJoinVoice(c *Client, f *Frame) error {
	channelID, err := f.ChannelID()
	if err != nil {
		return err
	}
	sess := c.sess

	ctx, cancel := s.resolveCtx()
	ch, allowed, rerr := s.opts.Membership.ResolveChannel(ctx, sess.UserID, channelID)
	cancel()
	if rerr != nil {
		logger.Errorf("[gateway] resolve voice=%s user=%s err=%v", channelID, sess.UserID, rerr)
		return errs.ErrResolution
	}
	if !allowed || ch.Kind != store.KindVoice {
		return errs.ErrForbidden
	}

	room := VoiceRoom(channelID)
	if s.rooms.Add(room, sess.UserID, sess.ConnID) {
		s.broadcastRoom(room, EvtUserJoinedVoice, voicePayload{
			UserID:    sess.UserID,
			Username:  sess.Username,
			Avatar:    sess.Avatar,
			ChannelID: channelID,
		}, sess.ConnID)
	}
	s.sendDirect(c, EvtChannelUsers, channelUsersPayload{
		ChannelID: channelID,
		Users:     s.snapshotRoom(room),
	})
	return nil
}

func (s *Server) handleLeaveVoice(c *Client, f *Frame) error {
	channelID, err := f.ChannelID()
	if err != nil {
		return err
	}
	sess := c.sess

	room := VoiceRoom(channelID)
	wasMember, userGone := s.rooms.Remove(room, sess.UserID, sess.ConnID)
	if !wasMember {
		return nil
	}
	if userGone {
		s.broadcastRoom(room, EvtUserLeftVoice, voicePayload{
			UserID:    sess.UserID,
			Username:  sess.Username,
			Avatar:    sess.Avatar,
			ChannelID: channelID,
		}, sess.ConnID)
	}
	return nil
}

// joinChannelRoom records the join and fires user_joined to the rest of the
// room only when the user newly appeared there, so a second device or a
// repeat join never double-broadcasts.
func (s *Server) joinChannelRoom(sess *Session, channelID string) {
	room := ChannelRoom(channelID)
	if s.rooms.Add(room, sess.UserID, sess.ConnID) {
		s.broadcastRoom(room, EvtUserJoined, userJoinedPayload{
			UserID:   sess.UserID,
			Username: sess.Username,
			Avatar:   sess.Avatar,
		}, sess.ConnID)
	}
}

// snapshotRoom lists the room's current members with display fields from
// presence. Members whose sessions vanished mid-snapshot are skipped.
func (s *Server) snapshotRoom(room RoomID) []RoomUser {
	userIDs := s.rooms.Users(room)
	out := make([]RoomUser, 0, len(userIDs))
	for _, id := range userIDs {
		username, avatar, ok := s.presence.Display(id)
		if !ok {
			continue
		}
		out = append(out, RoomUser{UserID: id, Username: username, Avatar: avatar})
	}
	return out
}

package gateway

import (
	"sync"

	"github.com/covechat/cove/tools/errs"
)

// This file is the EventFanoutPolicy surface: one addressing scheme shared by
// the socket handlers and the REST-side emitters, plus the process-wide IO
// handle REST request handlers use to reach it.

var (
	defaultMu sync.RWMutex
	defaultIO *Server
)

// SetDefault installs the process-wide broadcast handle. Called once from
// main after the gateway is constructed.
func SetDefault(s *Server) {
	defaultMu.Lock()
	defaultIO = s
	defaultMu.Unlock()
}

// Default returns the handle REST handlers emit through; nil before startup
// wiring completes.
func Default() *Server {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultIO
}

// broadcastRoom fans one event out to every connection in the room except
// excludeConn (empty string excludes nothing). Lifecycle events pass the
// originating connection; content events pass "".
func (s *Server) broadcastRoom(room RoomID, event string, data any, excludeConn string) {
	payload := encodeFrame(event, data)
	if payload == nil {
		return
	}
	connIDs := s.rooms.Conns(room)
	if len(connIDs) == 0 {
		return
	}
	clients := make([]*Client, 0, len(connIDs))
	for _, id := range connIDs {
		if id == excludeConn {
			continue
		}
		if sess := s.presence.GetByConn(id); sess != nil && sess.client != nil {
			clients = append(clients, sess.client)
		}
	}
	s.fanout.Broadcast(room, clients, payload)
}

func (s *Server) sendDirect(c *Client, event string, data any) {
	if payload := encodeFrame(event, data); payload != nil {
		c.enqueue(payload)
	}
}

func (s *Server) sendError(c *Client, err error) {
	s.sendDirect(c, EvtError, errorPayload{Message: errs.ClientMsg(err)})
}

func (s *Server) sendErrorMsg(c *Client, msg string) {
	s.sendDirect(c, EvtError, errorPayload{Message: msg})
}

// ---- REST-originated content events ----
//
// Content events include every connection in the room, the author's own
// included; clients de-duplicate by their user id.

func (s *Server) EmitNewMessage(channelID string, message any) {
	s.broadcastRoom(ChannelRoom(channelID), EvtNewMessage, message, "")
}

func (s *Server) EmitMessageEdited(channelID string, message any) {
	s.broadcastRoom(ChannelRoom(channelID), EvtMessageEdited, message, "")
}

func (s *Server) EmitMessageDeleted(channelID string, ref any) {
	s.broadcastRoom(ChannelRoom(channelID), EvtMessageDeleted, ref, "")
}

func (s *Server) EmitMessagePinned(channelID string, ref any) {
	s.broadcastRoom(ChannelRoom(channelID), EvtMessagePinned, ref, "")
}

func (s *Server) EmitMessageUnpinned(channelID string, ref any) {
	s.broadcastRoom(ChannelRoom(channelID), EvtMessageUnpinned, ref, "")
}

func (s *Server) EmitReactionAdded(channelID string, reaction any) {
	s.broadcastRoom(ChannelRoom(channelID), EvtReactionAdded, reaction, "")
}

func (s *Server) EmitReactionRemoved(channelID string, reaction any) {
	s.broadcastRoom(ChannelRoom(channelID), EvtReactionRemoved, reaction, "")
}

// EmitUserStatusChanged addresses the guild namespace, never a channel room.
func (s *Server) EmitUserStatusChanged(guildID string, status any) {
	s.broadcastRoom(GuildRoom(guildID), EvtUserStatusChanged, status, "")
}

// ---- REST-originated typing side-channel ----

// StartTyping is the REST twin of the typing_start socket event. It enforces
// the same room-membership gate and shares TypingState, so server-owned
// expiry covers both paths.
func (s *Server) StartTyping(userID, channelID string) error {
	room := ChannelRoom(channelID)
	if !s.rooms.IsUserIn(room, userID) {
		return errs.ErrForbidden
	}
	username, _, ok := s.presence.Display(userID)
	if !ok {
		return errs.ErrForbidden
	}
	s.typing.Start(channelID, userID)
	s.broadcastRoom(room, EvtUserTyping, typingPayload{
		UserID:    userID,
		Username:  username,
		ChannelID: channelID,
	}, "")
	return nil
}

// StopTyping clears the typing entry; a stop for a user who was not typing
// is a no-op, mirroring the socket handler.
func (s *Server) StopTyping(userID, channelID string) error {
	if !s.typing.Stop(channelID, userID) {
		return nil
	}
	s.broadcastRoom(ChannelRoom(channelID), EvtUserStopTyping, stopTypingPayload{
		UserID:    userID,
		ChannelID: channelID,
	}, "")
	return nil
}

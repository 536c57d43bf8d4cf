package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/covechat/cove/logger"
	"github.com/covechat/cove/service/auth"
	"github.com/covechat/cove/service/store"
	"github.com/covechat/cove/tools/errs"
	"github.com/covechat/cove/tools/ids"
	"github.com/covechat/cove/tools/safe"
)

// Options configures the gateway server. Zero values fall back to the same
// defaults the config package ships.
type Options struct {
	Verifier   auth.Verifier
	Membership store.MembershipResolver

	AuthTimeout   time.Duration // bound on token/membership resolution calls
	TypingTTL     time.Duration
	SendQueueSize int
	FanoutWorkers int
	FanoutQueue   int
}

func (o *Options) norm() {
	if o.AuthTimeout <= 0 {
		o.AuthTimeout = 5 * time.Second
	}
	if o.TypingTTL <= 0 {
		o.TypingTTL = 6 * time.Second
	}
	if o.SendQueueSize <= 0 {
		o.SendQueueSize = 256
	}
	if o.FanoutWorkers <= 0 {
		o.FanoutWorkers = 4
	}
	if o.FanoutQueue <= 0 {
		o.FanoutQueue = 1024
	}
}

// Server owns the connection lifecycle and is the only writer of
// PresenceRegistry and RoomTracker.
type Server struct {
	opts     Options
	presence *PresenceRegistry
	rooms    *RoomTracker
	typing   *TypingTracker
	fanout   *Fanout
	disp     *Dispatcher
	upgrader websocket.Upgrader
}

func NewServer(opts Options) (*Server, error) {
	if opts.Verifier == nil || opts.Membership == nil {
		// Startup misconfiguration is fatal, not a per-connection error.
		return nil, errs.ErrResolution.WithDetail("gateway requires verifier and membership resolver")
	}
	opts.norm()

	s := &Server{
		opts:     opts,
		presence: NewPresenceRegistry(),
		rooms:    NewRoomTracker(),
		fanout:   NewFanout(opts.FanoutWorkers, opts.FanoutQueue),
		disp:     NewDispatcher(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.typing = NewTypingTracker(opts.TypingTTL, s.onTypingExpired)

	s.disp.Register(EvtJoinGuilds, s.handleJoinGuilds)
	s.disp.Register(EvtJoinChannel, s.handleJoinChannel)
	s.disp.Register(EvtLeaveChannel, s.handleLeaveChannel)
	s.disp.Register(EvtTypingStart, s.handleTypingStart)
	s.disp.Register(EvtTypingStop, s.handleTypingStop)
	s.disp.Register(EvtJoinVoice, s.handleJoinVoice)
	s.disp.Register(EvtLeaveVoice, s.handleLeaveVoice)
	return s, nil
}

func (s *Server) Presence() *PresenceRegistry { return s.presence }
func (s *Server) Rooms() *RoomTracker         { return s.rooms }
func (s *Server) Typing() *TypingTracker      { return s.typing }

func (s *Server) Close() {
	s.typing.Close()
	s.fanout.Close()
}

// resolveCtx bounds every verifier/membership call so a hung dependency
// stalls only the requesting connection, and only for a while.
func (s *Server) resolveCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opts.AuthTimeout)
}

// HandleWS authenticates the handshake and runs the connection. The token is
// verified before the upgrade: a rejected client gets a plain 401 and no
// Session, no handlers, no room state.
func (s *Server) HandleWS(c *gin.Context) {
	token := bearerToken(c.Request)

	ctx, cancel := s.resolveCtx()
	ident, err := s.opts.Verifier.Verify(ctx, token)
	cancel()
	if err != nil {
		code := http.StatusUnauthorized
		if errs.Code(err) == errs.CodeResolution {
			code = http.StatusInternalServerError
		}
		c.JSON(code, gin.H{"error": errs.ClientMsg(err)})
		return
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade failed user=%s err=%v", ident.UserID, err)
		return
	}

	sess := &Session{
		ConnID:      ids.GenerateString(),
		UserID:      ident.UserID,
		Username:    ident.Username,
		Avatar:      ident.Avatar,
		ConnectedAt: time.Now(),
	}
	client := newClient(sess, ws, s, s.opts.SendQueueSize)
	first := s.presence.Add(sess)
	logger.Infof("[ws] connected user=%s conn=%s first_session=%v", sess.UserID, sess.ConnID, first)

	safe.Go(client.writePump)
	safe.Run(client.readPump)

	s.handleDisconnect(client)
}

// handleDisconnect is total: after it returns the connection appears in no
// room and, if it was the user's last, nowhere in presence either.
func (s *Server) handleDisconnect(c *Client) {
	sess := c.sess
	departures := s.rooms.DropConn(sess.UserID, sess.ConnID)

	var typingChannels []string
	for _, d := range departures {
		if !d.UserGone {
			continue
		}
		switch d.Room.Kind {
		case RoomChannel:
			s.broadcastRoom(d.Room, EvtUserLeft, userLeftPayload{
				UserID:   sess.UserID,
				Username: sess.Username,
			}, sess.ConnID)
			typingChannels = append(typingChannels, d.Room.ID)
		case RoomVoice:
			s.broadcastRoom(d.Room, EvtUserLeftVoice, voicePayload{
				UserID:    sess.UserID,
				Username:  sess.Username,
				Avatar:    sess.Avatar,
				ChannelID: d.Room.ID,
			}, sess.ConnID)
		}
	}
	if len(typingChannels) > 0 {
		s.typing.ClearUser(sess.UserID, typingChannels)
	}

	_, last := s.presence.Remove(sess.ConnID)
	c.close()
	logger.Infof("[ws] disconnected user=%s conn=%s rooms=%d last_session=%v",
		sess.UserID, sess.ConnID, len(departures), last)
}

func (s *Server) onTypingExpired(channelID, userID string) {
	// Timer-driven, so there is no originating connection to exclude.
	s.broadcastRoom(ChannelRoom(channelID), EvtUserStopTyping, stopTypingPayload{
		UserID:    userID,
		ChannelID: channelID,
	}, "")
}

// bearerToken pulls the handshake token from the `token` query parameter or
// an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	if t := strings.TrimSpace(r.URL.Query().Get("token")); t != "" {
		return t
	}
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if authz == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}

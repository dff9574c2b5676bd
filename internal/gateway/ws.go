package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/auth"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/config"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/models"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/repository"
)

// Server binds the gateway to the websocket transport. Expected URL:
// /v1/ws?token=<jwt>
type Server struct {
	gw        *Gateway
	users     repository.UserStore
	validator *auth.Validator
	cfg       *config.Config
	log       *zap.SugaredLogger
}

func NewServer(gw *Gateway, users repository.UserStore, validator *auth.Validator, cfg *config.Config, log *zap.SugaredLogger) *Server {
	return &Server{gw: gw, users: users, validator: validator, cfg: cfg, log: log}
}

func (srv *Server) HandleWS() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		token := conn.Query("token")
		if token == "" {
			_ = conn.Close()
			return
		}
		claims, err := srv.validator.Validate(token)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, encode(EventError, ErrorPayload{Message: "authentication failed"}))
			_ = conn.Close()
			return
		}

		ctx := context.Background()
		user, err := srv.resolveUser(ctx, claims)
		if err != nil {
			srv.log.Errorw("user resolve failed", "user", claims.UserID, "error", err)
			_ = conn.Close()
			return
		}

		session := NewSession(newID(), user, srv.cfg.WS.SendBuffer)
		srv.gw.Connect(ctx, session)
		srv.log.Infow("session connected", "user", user.Username, "session", session.ID)

		go srv.writePump(conn, session)
		srv.readPump(ctx, conn, session)

		srv.gw.Disconnect(ctx, session)
		srv.log.Infow("session disconnected", "user", user.Username, "session", session.ID)
	}
}

// resolveUser loads the local profile for the authenticated identity,
// creating it on first contact.
func (srv *Server) resolveUser(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	user, err := srv.users.GetUser(ctx, claims.UserID)
	if err == nil {
		return user, nil
	}
	fresh := &models.User{
		ID:                claims.UserID,
		Username:          claims.Username,
		Email:             claims.Email,
		Avatar:            claims.Avatar,
		PreferredLanguage: "en",
		SpeechEnabled:     true,
	}
	if err := srv.users.UpsertProfile(ctx, fresh); err != nil {
		return nil, err
	}
	return srv.users.GetUser(ctx, claims.UserID)
}

func (srv *Server) readPump(ctx context.Context, conn *websocket.Conn, s *Session) {
	conn.SetReadLimit(srv.cfg.WS.MaxMessageSizeBytes)
	_ = conn.SetReadDeadline(time.Now().Add(srv.cfg.ReadDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(srv.cfg.ReadDeadline))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		srv.dispatch(ctx, s, env)
	}
}

// dispatch routes one inbound event. Events are handled to completion
// in arrival order, which keeps per-session sends ordered through
// persistence.
func (srv *Server) dispatch(ctx context.Context, s *Session, env Envelope) {
	switch env.Event {
	case EventJoinRoom:
		var p JoinRoomPayload
		if json.Unmarshal(env.Data, &p) == nil {
			srv.gw.JoinRoom(ctx, s, p)
		}
	case EventLeaveRoom:
		var p LeaveRoomPayload
		if json.Unmarshal(env.Data, &p) == nil {
			srv.gw.LeaveRoom(ctx, s, p)
		}
	case EventSendMessage:
		var p SendMessagePayload
		if json.Unmarshal(env.Data, &p) == nil {
			srv.gw.SendMessage(ctx, s, p)
		}
	case EventTypingStart:
		var p TypingPayload
		if json.Unmarshal(env.Data, &p) == nil {
			srv.gw.Typing(ctx, s, p, true)
		}
	case EventTypingStop:
		var p TypingPayload
		if json.Unmarshal(env.Data, &p) == nil {
			srv.gw.Typing(ctx, s, p, false)
		}
	case EventMarkMessagesRead:
		var p MarkReadPayload
		if json.Unmarshal(env.Data, &p) == nil {
			srv.gw.MarkMessagesRead(ctx, s, p)
		}
	case EventVoiceMessage:
		var p VoiceMessagePayload
		if json.Unmarshal(env.Data, &p) == nil {
			srv.gw.VoiceMessage(ctx, s, p)
		}
	}
}

func (srv *Server) writePump(conn *websocket.Conn, s *Session) {
	ticker := time.NewTicker(srv.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case payload, ok := <-s.send:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(srv.cfg.WriteDeadline))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(srv.cfg.WriteDeadline))
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(time.Second)); err != nil {
				return
			}
		}
	}
}

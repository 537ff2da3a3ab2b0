package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chatwire/realtime-service/internal/domain/event"
	"github.com/chatwire/realtime-service/internal/domain/model"
	"github.com/chatwire/realtime-service/internal/domain/registry"
)

// Bus topic for re-published persisted messages.
const TopicMessageCreated = "chat.message.created.v1"

// Router dispatches decoded client events to their handlers, enforcing the
// session state machine: nothing but auth and ping is serviced before the
// session is authenticated. One Router instance serves all connections; all
// per-connection state lives on the Session.
type Router struct {
	verifier TokenVerifier
	profiles *ProfileResolver
	messages MessageStore
	convs    ConversationStore
	reg      registry.Registrar
	presence *Presence
	cast     *Broadcaster
	bus      EventDispatcher
	logger   *slog.Logger
}

type RouterParams struct {
	Verifier TokenVerifier
	Profiles *ProfileResolver
	Messages MessageStore
	Convs    ConversationStore
	Registry registry.Registrar
	Presence *Presence
	Cast     *Broadcaster
	Bus      EventDispatcher
	Logger   *slog.Logger
}

func NewRouter(p RouterParams) *Router {
	return &Router{
		verifier: p.Verifier,
		profiles: p.Profiles,
		messages: p.Messages,
		convs:    p.Convs,
		reg:      p.Registry,
		presence: p.Presence,
		cast:     p.Cast,
		bus:      p.Bus,
		logger:   p.Logger,
	}
}

// Route decodes and dispatches one raw client frame. Handler errors never
// tear down the transport: malformed frames are logged and swallowed,
// unknown tags dropped silently, and every failure reply is scoped to the
// sending session.
func (r *Router) Route(ctx context.Context, sess *registry.Session, raw []byte) {
	ev, err := event.DecodeInbound(raw)
	if err != nil {
		switch {
		case errors.Is(err, event.ErrUnknownKind):
			r.logger.Debug("ignoring unknown inbound kind", "session_id", sess.ID())
		default:
			r.logger.Warn("malformed inbound payload", "session_id", sess.ID(), "error", err)
		}
		return
	}

	switch ev := ev.(type) {
	case *event.Auth:
		r.handleAuth(ctx, sess, ev)
	case *event.Message:
		r.handleMessage(ctx, sess, ev)
	case *event.Typing:
		r.handleTyping(ctx, sess, ev)
	case *event.Ping:
		// Liveness probe, serviced regardless of authentication state.
		r.cast.Send(sess, event.NewPong())
	}
}

// handleAuth validates the token, binds and registers the session, confirms
// to that session alone, then announces the online transition. A repeated
// auth on an authenticated session re-verifies but never rebinds: the
// session keeps its original identity for life.
func (r *Router) handleAuth(ctx context.Context, sess *registry.Session, ev *event.Auth) {
	userID, err := r.verifier.Verify(ctx, ev.Token)
	if err != nil {
		r.logger.Info("authentication failed", "session_id", sess.ID(), "error", err)
		r.cast.Send(sess, event.NewAuthError("invalid token"))
		return
	}

	if bound := sess.User(); bound != nil {
		if bound.ID != userID {
			r.cast.Send(sess, event.NewAuthError("session already bound to another user"))
			return
		}
		// Idempotent re-auth: confirm again and re-announce, no re-register.
		r.cast.Send(sess, event.NewAuthSuccess(bound))
		r.presence.HandleOnline(ctx, userID)
		return
	}

	user, err := r.profiles.Resolve(ctx, userID)
	if err != nil {
		r.logger.Error("resolve authenticated user", "session_id", sess.ID(), "user_id", userID, "error", err)
		r.cast.Send(sess, event.NewAuthError("authentication failed"))
		return
	}

	if err := sess.Bind(user); err != nil {
		r.cast.Send(sess, event.NewAuthError("authentication failed"))
		return
	}
	r.reg.Add(userID, sess)

	r.cast.Send(sess, event.NewAuthSuccess(user))
	r.presence.HandleOnline(ctx, userID)

	r.logger.Info("session authenticated", "session_id", sess.ID(), "user_id", userID)
}

func (r *Router) handleMessage(ctx context.Context, sess *registry.Session, ev *event.Message) {
	user, ok := r.requireAuth(sess)
	if !ok {
		return
	}

	msgType := ev.MessageType
	if msgType == "" {
		msgType = model.MessageTypeText
	}

	msg, err := r.messages.SendMessage(ctx, SendMessageInput{
		ConversationID: ev.ConversationID,
		SenderID:       user.ID,
		Content:        ev.Content,
		Type:           msgType,
		FileURL:        ev.FileURL,
		FileName:       ev.FileName,
	})
	if err != nil || msg == nil {
		r.logger.Error("persist message", "session_id", sess.ID(),
			"conversation_id", ev.ConversationID, "error", err)
		// Surface the failure to the sender instead of dropping it silently.
		r.cast.Send(sess, event.NewError("failed to send message"))
		return
	}

	// Membership is fetched fresh per message; the sender's own sessions are
	// included in the fanout.
	members, err := r.convs.Members(ctx, ev.ConversationID)
	if err != nil {
		r.logger.Error("resolve conversation members", "conversation_id", ev.ConversationID, "error", err)
		return
	}
	r.cast.Broadcast(members, event.NewNewMessage(msg))

	if err := r.bus.Dispatch(ctx, TopicMessageCreated, msg); err != nil {
		r.logger.Warn("publish message event", "message_id", msg.ID, "error", err)
	}
}

func (r *Router) handleTyping(ctx context.Context, sess *registry.Session, ev *event.Typing) {
	user, ok := r.requireAuth(sess)
	if !ok {
		return
	}

	members, err := r.convs.Members(ctx, ev.ConversationID)
	if err != nil {
		r.logger.Error("resolve conversation members", "conversation_id", ev.ConversationID, "error", err)
		return
	}

	// Everyone in the conversation except the sender. Repeated identical
	// typing states are relayed as-is, one broadcast per inbound event.
	recipients := members[:0:0]
	for _, m := range members {
		if m != user.ID {
			recipients = append(recipients, m)
		}
	}
	r.cast.Broadcast(recipients, event.NewTypingIndicator(ev.ConversationID, user.ID, user.Name, ev.IsTyping))
}

// requireAuth enforces the authentication precondition for chat operations.
// Violations produce an inline error to the offending session only: no state
// change, no fanout, no registry side effect.
func (r *Router) requireAuth(sess *registry.Session) (*model.User, bool) {
	if sess.State() != registry.Authenticated {
		r.cast.Send(sess, event.NewError("not authenticated"))
		return nil, false
	}
	user := sess.User()
	if user == nil {
		r.cast.Send(sess, event.NewError("not authenticated"))
		return nil, false
	}
	return user, true
}

// Disconnect runs the close path for a session, from transport close or
// error alike. Removal is idempotent, so racing a disconnect against
// in-flight handlers for the same session is safe; the offline transition
// fires exactly once, on the call that empties the user's entry.
func (r *Router) Disconnect(ctx context.Context, sess *registry.Session) {
	user := sess.User()
	sess.Close()

	if user == nil {
		// Never authenticated: no registry entry, no presence action.
		return
	}

	if last := r.reg.Remove(user.ID, sess); last {
		r.presence.HandleOffline(ctx, user.ID)
	}
	r.logger.Info("session closed", "session_id", sess.ID(), "user_id", user.ID)
}

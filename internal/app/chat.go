package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_agency/internal/adapters/backend"
	"hotel_agency/internal/domain"
)

const (
	chatsPath           = "/api/v1/chats"
	ChatSendDestination = "/app/chat.send"
	ChatEditDestination = "/app/chat.edit"
)

func ChatTopic(chatID int64) string { return "/topic/chat/" + strconv.FormatInt(chatID, 10) }

var errNoTransport = errors.New("chat transport is not configured")

// Messenger is the staff chat: REST for history and membership, the
// transport for live messages.
type Messenger struct {
	api       API
	users     *Users
	transport domain.ChatTransport
	fanout    int
	now       func() time.Time
}

// NewMessenger wires the chat. transport may be nil, in which case only
// the REST operations work.
func NewMessenger(api API, users *Users, transport domain.ChatTransport, fanout int) *Messenger {
	if fanout <= 0 {
		fanout = 6
	}
	return &Messenger{api: api, users: users, transport: transport, fanout: fanout, now: time.Now}
}

func messagesPath(chatID int64) string {
	return chatsPath + "/" + strconv.FormatInt(chatID, 10) + "/messages"
}

// ListChats returns every chat with its latest message. Messages are
// fetched concurrently, at most fanout at a time; a chat whose history
// cannot be read is listed without a last message.
func (m *Messenger) ListChats(ctx context.Context) ([]domain.Chat, error) {
	var chats []domain.Chat
	if err := call(ctx, m.api, "list chats", backend.Request{Path: chatsPath}, &chats); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.fanout)
	for i := range chats {
		g.Go(func() error {
			msgs, err := m.Messages(gctx, chats[i].ID)
			if err != nil {
				if errors.Is(err, domain.ErrLoggedOut) {
					return err
				}
				log.Warn().Err(err).Int64("chat", chats[i].ID).Msg("latest message unavailable")
				return nil
			}
			if n := len(msgs); n > 0 {
				last := msgs[n-1]
				chats[i].LastMessage = &last
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chats, nil
}

// Messages is the history of one chat, oldest first.
func (m *Messenger) Messages(ctx context.Context, chatID int64) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	if err := call(ctx, m.api, "chat messages", backend.Request{Path: messagesPath(chatID)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateChat opens a chat between creator and members. Admins cannot be
// added as members.
func (m *Messenger) CreateChat(ctx context.Context, name string, creatorID int64, memberIDs []int64) (domain.Chat, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Chat{}, &domain.ValidationError{Field: "name", Message: "enter a chat name"}
	}
	if len(memberIDs) == 0 {
		return domain.Chat{}, &domain.ValidationError{Field: "members", Message: "select at least one member"}
	}
	candidates, err := m.users.ChatCandidates(ctx)
	if err != nil {
		return domain.Chat{}, err
	}
	byID := make(map[int64]domain.User, len(candidates))
	for _, u := range candidates {
		byID[u.ID] = u
	}
	members := make([]domain.User, 0, len(memberIDs))
	for _, id := range memberIDs {
		u, ok := byID[id]
		if !ok {
			return domain.Chat{}, &domain.ValidationError{Field: "members", Message: fmt.Sprintf("user %d cannot join a chat", id)}
		}
		members = append(members, u)
	}

	var created domain.Chat
	err = call(ctx, m.api, "create chat", backend.Request{
		Path:   chatsPath,
		Method: http.MethodPost,
		Body:   map[string]any{"name": name, "creatorId": creatorID, "members": members},
	}, &created)
	if err != nil {
		return domain.Chat{}, err
	}
	if created.ID == 0 {
		return domain.Chat{}, fmt.Errorf("create chat: response carried no chat")
	}
	return created, nil
}

// Send publishes a message; delivery back to subscribers confirms it.
func (m *Messenger) Send(ctx context.Context, chatID, userID int64, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, &domain.ValidationError{Field: "message", Message: "message cannot be empty"}
	}
	if m.transport == nil {
		return domain.ChatMessage{}, errNoTransport
	}
	msg := domain.ChatMessage{ChatID: chatID, UserID: userID, Message: text, CreatedAt: m.now().UTC().Format(time.RFC3339)}
	b, err := json.Marshal(msg)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	if err := m.transport.Publish(ctx, ChatSendDestination, b); err != nil {
		return domain.ChatMessage{}, err
	}
	return msg, nil
}

// Edit rewrites a sent message and announces the change to the chat.
func (m *Messenger) Edit(ctx context.Context, chatID, messageID, userID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &domain.ValidationError{Field: "message", Message: "message cannot be empty"}
	}
	err := call(ctx, m.api, "edit message", backend.Request{
		Path:   messagesPath(chatID) + "/" + strconv.FormatInt(messageID, 10),
		Method: http.MethodPut,
		Body:   map[string]string{"message": text},
	}, nil)
	if err != nil {
		return err
	}
	if m.transport == nil {
		return nil
	}
	b, _ := json.Marshal(map[string]any{"id": messageID, "chatId": chatID, "userId": userID, "message": text, "edited": true})
	return m.transport.Publish(ctx, ChatEditDestination, b)
}

// Watch delivers live messages of chatID to fn until ctx ends.
func (m *Messenger) Watch(ctx context.Context, chatID int64, fn func(domain.ChatMessage)) error {
	if m.transport == nil {
		return errNoTransport
	}
	unsub, err := m.transport.Subscribe(ctx, ChatTopic(chatID), func(payload []byte) {
		var msg domain.ChatMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Warn().Err(err).Int64("chat", chatID).Msg("unreadable chat payload")
			return
		}
		fn(msg)
	})
	if err != nil {
		return err
	}
	defer unsub()
	<-ctx.Done()
	return nil
}

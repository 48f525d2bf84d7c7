package mtproto

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/session"
	tgclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"telegram-dwh/internal/telegram"
)

// Config carries the MTProto credentials and session location
type Config struct {
	APIID       int
	APIHash     string
	SessionFile string
}

// Client is the gotd-backed implementation of telegram.Client. It runs
// the connection in a background goroutine and keeps an access-hash
// registry of every peer seen in responses, because the raw API cannot
// address users and channels without their hashes.
type Client struct {
	tg    *tgclient.Client
	peers *peerRegistry

	mu   sync.Mutex
	stop bg.StopFunc
}

// New creates a disconnected client
func New(cfg Config) *Client {
	c := tgclient.NewClient(cfg.APIID, cfg.APIHash, tgclient.Options{
		SessionStorage: &session.FileStorage{Path: cfg.SessionFile},
	})
	return &Client{tg: c, peers: newPeerRegistry()}
}

// Connect starts the background connection. Idempotent while connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return nil
	}

	stop, err := bg.Connect(c.tg, bg.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.stop = stop
	log.Printf("[MTProto] Connected")
	return nil
}

// Disconnect stops the background connection
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop == nil {
		return nil
	}
	err := c.stop()
	c.stop = nil
	log.Printf("[MTProto] Disconnected")
	return err
}

// IsConnected reports whether the background connection is running
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stop != nil
}

// IsAuthorized asks the upstream whether the stored session is live
func (c *Client) IsAuthorized(ctx context.Context) (bool, error) {
	status, err := c.tg.Auth().Status(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to query auth status: %w", err)
	}
	return status.Authorized, nil
}

// Self returns the authenticated user
func (c *Client) Self(ctx context.Context) (*telegram.Entity, error) {
	u, err := c.tg.Self(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch self: %w", err)
	}
	c.peers.addUser(u)
	e := userEntity(u)
	return &e, nil
}

// Dialogs fetches one page of the dialog list and registers every peer
// the response mentions.
func (c *Client) Dialogs(ctx context.Context, q telegram.DialogQuery) ([]telegram.RawDialog, error) {
	req := &tg.MessagesGetDialogsRequest{
		Limit:      q.Limit,
		OffsetID:   int(q.OffsetID),
		OffsetDate: int(q.OffsetDate),
		OffsetPeer: &tg.InputPeerEmpty{},
	}
	if q.OffsetPeer != nil {
		if info, ok := c.peers.get(q.OffsetPeer.ID); ok {
			req.OffsetPeer = info.inputPeer
		}
	}

	res, err := c.tg.API().MessagesGetDialogs(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dialogs: %w", err)
	}
	modified, ok := res.(tg.ModifiedMessagesDialogs)
	if !ok {
		return nil, errors.New("unexpected dialogs response")
	}

	c.peers.addUsers(modified.GetUsers())
	c.peers.addChats(modified.GetChats())

	type msgKey struct {
		peerID int64
		id     int
	}
	topMessages := make(map[msgKey]*tg.Message)
	for _, mc := range modified.GetMessages() {
		if m, ok := mc.(*tg.Message); ok {
			topMessages[msgKey{peerClassID(m.PeerID), m.ID}] = m
		}
	}

	var dialogs []telegram.RawDialog
	for _, dc := range modified.GetDialogs() {
		d, ok := dc.(*tg.Dialog)
		if !ok {
			continue
		}
		peerID := peerClassID(d.Peer)
		info, ok := c.peers.get(peerID)
		if !ok {
			continue
		}

		raw := telegram.RawDialog{
			Peer:        telegram.PeerRef{Kind: info.entity.Kind, ID: peerID},
			Title:       peerTitle(&info.entity),
			UnreadCount: d.UnreadCount,
			HasPhoto:    info.entity.HasPhoto,
		}
		if top, ok := topMessages[msgKey{peerID, d.TopMessage}]; ok {
			m := convertMessage(top, d)
			raw.TopMessage = &m
		}
		dialogs = append(dialogs, raw)
	}
	return dialogs, nil
}

// Entity resolves a peer from the registry. The registry is warmed by
// every dialog and history response; a peer the session has never seen
// is not resolvable.
func (c *Client) Entity(ctx context.Context, peerID int64) (*telegram.Entity, error) {
	if info, ok := c.peers.get(peerID); ok {
		e := info.entity
		return &e, nil
	}
	return nil, &telegram.NotFoundError{Resource: "peer", ID: peerID}
}

// History fetches one page of a chat's message history
func (c *Client) History(ctx context.Context, peerID int64, limit int, offsetID int64) ([]telegram.RawMessage, error) {
	info, ok := c.peers.get(peerID)
	if !ok {
		return nil, &telegram.NotFoundError{Resource: "chat", ID: peerID}
	}

	res, err := c.tg.API().MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:     info.inputPeer,
		OffsetID: int(offsetID),
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	modified, ok := res.(tg.ModifiedMessagesMessages)
	if !ok {
		return nil, errors.New("unexpected history response")
	}

	c.peers.addUsers(modified.GetUsers())
	c.peers.addChats(modified.GetChats())

	var msgs []telegram.RawMessage
	for _, mc := range modified.GetMessages() {
		if m, ok := mc.(*tg.Message); ok {
			msgs = append(msgs, convertMessage(m, nil))
		}
	}
	return msgs, nil
}

// Message fetches one message by id
func (c *Client) Message(ctx context.Context, peerID, messageID int64) (*telegram.RawMessage, error) {
	m, err := c.fetchMessage(ctx, peerID, messageID)
	if err != nil {
		return nil, err
	}
	raw := convertMessage(m, nil)
	return &raw, nil
}

// Send posts a plain text message to a chat
func (c *Client) Send(ctx context.Context, peerID int64, text string) error {
	info, ok := c.peers.get(peerID)
	if !ok {
		return &telegram.NotFoundError{Resource: "chat", ID: peerID}
	}

	_, err := c.tg.API().MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     info.inputPeer,
		Message:  text,
		RandomID: rand.Int63(),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendCode starts phone login and returns the phone code hash
func (c *Client) SendCode(ctx context.Context, phone string) (string, error) {
	sent, err := c.tg.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to send login code: %w", err)
	}
	code, ok := sent.(*tg.AuthSentCode)
	if !ok {
		return "", errors.New("unexpected sent code response")
	}
	return code.PhoneCodeHash, nil
}

// SignIn submits the login code. A session guarded by a two-factor
// password surfaces as ErrPasswordRequired, a rejected code as
// ErrInvalidCode.
func (c *Client) SignIn(ctx context.Context, phone, codeHash, code string) error {
	_, err := c.tg.Auth().SignIn(ctx, phone, code, codeHash)
	if err == nil {
		return nil
	}
	if errors.Is(err, auth.ErrPasswordAuthNeeded) {
		return telegram.ErrPasswordRequired
	}
	if tgerr.Is(err, "PHONE_CODE_INVALID") || tgerr.Is(err, "PHONE_CODE_EXPIRED") {
		return telegram.ErrInvalidCode
	}
	return fmt.Errorf("failed to sign in: %w", err)
}

// SignInWithPassword completes two-factor login
func (c *Client) SignInWithPassword(ctx context.Context, password string) error {
	_, err := c.tg.Auth().Password(ctx, password)
	if err == nil {
		return nil
	}
	if tgerr.Is(err, "PASSWORD_HASH_INVALID") {
		return telegram.ErrInvalidCode
	}
	return fmt.Errorf("failed to check password: %w", err)
}

// SignOut terminates the upstream session
func (c *Client) SignOut(ctx context.Context) error {
	if _, err := c.tg.API().AuthLogOut(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// fetchMessage loads the raw upstream message. Channels keep their own
// message id space and need the channel-scoped call.
func (c *Client) fetchMessage(ctx context.Context, peerID, messageID int64) (*tg.Message, error) {
	info, ok := c.peers.get(peerID)
	if !ok {
		return nil, &telegram.NotFoundError{Resource: "chat", ID: peerID}
	}

	ids := []tg.InputMessageClass{&tg.InputMessageID{ID: int(messageID)}}
	var (
		res tg.MessagesMessagesClass
		err error
	)
	if ch, isChannel := info.inputPeer.(*tg.InputPeerChannel); isChannel {
		res, err = c.tg.API().ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
			Channel: &tg.InputChannel{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash},
			ID:      ids,
		})
	} else {
		res, err = c.tg.API().MessagesGetMessages(ctx, ids)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}

	modified, ok := res.(tg.ModifiedMessagesMessages)
	if !ok {
		return nil, errors.New("unexpected message response")
	}
	c.peers.addUsers(modified.GetUsers())
	c.peers.addChats(modified.GetChats())

	for _, mc := range modified.GetMessages() {
		if m, ok := mc.(*tg.Message); ok && int64(m.ID) == messageID {
			return m, nil
		}
	}
	return nil, &telegram.NotFoundError{Resource: "message", ID: messageID}
}

var _ telegram.Client = (*Client)(nil)

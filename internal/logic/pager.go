package logic

import (
	"context"
	"errors"
	"log"

	"telegram-dwh/internal/models"
	"telegram-dwh/internal/telegram"
)

// statsDialogWindow bounds the dialog sample used for unread stats.
// Aggregation over the full account would cost an unbounded enumeration,
// so the stats are a documented approximation over the most recent
// dialogs.
const statsDialogWindow = 1000

// Service implements the dialog/message listing core on top of the
// session gateway. It holds no per-request state; resolvers are created
// per call.
type Service struct {
	gateway *telegram.Gateway
}

// NewService creates the listing service
func NewService(gateway *telegram.Gateway) *Service {
	return &Service{gateway: gateway}
}

// classifyPeer maps an upstream peer kind onto the wire chat type
func classifyPeer(k telegram.PeerKind) models.ChatType {
	switch k {
	case telegram.PeerUser:
		return models.ChatTypePersonal
	case telegram.PeerGroup:
		return models.ChatTypeGroup
	default:
		return models.ChatTypeChannel
	}
}

// ListChats returns up to limit dialogs matching filter, newest first,
// plus the cursor for the next page.
//
// The upstream paginates over the unfiltered dialog sequence with
// exclusive offsets: the next page starts strictly after the dialog the
// cursor addresses. The type filter is applied after paging, so the
// call over-fetches limit+1 raw dialogs, collects matching ones until
// limit is reached, and builds the next cursor from the last raw dialog
// it consumed, never from the last item that survived the filter. Raw
// items past the stop point, including the look-ahead item, were not
// consumed and are re-delivered by the next fetch, which is what keeps
// the filtered pages free of gaps against the raw stream.
//
// Look-ahead is bounded to one upstream page: with a narrow filter a
// page may carry fewer than limit results even though more exist further
// down the raw stream. Callers issue further page requests to fill.
func (s *Service) ListChats(ctx context.Context, filter models.ChatType, limit int, cursor models.DialogCursor) ([]models.Chat, *models.DialogCursor, error) {
	if err := s.gateway.EnsureReady(ctx); err != nil {
		return nil, nil, err
	}
	client := s.gateway.Client()

	q := telegram.DialogQuery{
		Limit:      limit + 1,
		OffsetID:   cursor.OffsetID,
		OffsetDate: cursor.OffsetDate,
	}
	if cursor.OffsetPeerType != "" && cursor.OffsetPeerID != 0 {
		q.OffsetPeer = &telegram.PeerRef{
			Kind: telegram.PeerKind(cursor.OffsetPeerType),
			ID:   cursor.OffsetPeerID,
		}
	}

	raw, err := client.Dialogs(ctx, q)
	if err != nil {
		return nil, nil, &telegram.UpstreamError{Op: "list dialogs", Err: err}
	}

	resolver := NewResolver(client)
	resolver.Prefetch(ctx, topMessageSenders(raw))
	selfID := s.gateway.SelfID()

	chats := make([]models.Chat, 0, limit)
	consumed := len(raw) - 1
	for i, d := range raw {
		chatType := classifyPeer(d.Peer.Kind)
		if filter != models.ChatTypeAll && chatType != filter {
			continue
		}

		chat := models.Chat{
			ID:          d.Peer.ID,
			Type:        chatType,
			Name:        d.Title,
			UnreadCount: d.UnreadCount,
		}
		if d.HasPhoto {
			chat.AvatarURL = AvatarURL(d.Peer.ID)
		}
		if d.TopMessage != nil {
			sender := resolver.ResolveSender(ctx, d.TopMessage.SenderID)
			m := NormalizeMessage(d.TopMessage, d.Peer.ID, sender, selfID)
			chat.LastMessage = &m
		}

		chats = append(chats, chat)
		if len(chats) == limit {
			consumed = i
			break
		}
	}

	// More pages exist when unconsumed raw items remain or the upstream
	// filled the whole over-fetch window.
	var next *models.DialogCursor
	if len(raw) > 0 && (consumed < len(raw)-1 || len(raw) > limit) {
		next = cursorFromDialog(raw[consumed])
	}

	log.Printf("[Pager] Listed chats filter=%s limit=%d raw=%d returned=%d has_next=%t",
		filter, limit, len(raw), len(chats), next != nil)
	return chats, next, nil
}

// cursorFromDialog builds the next-page cursor from a raw dialog's own
// composite offset fields. The upstream resumes strictly after the
// addressed dialog.
func cursorFromDialog(d telegram.RawDialog) *models.DialogCursor {
	c := &models.DialogCursor{
		OffsetPeerType: string(d.Peer.Kind),
		OffsetPeerID:   d.Peer.ID,
	}
	if d.TopMessage != nil {
		c.OffsetID = d.TopMessage.ID
		c.OffsetDate = d.TopMessage.Date
	}
	return c
}

// upstreamOr keeps a NotFoundError intact and classifies anything else
// as an upstream failure.
func upstreamOr(op string, err error) error {
	var nf *telegram.NotFoundError
	if errors.As(err, &nf) {
		return nf
	}
	return &telegram.UpstreamError{Op: op, Err: err}
}

// topMessageSenders collects the sender ids needing resolution for a
// raw dialog page.
func topMessageSenders(raw []telegram.RawDialog) []int64 {
	ids := make([]int64, 0, len(raw))
	for _, d := range raw {
		if d.TopMessage != nil {
			ids = append(ids, d.TopMessage.SenderID)
		}
	}
	return ids
}

// Stats sums unread counts per chat type over the statsDialogWindow most
// recent dialogs, unfiltered. Each dialog lands in exactly one bucket.
func (s *Service) Stats(ctx context.Context) (models.ChatStats, error) {
	if err := s.gateway.EnsureReady(ctx); err != nil {
		return models.ChatStats{}, err
	}

	raw, err := s.gateway.Client().Dialogs(ctx, telegram.DialogQuery{Limit: statsDialogWindow})
	if err != nil {
		return models.ChatStats{}, &telegram.UpstreamError{Op: "list dialogs for stats", Err: err}
	}

	var stats models.ChatStats
	for _, d := range raw {
		switch classifyPeer(d.Peer.Kind) {
		case models.ChatTypePersonal:
			stats.PersonalUnread += d.UnreadCount
		case models.ChatTypeGroup:
			stats.GroupUnread += d.UnreadCount
		case models.ChatTypeChannel:
			stats.ChannelUnread += d.UnreadCount
		}
	}
	return stats, nil
}

// ChatMessages fetches and normalizes up to limit messages of one chat,
// newest first. offsetID pages into older history.
func (s *Service) ChatMessages(ctx context.Context, chatID int64, limit int, offsetID int64) ([]models.Message, error) {
	if err := s.gateway.EnsureReady(ctx); err != nil {
		return nil, err
	}
	client := s.gateway.Client()

	raw, err := client.History(ctx, chatID, limit, offsetID)
	if err != nil {
		return nil, upstreamOr("fetch history", err)
	}

	resolver := NewResolver(client)
	ids := make([]int64, 0, len(raw))
	for i := range raw {
		ids = append(ids, raw[i].SenderID)
	}
	resolver.Prefetch(ctx, ids)
	selfID := s.gateway.SelfID()

	messages := make([]models.Message, 0, len(raw))
	for i := range raw {
		sender := resolver.ResolveSender(ctx, raw[i].SenderID)
		messages = append(messages, NormalizeMessage(&raw[i], chatID, sender, selfID))
	}
	return messages, nil
}

// SendMessage posts text to a chat. Failures surface as typed upstream
// errors rather than a bare success flag.
func (s *Service) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := s.gateway.EnsureReady(ctx); err != nil {
		return err
	}
	if err := s.gateway.Client().Send(ctx, chatID, text); err != nil {
		return upstreamOr("send message", err)
	}
	log.Printf("[Pager] Message sent chat_id=%d length=%d", chatID, len(text))
	return nil
}

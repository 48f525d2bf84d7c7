package mtproto

import (
	"github.com/gotd/td/tg"

	"telegram-dwh/internal/telegram"
)

// convertMessage maps an upstream message to the transport shape. The
// dialog, when available, supplies the read horizon; without it the
// read state stays unknown.
func convertMessage(m *tg.Message, d *tg.Dialog) telegram.RawMessage {
	raw := telegram.RawMessage{
		ID:       int64(m.ID),
		Text:     m.Message,
		Date:     int64(m.Date),
		SenderID: messageSenderID(m),
		Outgoing: m.Out,
	}

	switch media := m.Media.(type) {
	case *tg.MessageMediaPhoto:
		raw.Photo = true
	case *tg.MessageMediaDocument:
		doc, ok := media.Document.(*tg.Document)
		if !ok {
			break
		}
		raw.Document = true
		for _, attr := range doc.Attributes {
			switch a := attr.(type) {
			case *tg.DocumentAttributeSticker:
				raw.Sticker = true
				raw.Document = false
			case *tg.DocumentAttributeAudio:
				if a.Voice {
					raw.Voice = true
					raw.Document = false
					raw.VoiceDuration = a.Duration
				}
			}
		}
	}

	if d != nil {
		read := readAgainstDialog(m, d)
		raw.Read = &read
	}
	return raw
}

// messageSenderID prefers the explicit author and falls back to the
// chat peer for channel posts that carry no author.
func messageSenderID(m *tg.Message) int64 {
	if m.FromID != nil {
		return peerClassID(m.FromID)
	}
	return peerClassID(m.PeerID)
}

// readAgainstDialog derives the read state from the dialog's read
// horizons: outgoing messages against the outbox, incoming against the
// inbox.
func readAgainstDialog(m *tg.Message, d *tg.Dialog) bool {
	if m.Out {
		return m.ID <= d.ReadOutboxMaxID
	}
	return m.ID <= d.ReadInboxMaxID
}

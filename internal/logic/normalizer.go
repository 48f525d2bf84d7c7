package logic

import (
	"fmt"

	"telegram-dwh/internal/models"
	"telegram-dwh/internal/telegram"
)

// MediaURL is the deterministic media fetch path for a message. It is
// derivable from (chat id, message id) alone; no upstream round trip is
// needed to construct it and the bytes are fetched lazily.
func MediaURL(chatID, messageID int64) string {
	return fmt.Sprintf("/media/%d/%d", chatID, messageID)
}

// NormalizeMessage converts a raw upstream message into the stable wire
// shape. sender must already be resolved (or the Unknown fallback);
// selfID is the authenticated user's id, 0 when unknown.
func NormalizeMessage(raw *telegram.RawMessage, chatID int64, sender models.Sender, selfID int64) models.Message {
	m := models.Message{
		ID:     raw.ID,
		Text:   raw.Text,
		Date:   raw.Date,
		Sender: sender,
	}

	// Defensive precedence when a message carries several media markers:
	// sticker > photo > voice > document.
	switch {
	case raw.Sticker:
		m.MediaType = models.MediaTypeSticker
	case raw.Photo:
		m.MediaType = models.MediaTypePhoto
	case raw.Voice:
		m.MediaType = models.MediaTypeVoice
		m.Duration = raw.VoiceDuration
	case raw.Document:
		m.MediaType = models.MediaTypeDocument
	}
	if m.MediaType != "" {
		m.MediaURL = MediaURL(chatID, raw.ID)
	}

	m.IsRead = readState(raw)
	m.FromAuthor = selfID != 0 && sender.ID == selfID
	return m
}

// readState prefers the explicit upstream read flag, falls back to the
// inverse of the unread flag, and reports unknown (nil) when neither is
// present rather than guessing.
func readState(raw *telegram.RawMessage) *bool {
	if raw.Read != nil {
		v := *raw.Read
		return &v
	}
	if raw.Unread != nil {
		v := !*raw.Unread
		return &v
	}
	return nil
}

// MediaContentType maps a media kind to the content type served for it.
// Derived from the kind, never sniffed from bytes.
func MediaContentType(t models.MediaType) string {
	switch t {
	case models.MediaTypePhoto:
		return "image/jpeg"
	case models.MediaTypeSticker:
		return "image/webp"
	case models.MediaTypeVoice:
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

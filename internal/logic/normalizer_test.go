package logic

import (
	"testing"

	"telegram-dwh/internal/models"
	"telegram-dwh/internal/telegram"
)

func boolPtr(v bool) *bool { return &v }

func TestNormalizeMessage_MediaPrecedence(t *testing.T) {
	tests := []struct {
		name string
		raw  telegram.RawMessage
		want models.MediaType
	}{
		{"sticker wins over photo", telegram.RawMessage{Sticker: true, Photo: true, Document: true}, models.MediaTypeSticker},
		{"photo wins over voice", telegram.RawMessage{Photo: true, Voice: true, Document: true}, models.MediaTypePhoto},
		{"voice wins over document", telegram.RawMessage{Voice: true, Document: true}, models.MediaTypeVoice},
		{"document alone", telegram.RawMessage{Document: true}, models.MediaTypeDocument},
		{"no media", telegram.RawMessage{}, models.MediaType("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NormalizeMessage(&tt.raw, 1, models.Sender{}, 0)
			if m.MediaType != tt.want {
				t.Errorf("expected media type %q, got %q", tt.want, m.MediaType)
			}
		})
	}
}

func TestNormalizeMessage_VoiceMediaURL(t *testing.T) {
	raw := telegram.RawMessage{ID: 7, Voice: true, VoiceDuration: 13}
	m := NormalizeMessage(&raw, 42, models.Sender{}, 0)

	if m.MediaURL != "/media/42/7" {
		t.Errorf("expected /media/42/7, got %q", m.MediaURL)
	}
	if m.Duration != 13 {
		t.Errorf("expected duration 13, got %d", m.Duration)
	}
}

func TestNormalizeMessage_NoMediaNoURL(t *testing.T) {
	m := NormalizeMessage(&telegram.RawMessage{ID: 7, Text: "hi"}, 42, models.Sender{}, 0)
	if m.MediaURL != "" {
		t.Errorf("expected no media url, got %q", m.MediaURL)
	}
}

func TestNormalizeMessage_ReadState(t *testing.T) {
	tests := []struct {
		name string
		raw  telegram.RawMessage
		want *bool
	}{
		{"explicit read preferred", telegram.RawMessage{Read: boolPtr(true), Unread: boolPtr(true)}, boolPtr(true)},
		{"derived from unread", telegram.RawMessage{Unread: boolPtr(true)}, boolPtr(false)},
		{"derived from not unread", telegram.RawMessage{Unread: boolPtr(false)}, boolPtr(true)},
		{"unknown stays unknown", telegram.RawMessage{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NormalizeMessage(&tt.raw, 1, models.Sender{}, 0)
			switch {
			case tt.want == nil && m.IsRead != nil:
				t.Errorf("expected unknown read state, got %v", *m.IsRead)
			case tt.want != nil && m.IsRead == nil:
				t.Error("expected a read state, got unknown")
			case tt.want != nil && *m.IsRead != *tt.want:
				t.Errorf("expected read=%v, got %v", *tt.want, *m.IsRead)
			}
		})
	}
}

func TestNormalizeMessage_FromAuthor(t *testing.T) {
	raw := telegram.RawMessage{ID: 1, SenderID: 1000}

	m := NormalizeMessage(&raw, 1, models.Sender{ID: 1000, Name: "Me"}, 1000)
	if !m.FromAuthor {
		t.Error("expected from_author for the authenticated user's message")
	}

	m = NormalizeMessage(&raw, 1, models.Sender{ID: 1000, Name: "Me"}, 2000)
	if m.FromAuthor {
		t.Error("expected from_author false for another user")
	}

	// Unresolved sender defaults to false even with a self id present.
	m = NormalizeMessage(&telegram.RawMessage{ID: 2}, 1, models.Sender{Name: "Unknown"}, 1000)
	if m.FromAuthor {
		t.Error("expected from_author false when the sender is unresolved")
	}
}

func TestMediaContentType(t *testing.T) {
	tests := []struct {
		in   models.MediaType
		want string
	}{
		{models.MediaTypePhoto, "image/jpeg"},
		{models.MediaTypeSticker, "image/webp"},
		{models.MediaTypeVoice, "audio/ogg"},
		{models.MediaTypeDocument, "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := MediaContentType(tt.in); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

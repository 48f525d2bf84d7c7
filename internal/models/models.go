package models

// ChatType classifies a dialog by its peer kind
type ChatType string

const (
	ChatTypePersonal ChatType = "personal"
	ChatTypeGroup    ChatType = "group"
	ChatTypeChannel  ChatType = "channel"
	ChatTypeAll      ChatType = "all"
)

// Valid reports whether t is a known filter value
func (t ChatType) Valid() bool {
	switch t {
	case ChatTypePersonal, ChatTypeGroup, ChatTypeChannel, ChatTypeAll:
		return true
	}
	return false
}

// MediaType classifies a message attachment
type MediaType string

const (
	MediaTypePhoto    MediaType = "photo"
	MediaTypeSticker  MediaType = "sticker"
	MediaTypeVoice    MediaType = "voice"
	MediaTypeDocument MediaType = "document"
)

// Sender identifies who authored a message
type Sender struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Message is the normalized wire shape of a Telegram message.
// MediaURL is derivable from (chat id, message id) alone; the bytes are
// fetched lazily when the media endpoint is hit. IsRead is tri-state:
// nil means the upstream exposed no read information.
type Message struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text,omitempty"`
	Date       int64     `json:"date"`
	Sender     Sender    `json:"sender"`
	MediaType  MediaType `json:"media_type,omitempty"`
	MediaURL   string    `json:"media_url,omitempty"`
	Duration   int       `json:"duration,omitempty"`
	IsRead     *bool     `json:"is_read"`
	FromAuthor bool      `json:"from_author"`
}

// Chat is one dialog in a listing. Reconstructed from upstream state on
// every call, never persisted.
type Chat struct {
	ID          int64    `json:"id"`
	Type        ChatType `json:"type"`
	Name        string   `json:"name"`
	UnreadCount int      `json:"unread_count"`
	LastMessage *Message `json:"last_message,omitempty"`
	AvatarURL   string   `json:"avatar_url,omitempty"`
}

// ChatStats aggregates unread counts by chat type over a bounded window
// of recent dialogs. An approximation, not a global count.
type ChatStats struct {
	PersonalUnread int `json:"personal_unread"`
	GroupUnread    int `json:"group_unread"`
	ChannelUnread  int `json:"channel_unread"`
}

// DialogCursor is the pagination token for chat listings. It carries the
// upstream's own composite offset and is round-tripped verbatim: a cursor
// returned by one page yields the next page with no duplicate and no gap
// relative to the raw upstream ordering.
type DialogCursor struct {
	OffsetID       int64  `json:"offset_id,omitempty"`
	OffsetDate     int64  `json:"offset_date,omitempty"`
	OffsetPeerType string `json:"offset_peer_type,omitempty"`
	OffsetPeerID   int64  `json:"offset_peer_id,omitempty"`
}

// ChatListing is the response of the chat list endpoint
type ChatListing struct {
	Stats      ChatStats     `json:"stats"`
	Chats      []Chat        `json:"chats"`
	NextOffset *DialogCursor `json:"next_offset,omitempty"`
}

// AuthStatus reports the session authorization state
type AuthStatus struct {
	Authorized bool   `json:"authorized"`
	UserID     int64  `json:"user_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

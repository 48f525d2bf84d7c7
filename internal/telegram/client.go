package telegram

import (
	"context"
	"io"
)

// PeerKind distinguishes the three Telegram peer families
type PeerKind string

const (
	PeerUser    PeerKind = "user"
	PeerGroup   PeerKind = "group"
	PeerChannel PeerKind = "channel"
)

// PeerRef addresses one peer in the upstream entity graph
type PeerRef struct {
	Kind PeerKind
	ID   int64
}

// Entity is the resolved form of a peer reference. Exactly one naming
// branch is populated depending on Kind: users carry first/last name,
// groups and channels carry a title.
type Entity struct {
	Kind      PeerKind
	ID        int64
	FirstName string
	LastName  string
	Title     string
	Username  string
	Phone     string
	HasPhoto  bool
}

// RawMessage is an upstream message before normalization. Media markers
// are independent flags because upstream messages can carry several at
// once (a voice note is also a document). Read and Unread are tri-state:
// nil means the upstream did not expose the flag.
type RawMessage struct {
	ID            int64
	Text          string
	Date          int64
	SenderID      int64
	Outgoing      bool
	Sticker       bool
	Photo         bool
	Voice         bool
	VoiceDuration int
	Document      bool
	Read          *bool
	Unread        *bool
}

// RawDialog is one entry of the upstream dialog list
type RawDialog struct {
	Peer        PeerRef
	Title       string
	UnreadCount int
	TopMessage  *RawMessage
	HasPhoto    bool
}

// DialogQuery carries the upstream's own composite dialog offset. The
// offset is exclusive: the returned page starts strictly after the
// dialog it addresses. Zero fields are omitted from the upstream
// request rather than sent as explicit nulls.
type DialogQuery struct {
	Limit      int
	OffsetID   int64
	OffsetDate int64
	OffsetPeer *PeerRef
}

// BlobInfo describes a downloaded binary. UniqueID is a stable upstream
// attribute (file reference or photo id) suitable for cache validation.
type BlobInfo struct {
	UniqueID string
	Size     int64
}

// Client is the capability interface the core requires from the MTProto
// transport. The concrete implementation lives in internal/mtproto; tests
// substitute fakes. All blocking operations honor ctx cancellation and
// surface transport failures as plain errors for the gateway to classify.
type Client interface {
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected() bool
	IsAuthorized(ctx context.Context) (bool, error)
	Self(ctx context.Context) (*Entity, error)

	Dialogs(ctx context.Context, q DialogQuery) ([]RawDialog, error)
	Entity(ctx context.Context, peerID int64) (*Entity, error)
	History(ctx context.Context, peerID int64, limit int, offsetID int64) ([]RawMessage, error)
	Message(ctx context.Context, peerID, messageID int64) (*RawMessage, error)
	Send(ctx context.Context, peerID int64, text string) error

	DownloadMedia(ctx context.Context, peerID, messageID int64, w io.Writer) (*BlobInfo, error)
	DownloadAvatar(ctx context.Context, peerID int64, w io.Writer) (*BlobInfo, error)

	SendCode(ctx context.Context, phone string) (string, error)
	SignIn(ctx context.Context, phone, codeHash, code string) error
	SignInWithPassword(ctx context.Context, password string) error
	SignOut(ctx context.Context) error
}

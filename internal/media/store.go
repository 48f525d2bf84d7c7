package media

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"telegram-dwh/internal/logic"
	"telegram-dwh/internal/models"
	"telegram-dwh/internal/telegram"
)

// Blob is a cached media file ready to be served
type Blob struct {
	Path        string
	ContentType string
	ETag        string
	Size        int64
	ModTime     time.Time
}

// Store is the disk-backed media cache. Blobs are downloaded lazily on
// first access, written under the cache directory with sanitized names,
// and recorded in the SQLite index. Concurrent requests for the same
// blob are collapsed into one download by per-key locks.
type Store struct {
	gateway *telegram.Gateway
	index   *Index
	dir     string
	locks   *keyLocks
}

// NewStore creates the media store and ensures the cache directory exists
func NewStore(gateway *telegram.Gateway, index *Index, dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media cache directory: %w", err)
	}
	return &Store{
		gateway: gateway,
		index:   index,
		dir:     dir,
		locks:   newKeyLocks(),
	}, nil
}

// OpenMedia returns the cached attachment of a message, downloading it
// on a cache miss. Fails with NotFoundError when the message does not
// exist or carries no servable attachment.
func (s *Store) OpenMedia(ctx context.Context, chatID, messageID int64) (*Blob, error) {
	if err := s.gateway.EnsureReady(ctx); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("media_%d_%d", chatID, messageID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if blob, err := s.cached(key); blob != nil || err != nil {
		return blob, err
	}

	client := s.gateway.Client()
	raw, err := client.Message(ctx, chatID, messageID)
	if err != nil {
		return nil, passNotFound("fetch message", err)
	}

	kind := mediaKind(raw)
	if kind == "" {
		return nil, &telegram.NotFoundError{Resource: "media", ID: messageID}
	}
	contentType := logic.MediaContentType(kind)

	download := func(f *os.File) (*telegram.BlobInfo, error) {
		return client.DownloadMedia(ctx, chatID, messageID, f)
	}
	return s.fill(key, fmt.Sprintf("%d_%d", chatID, messageID), extensionFor(kind), contentType, download)
}

// OpenAvatar returns the cached profile photo of a chat, downloading it
// on a cache miss. Fails with NotFoundError when the peer has no photo.
func (s *Store) OpenAvatar(ctx context.Context, chatID int64) (*Blob, error) {
	if err := s.gateway.EnsureReady(ctx); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatar_%d", chatID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if blob, err := s.cached(key); blob != nil || err != nil {
		return blob, err
	}

	client := s.gateway.Client()
	download := func(f *os.File) (*telegram.BlobInfo, error) {
		return client.DownloadAvatar(ctx, chatID, f)
	}
	return s.fill(key, fmt.Sprintf("avatar_%d", chatID), ".jpg", "image/jpeg", download)
}

// cached returns the indexed blob when its file is still on disk. A
// dangling index row (file evicted or lost) is dropped so the caller
// re-downloads.
func (s *Store) cached(key string) (*Blob, error) {
	entry, err := s.index.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to query media index: %w", err)
	}
	if entry == nil {
		return nil, nil
	}

	info, err := os.Stat(entry.Path)
	if err != nil {
		log.Printf("[Media] Dropping dangling index entry key=%s path=%s", key, entry.Path)
		if delErr := s.index.Delete(key); delErr != nil {
			return nil, fmt.Errorf("failed to drop dangling index entry: %w", delErr)
		}
		return nil, nil
	}

	return &Blob{
		Path:        entry.Path,
		ContentType: entry.ContentType,
		ETag:        entry.ETag,
		Size:        entry.Size,
		ModTime:     info.ModTime(),
	}, nil
}

// fill downloads a blob into the cache and indexes it. The download
// writes to a temp file first; the final name only appears once the
// bytes are complete.
func (s *Store) fill(key, baseName, ext, contentType string, download func(*os.File) (*telegram.BlobInfo, error)) (*Blob, error) {
	tmp, err := os.CreateTemp(s.dir, "download_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	info, err := download(tmp)
	closeErr := tmp.Close()
	if err != nil {
		os.Remove(tmpPath)
		return nil, passNotFound("download media", err)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to finalize download: %w", closeErr)
	}

	stat, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to stat downloaded file: %w", err)
	}

	finalPath := filepath.Join(s.dir, sanitizeFilename(baseName+"_"+info.UniqueID)+ext)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to place downloaded file: %w", err)
	}

	entry := Entry{
		CacheKey:    key,
		Path:        finalPath,
		ContentType: contentType,
		ETag:        fmt.Sprintf("%q", info.UniqueID),
		Size:        stat.Size(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.index.Put(entry); err != nil {
		os.Remove(finalPath)
		return nil, fmt.Errorf("failed to index downloaded file: %w", err)
	}

	log.Printf("[Media] Download completed key=%s size=%d", key, entry.Size)
	return &Blob{
		Path:        finalPath,
		ContentType: contentType,
		ETag:        entry.ETag,
		Size:        entry.Size,
		ModTime:     stat.ModTime(),
	}, nil
}

// mediaKind classifies a message's attachment with the same precedence
// the message normalizer uses.
func mediaKind(raw *telegram.RawMessage) models.MediaType {
	switch {
	case raw.Sticker:
		return models.MediaTypeSticker
	case raw.Photo:
		return models.MediaTypePhoto
	case raw.Voice:
		return models.MediaTypeVoice
	case raw.Document:
		return models.MediaTypeDocument
	}
	return ""
}

func extensionFor(kind models.MediaType) string {
	switch kind {
	case models.MediaTypePhoto:
		return ".jpg"
	case models.MediaTypeSticker:
		return ".webp"
	case models.MediaTypeVoice:
		return ".ogg"
	default:
		return ".bin"
	}
}

// sanitizeFilename keeps cache file names shell- and path-safe: anything
// outside [A-Za-z0-9._-] becomes an underscore and traversal sequences
// cannot survive.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	sanitized := strings.Trim(b.String(), ".")
	if sanitized == "" {
		sanitized = "blob"
	}
	return sanitized
}

// passNotFound keeps a NotFoundError intact and wraps everything else
// as an upstream failure.
func passNotFound(op string, err error) error {
	var nf *telegram.NotFoundError
	if errors.As(err, &nf) {
		return nf
	}
	return &telegram.UpstreamError{Op: op, Err: err}
}

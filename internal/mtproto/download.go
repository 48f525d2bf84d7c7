package mtproto

import (
	"context"
	"fmt"
	"io"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"

	"telegram-dwh/internal/telegram"
)

// DownloadMedia streams a message's attachment into w
func (c *Client) DownloadMedia(ctx context.Context, peerID, messageID int64, w io.Writer) (*telegram.BlobInfo, error) {
	m, err := c.fetchMessage(ctx, peerID, messageID)
	if err != nil {
		return nil, err
	}

	switch media := m.Media.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := media.Photo.(*tg.Photo)
		if !ok {
			return nil, &telegram.NotFoundError{Resource: "media", ID: messageID}
		}
		loc := &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     largestPhotoSize(photo.Sizes),
		}
		return c.stream(ctx, loc, fmt.Sprintf("%d", photo.ID), w)

	case *tg.MessageMediaDocument:
		doc, ok := media.Document.(*tg.Document)
		if !ok {
			return nil, &telegram.NotFoundError{Resource: "media", ID: messageID}
		}
		loc := &tg.InputDocumentFileLocation{
			ID:            doc.ID,
			AccessHash:    doc.AccessHash,
			FileReference: doc.FileReference,
		}
		info, err := c.stream(ctx, loc, fmt.Sprintf("%d", doc.ID), w)
		if err != nil {
			return nil, err
		}
		info.Size = doc.Size
		return info, nil
	}

	return nil, &telegram.NotFoundError{Resource: "media", ID: messageID}
}

// DownloadAvatar streams a peer's profile photo into w
func (c *Client) DownloadAvatar(ctx context.Context, peerID int64, w io.Writer) (*telegram.BlobInfo, error) {
	info, ok := c.peers.get(peerID)
	if !ok {
		return nil, &telegram.NotFoundError{Resource: "chat", ID: peerID}
	}
	if info.photoID == 0 {
		return nil, &telegram.NotFoundError{Resource: "avatar", ID: peerID}
	}

	loc := &tg.InputPeerPhotoFileLocation{
		Peer:    info.inputPeer,
		PhotoID: info.photoID,
		Big:     true,
	}
	return c.stream(ctx, loc, fmt.Sprintf("%d", info.photoID), w)
}

// stream downloads a file location into w
func (c *Client) stream(ctx context.Context, loc tg.InputFileLocationClass, uniqueID string, w io.Writer) (*telegram.BlobInfo, error) {
	_, err := downloader.NewDownloader().Download(c.tg.API(), loc).Stream(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return &telegram.BlobInfo{UniqueID: uniqueID}, nil
}

// largestPhotoSize picks the thumb type of the largest fully-materialized
// size. Stripped and progressive variants without a plain size are
// skipped unless nothing else is available.
func largestPhotoSize(sizes []tg.PhotoSizeClass) string {
	best := ""
	bestArea := -1
	for _, sc := range sizes {
		switch s := sc.(type) {
		case *tg.PhotoSize:
			if area := s.W * s.H; area > bestArea {
				bestArea = area
				best = s.Type
			}
		case *tg.PhotoSizeProgressive:
			if area := s.W * s.H; area > bestArea {
				bestArea = area
				best = s.Type
			}
		}
	}
	if best == "" && len(sizes) > 0 {
		best = sizes[len(sizes)-1].GetType()
	}
	return best
}

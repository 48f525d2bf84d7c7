package mtproto

import (
	"sync"

	"github.com/gotd/td/tg"

	"telegram-dwh/internal/telegram"
)

// peerInfo is everything the raw API needs to address a peer again:
// the typed input peer (carrying the access hash), the converted entity
// and the current profile photo id.
type peerInfo struct {
	entity    telegram.Entity
	inputPeer tg.InputPeerClass
	photoID   int64
}

// peerRegistry remembers every peer seen in upstream responses. MTProto
// responses reference peers by bare id; without the access hash recorded
// here the id cannot be dereferenced later.
type peerRegistry struct {
	mu    sync.RWMutex
	peers map[int64]*peerInfo
}

func newPeerRegistry() *peerRegistry {
	return &peerRegistry{peers: make(map[int64]*peerInfo)}
}

func (r *peerRegistry) get(id int64) (*peerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.peers[id]
	return info, ok
}

func (r *peerRegistry) put(id int64, info *peerInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[id] = info
}

func (r *peerRegistry) addUser(u *tg.User) {
	info := &peerInfo{
		entity:    userEntity(u),
		inputPeer: &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash},
	}
	if photo, ok := u.Photo.(*tg.UserProfilePhoto); ok {
		info.photoID = photo.PhotoID
	}
	r.put(u.ID, info)
}

func (r *peerRegistry) addUsers(users []tg.UserClass) {
	for _, uc := range users {
		if u, ok := uc.(*tg.User); ok {
			r.addUser(u)
		}
	}
}

func (r *peerRegistry) addChats(chats []tg.ChatClass) {
	for _, cc := range chats {
		switch ch := cc.(type) {
		case *tg.Chat:
			info := &peerInfo{
				entity: telegram.Entity{
					Kind:  telegram.PeerGroup,
					ID:    ch.ID,
					Title: ch.Title,
				},
				inputPeer: &tg.InputPeerChat{ChatID: ch.ID},
			}
			if photo, ok := ch.Photo.(*tg.ChatPhoto); ok {
				info.photoID = photo.PhotoID
				info.entity.HasPhoto = true
			}
			r.put(ch.ID, info)
		case *tg.Channel:
			kind := telegram.PeerChannel
			if ch.Megagroup {
				kind = telegram.PeerGroup
			}
			info := &peerInfo{
				entity: telegram.Entity{
					Kind:     kind,
					ID:       ch.ID,
					Title:    ch.Title,
					Username: ch.Username,
				},
				inputPeer: &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash},
			}
			if photo, ok := ch.Photo.(*tg.ChatPhoto); ok {
				info.photoID = photo.PhotoID
				info.entity.HasPhoto = true
			}
			r.put(ch.ID, info)
		}
	}
}

// userEntity converts an upstream user to the transport entity shape
func userEntity(u *tg.User) telegram.Entity {
	e := telegram.Entity{
		Kind:      telegram.PeerUser,
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Phone:     u.Phone,
	}
	if _, ok := u.Photo.(*tg.UserProfilePhoto); ok {
		e.HasPhoto = true
	}
	return e
}

// peerTitle is the display title of a registered entity
func peerTitle(e *telegram.Entity) string {
	if e.Kind == telegram.PeerUser {
		if e.LastName != "" {
			return e.FirstName + " " + e.LastName
		}
		return e.FirstName
	}
	return e.Title
}

// peerClassID extracts the bare id from a peer reference
func peerClassID(p tg.PeerClass) int64 {
	switch v := p.(type) {
	case *tg.PeerUser:
		return v.UserID
	case *tg.PeerChat:
		return v.ChatID
	case *tg.PeerChannel:
		return v.ChannelID
	}
	return 0
}

package telegram

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"telegram-dwh/internal/models"
)

// Gateway owns the single long-lived session to the messaging backend.
// Exactly one instance exists per process; every request shares it.
// Authentication transitions (connect, sign-in, logout) are serialized by
// one mutex. Read operations run concurrently once authorized; the
// transport multiplexes requests over one connection.
type Gateway struct {
	client     Client
	configured bool
	phone      string

	mu         sync.Mutex // serializes auth transitions only
	authorized atomic.Bool
	selfID     atomic.Int64
}

// NewGateway creates the process-wide session gateway. configured must be
// false when API credentials are absent; every data operation then fails
// with ErrNotConfigured instead of reaching the transport.
func NewGateway(client Client, configured bool, phone string) *Gateway {
	return &Gateway{client: client, configured: configured, phone: phone}
}

// SelfID returns the authenticated user's id, or 0 before authorization
func (g *Gateway) SelfID() int64 {
	return g.selfID.Load()
}

// Client exposes the underlying transport for read operations. Callers
// must have passed EnsureReady first.
func (g *Gateway) Client() Client {
	return g.client
}

// EnsureReady guarantees a connected, authorized session. Fails with
// ErrNotConfigured when credentials are absent and ErrNotAuthorized when
// the upstream rejects the session. The fast path after the first success
// is lock-free.
func (g *Gateway) EnsureReady(ctx context.Context) error {
	if !g.configured {
		return ErrNotConfigured
	}
	if g.authorized.Load() {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authorized.Load() {
		return nil
	}

	if err := g.connectLocked(ctx); err != nil {
		return err
	}

	ok, err := g.client.IsAuthorized(ctx)
	if err != nil {
		return upstream("check authorization", err)
	}
	if !ok {
		return ErrNotAuthorized
	}

	if err := g.cacheSelfLocked(ctx); err != nil {
		return err
	}
	g.authorized.Store(true)
	log.Printf("[Gateway] Session ready user_id=%d", g.selfID.Load())
	return nil
}

// RequestCode starts the login flow and returns the opaque code hash the
// client must echo back on submit.
func (g *Gateway) RequestCode(ctx context.Context, phone string) (string, error) {
	if !g.configured {
		return "", ErrNotConfigured
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.connectLocked(ctx); err != nil {
		return "", err
	}

	hash, err := g.client.SendCode(ctx, phone)
	if err != nil {
		log.Printf("[Gateway] RequestCode failed phone=%s err=%v", phone, err)
		return "", upstream("send code", err)
	}
	log.Printf("[Gateway] Login code requested phone=%s", phone)
	return hash, nil
}

// SubmitCode completes the login flow. When the upstream demands a
// two-factor password and none was supplied the call fails with
// ErrPasswordRequired; with a password it attempts the second sign-in
// step. A rejected code surfaces as ErrInvalidCode.
func (g *Gateway) SubmitCode(ctx context.Context, phone, codeHash, code, password string) (models.AuthStatus, error) {
	if !g.configured {
		return models.AuthStatus{}, ErrNotConfigured
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.connectLocked(ctx); err != nil {
		return models.AuthStatus{}, err
	}

	err := g.client.SignIn(ctx, phone, codeHash, code)
	if errors.Is(err, ErrPasswordRequired) {
		if password == "" {
			return models.AuthStatus{}, ErrPasswordRequired
		}
		err = g.client.SignInWithPassword(ctx, password)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return models.AuthStatus{}, ErrInvalidCode
		}
		log.Printf("[Gateway] SubmitCode failed phone=%s err=%v", phone, err)
		return models.AuthStatus{}, upstream("sign in", err)
	}

	if err := g.cacheSelfLocked(ctx); err != nil {
		return models.AuthStatus{}, err
	}
	g.authorized.Store(true)
	log.Printf("[Gateway] Signed in phone=%s user_id=%d", phone, g.selfID.Load())
	return models.AuthStatus{Authorized: true, UserID: g.selfID.Load(), Phone: phone}, nil
}

// Logout terminates the session. Idempotent: calling it without a live
// session reports the already-logged-out status instead of an error.
func (g *Gateway) Logout(ctx context.Context) (models.AuthStatus, error) {
	if !g.configured {
		return models.AuthStatus{}, ErrNotConfigured
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.client.IsConnected() {
		g.authorized.Store(false)
		return models.AuthStatus{Authorized: false}, nil
	}

	ok, err := g.client.IsAuthorized(ctx)
	if err != nil {
		return models.AuthStatus{}, upstream("check authorization", err)
	}
	if !ok {
		g.authorized.Store(false)
		return models.AuthStatus{Authorized: false}, nil
	}

	if err := g.client.SignOut(ctx); err != nil {
		return models.AuthStatus{}, upstream("sign out", err)
	}
	g.authorized.Store(false)
	g.selfID.Store(0)
	log.Printf("[Gateway] Logged out")
	return models.AuthStatus{Authorized: false}, nil
}

// Status reports the current authorization state without side effects:
// it never connects a disconnected session.
func (g *Gateway) Status(ctx context.Context) (models.AuthStatus, error) {
	if !g.configured || !g.client.IsConnected() {
		return models.AuthStatus{Authorized: false}, nil
	}

	ok, err := g.client.IsAuthorized(ctx)
	if err != nil {
		return models.AuthStatus{}, upstream("check authorization", err)
	}
	if !ok {
		return models.AuthStatus{Authorized: false}, nil
	}

	self, err := g.client.Self(ctx)
	if err != nil {
		return models.AuthStatus{}, upstream("get self", err)
	}
	return models.AuthStatus{Authorized: true, UserID: self.ID, Phone: self.Phone}, nil
}

// Close disconnects the session at process shutdown
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.authorized.Store(false)
	if !g.client.IsConnected() {
		return nil
	}
	return g.client.Disconnect()
}

func (g *Gateway) connectLocked(ctx context.Context) error {
	if g.client.IsConnected() {
		return nil
	}
	if err := g.client.Connect(ctx); err != nil {
		log.Printf("[Gateway] Connect failed err=%v", err)
		return upstream("connect", err)
	}
	log.Printf("[Gateway] Connected to upstream")
	return nil
}

func (g *Gateway) cacheSelfLocked(ctx context.Context) error {
	self, err := g.client.Self(ctx)
	if err != nil {
		return upstream("get self", err)
	}
	g.selfID.Store(self.ID)
	return nil
}

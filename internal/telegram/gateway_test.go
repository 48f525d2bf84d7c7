package telegram

import (
	"context"
	"errors"
	"io"
	"testing"
)

// fakeClient is an in-memory Client for gateway tests
type fakeClient struct {
	connected      bool
	authorized     bool
	self           Entity
	connectErr     error
	passwordNeeded bool
	validCode      string
	validPassword  string
	connectCalls   int
	signOutCalls   int
}

func (f *fakeClient) Connect(ctx context.Context) error {
	f.connectCalls++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeClient) Disconnect() error {
	f.connected = false
	return nil
}

func (f *fakeClient) IsConnected() bool { return f.connected }

func (f *fakeClient) IsAuthorized(ctx context.Context) (bool, error) {
	return f.authorized, nil
}

func (f *fakeClient) Self(ctx context.Context) (*Entity, error) {
	s := f.self
	return &s, nil
}

func (f *fakeClient) Dialogs(ctx context.Context, q DialogQuery) ([]RawDialog, error) {
	return nil, nil
}

func (f *fakeClient) Entity(ctx context.Context, peerID int64) (*Entity, error) {
	return nil, errors.New("no such entity")
}

func (f *fakeClient) History(ctx context.Context, peerID int64, limit int, offsetID int64) ([]RawMessage, error) {
	return nil, nil
}

func (f *fakeClient) Message(ctx context.Context, peerID, messageID int64) (*RawMessage, error) {
	return nil, errors.New("no such message")
}

func (f *fakeClient) Send(ctx context.Context, peerID int64, text string) error { return nil }

func (f *fakeClient) DownloadMedia(ctx context.Context, peerID, messageID int64, w io.Writer) (*BlobInfo, error) {
	return nil, errors.New("no media")
}

func (f *fakeClient) DownloadAvatar(ctx context.Context, peerID int64, w io.Writer) (*BlobInfo, error) {
	return nil, errors.New("no avatar")
}

func (f *fakeClient) SendCode(ctx context.Context, phone string) (string, error) {
	return "hash-123", nil
}

func (f *fakeClient) SignIn(ctx context.Context, phone, codeHash, code string) error {
	if f.passwordNeeded {
		return ErrPasswordRequired
	}
	if code != f.validCode {
		return ErrInvalidCode
	}
	f.authorized = true
	return nil
}

func (f *fakeClient) SignInWithPassword(ctx context.Context, password string) error {
	if password != f.validPassword {
		return errors.New("password invalid")
	}
	f.authorized = true
	return nil
}

func (f *fakeClient) SignOut(ctx context.Context) error {
	f.signOutCalls++
	f.authorized = false
	return nil
}

func TestEnsureReady_NotConfigured(t *testing.T) {
	gw := NewGateway(&fakeClient{}, false, "")

	if err := gw.EnsureReady(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestEnsureReady_Unauthorized(t *testing.T) {
	fake := &fakeClient{}
	gw := NewGateway(fake, true, "+100")

	err := gw.EnsureReady(context.Background())
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
	if !fake.connected {
		t.Error("expected lazy connect to have happened")
	}
}

func TestEnsureReady_ConnectsOnceAndCachesSelf(t *testing.T) {
	fake := &fakeClient{authorized: true, self: Entity{Kind: PeerUser, ID: 777}}
	gw := NewGateway(fake, true, "+100")

	for i := 0; i < 3; i++ {
		if err := gw.EnsureReady(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if fake.connectCalls != 1 {
		t.Errorf("expected 1 connect, got %d", fake.connectCalls)
	}
	if gw.SelfID() != 777 {
		t.Errorf("expected self id 777, got %d", gw.SelfID())
	}
}

func TestEnsureReady_ConnectFailureIsUpstream(t *testing.T) {
	fake := &fakeClient{connectErr: errors.New("network down")}
	gw := NewGateway(fake, true, "+100")

	err := gw.EnsureReady(context.Background())
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestSubmitCode_PasswordRequired(t *testing.T) {
	fake := &fakeClient{passwordNeeded: true, validPassword: "hunter2"}
	gw := NewGateway(fake, true, "+100")

	_, err := gw.SubmitCode(context.Background(), "+100", "hash", "12345", "")
	if !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("expected ErrPasswordRequired, got %v", err)
	}

	status, err := gw.SubmitCode(context.Background(), "+100", "hash", "12345", "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Authorized {
		t.Error("expected authorized status after password sign-in")
	}
}

func TestSubmitCode_InvalidCode(t *testing.T) {
	fake := &fakeClient{validCode: "12345"}
	gw := NewGateway(fake, true, "+100")

	_, err := gw.SubmitCode(context.Background(), "+100", "hash", "99999", "")
	if !errors.Is(err, ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode, got %v", err)
	}
	if errors.Is(err, ErrPasswordRequired) {
		t.Error("invalid code must stay distinct from password-required")
	}
}

func TestSubmitCode_Success(t *testing.T) {
	fake := &fakeClient{validCode: "12345", self: Entity{Kind: PeerUser, ID: 42}}
	gw := NewGateway(fake, true, "+100")

	status, err := gw.SubmitCode(context.Background(), "+100", "hash", "12345", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Authorized || status.UserID != 42 {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	fake := &fakeClient{connected: true, authorized: true}
	gw := NewGateway(fake, true, "+100")

	status, err := gw.Logout(context.Background())
	if err != nil {
		t.Fatalf("first logout failed: %v", err)
	}
	if status.Authorized {
		t.Error("expected unauthorized status after logout")
	}

	status, err = gw.Logout(context.Background())
	if err != nil {
		t.Fatalf("second logout should succeed idempotently: %v", err)
	}
	if status.Authorized {
		t.Error("expected unauthorized status on repeat logout")
	}
	if fake.signOutCalls != 1 {
		t.Errorf("expected 1 upstream sign-out, got %d", fake.signOutCalls)
	}
}

func TestStatus_NoSideEffects(t *testing.T) {
	fake := &fakeClient{}
	gw := NewGateway(fake, true, "+100")

	status, err := gw.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Authorized {
		t.Error("expected unauthorized status")
	}
	if fake.connectCalls != 0 {
		t.Error("status must not connect a disconnected session")
	}
}

func TestStatus_Authorized(t *testing.T) {
	fake := &fakeClient{connected: true, authorized: true, self: Entity{Kind: PeerUser, ID: 9, Phone: "+100"}}
	gw := NewGateway(fake, true, "+100")

	status, err := gw.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Authorized || status.UserID != 9 || status.Phone != "+100" {
		t.Errorf("unexpected status %+v", status)
	}
}

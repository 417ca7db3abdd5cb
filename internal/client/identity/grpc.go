package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentable/internal/client/client"
	"github.com/dmitrijs2005/rentable/internal/client/models"
	authstore "github.com/dmitrijs2005/rentable/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/logging"
	"github.com/dmitrijs2005/rentable/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// SessionKey is the auth_storage key holding the persisted session.
const SessionKey = "session"

// GRPCBackend talks to the Identity service and caches the session.
type GRPCBackend struct {
	client rpc.IdentityClient
	store  authstore.Repository
	logger logging.Logger
	conn   *grpc.ClientConn
	now    func() time.Time

	mu      sync.RWMutex
	session *models.Session

	refreshMu sync.Mutex
	events    *broadcaster
}

// New builds a backend on an existing Identity client. store may be nil,
// in which case the session lives in memory only.
func New(c rpc.IdentityClient, store authstore.Repository, logger logging.Logger) *GRPCBackend {
	return &GRPCBackend{
		client: c,
		store:  store,
		logger: logger,
		now:    time.Now,
		events: newBroadcaster(),
	}
}

// Dial connects to addr with the backend's token interceptor installed.
// The returned connection is shared with the profile and object stores;
// Close releases it.
func Dial(addr string, store authstore.Repository, logger logging.Logger) (*GRPCBackend, *grpc.ClientConn, error) {
	b := New(nil, store, logger)
	conn, err := client.Dial(addr, b.accessTokenInterceptor)
	if err != nil {
		return nil, nil, err
	}
	b.conn = conn
	b.client = rpc.NewIdentityClient(conn)
	return b, conn, nil
}

func (b *GRPCBackend) Close() error {
	b.events.close()
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

// Load restores a persisted session, if any, and emits initialSession.
func (b *GRPCBackend) Load(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	raw, err := b.store.Get(ctx, SessionKey)
	if err != nil {
		return err
	}
	var s *models.Session
	if raw != nil {
		var wire rpc.Session
		if err := json.Unmarshal(raw, &wire); err != nil {
			b.logger.Warn(ctx, "discarding unreadable stored session", "error", err)
			_ = b.store.Delete(ctx, SessionKey)
		} else if wire.AccessToken != "" {
			s = toSession(wire, b.now())
		}
	}
	b.mu.Lock()
	b.session = s
	b.mu.Unlock()
	b.emit(ctx, models.AuthEventInitialSession, s)
	return nil
}

func (b *GRPCBackend) CurrentSession() *models.Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return copySession(b.session)
}

func (b *GRPCBackend) Subscribe() (<-chan models.AuthEvent, func()) {
	return b.events.subscribe()
}

func (b *GRPCBackend) SignUp(ctx context.Context, email, password string) (*models.SessionUser, error) {
	resp, err := b.client.SignUp(ctx, &rpc.SignUpRequest{Email: email, Password: password})
	if err != nil {
		return nil, client.MapError(err)
	}
	u := toUser(resp.User)
	return &u, nil
}

func (b *GRPCBackend) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := b.client.SignIn(ctx, &rpc.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, client.MapError(err)
	}
	return b.signedIn(ctx, resp.Session), nil
}

func (b *GRPCBackend) VerifyOTP(ctx context.Context, email, token, otpType string) (*models.Session, error) {
	resp, err := b.client.VerifyOTP(ctx, &rpc.VerifyOTPRequest{Email: email, Token: token, Type: otpType})
	if err != nil {
		return nil, client.MapError(err)
	}
	return b.signedIn(ctx, resp.Session), nil
}

func (b *GRPCBackend) Resend(ctx context.Context, email string) error {
	_, err := b.client.Resend(ctx, &rpc.EmailRequest{Email: email})
	return client.MapError(err)
}

func (b *GRPCBackend) SignInWithOTP(ctx context.Context, email string) error {
	_, err := b.client.SignInWithOTP(ctx, &rpc.EmailRequest{Email: email})
	return client.MapError(err)
}

// SignOut revokes the session remotely. Local state is cleared and
// signedOut emitted even when the remote call fails.
func (b *GRPCBackend) SignOut(ctx context.Context) error {
	var err error
	if b.CurrentSession() != nil {
		_, err = b.client.SignOut(ctx, &rpc.Empty{})
	}
	b.setSession(ctx, nil)
	b.emit(ctx, models.AuthEventSignedOut, nil)
	return client.MapError(err)
}

// RefreshUser re-reads the identity of the current session and emits
// userUpdated.
func (b *GRPCBackend) RefreshUser(ctx context.Context) (*models.SessionUser, error) {
	if b.CurrentSession() == nil {
		return nil, client.ErrNoSession
	}
	resp, err := b.client.GetUser(ctx, &rpc.Empty{})
	if err != nil {
		return nil, client.MapError(err)
	}
	u := toUser(resp.User)

	b.mu.Lock()
	if b.session == nil {
		b.mu.Unlock()
		return nil, client.ErrNoSession
	}
	b.session.User = u
	s := copySession(b.session)
	b.mu.Unlock()

	b.persist(ctx, s)
	b.emit(ctx, models.AuthEventUserUpdated, s)
	return &u, nil
}

// SessionFromURL imports the tokens carried by an auth callback URL, in
// the fragment or the query, and resolves the user they belong to.
func (b *GRPCBackend) SessionFromURL(ctx context.Context, rawURL string) (*models.Session, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse callback url: %w", err)
	}
	params := u.Query()
	if u.Fragment != "" {
		if frag, err := url.ParseQuery(u.Fragment); err == nil && frag.Get("access_token") != "" {
			params = frag
		}
	}
	if errDesc := params.Get("error_description"); errDesc != "" {
		return nil, &client.APIError{Code: codes.Unauthenticated, Message: errDesc}
	}
	access := params.Get("access_token")
	if access == "" {
		return nil, ErrInvalidCallback
	}

	wire := rpc.Session{
		AccessToken:  access,
		RefreshToken: params.Get("refresh_token"),
	}
	if v, err := strconv.ParseInt(params.Get("expires_at"), 10, 64); err == nil {
		wire.ExpiresAt = v
	}
	if v, err := strconv.ParseInt(params.Get("expires_in"), 10, 64); err == nil {
		wire.ExpiresIn = v
	}

	ctx = withAccessToken(ctx, access)
	resp, err := b.client.GetUser(ctx, &rpc.Empty{})
	if err != nil {
		return nil, client.MapError(err)
	}
	wire.User = resp.User
	return b.signedIn(ctx, wire), nil
}

func (b *GRPCBackend) Ping(ctx context.Context) error {
	_, err := b.client.Ping(ctx, &rpc.Empty{})
	return client.MapError(err)
}

func (b *GRPCBackend) signedIn(ctx context.Context, wire rpc.Session) *models.Session {
	s := toSession(wire, b.now())
	b.setSession(ctx, s)
	b.emit(ctx, models.AuthEventSignedIn, s)
	return copySession(s)
}

func (b *GRPCBackend) setSession(ctx context.Context, s *models.Session) {
	b.mu.Lock()
	b.session = copySession(s)
	b.mu.Unlock()
	b.persist(ctx, s)
}

// persist failures are logged; the in-memory session stays authoritative.
func (b *GRPCBackend) persist(ctx context.Context, s *models.Session) {
	if b.store == nil {
		return
	}
	if s == nil {
		if err := b.store.Delete(ctx, SessionKey); err != nil {
			b.logger.Warn(ctx, "failed to delete stored session", "error", err)
		}
		return
	}
	raw, err := json.Marshal(fromSession(s))
	if err != nil {
		b.logger.Warn(ctx, "failed to encode session", "error", err)
		return
	}
	if err := b.store.Set(ctx, SessionKey, raw); err != nil {
		b.logger.Warn(ctx, "failed to store session", "error", err)
	}
}

func (b *GRPCBackend) emit(ctx context.Context, kind models.AuthEventKind, s *models.Session) {
	if n := b.events.publish(models.AuthEvent{Kind: kind, Session: copySession(s)}); n > 0 {
		b.logger.Warn(ctx, "auth event dropped", "event", string(kind), "subscribers", n)
	}
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func hasAccessToken(ctx context.Context) bool {
	md, ok := metadata.FromOutgoingContext(ctx)
	return ok && len(md.Get(common.AccessTokenHeaderName)) > 0
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

// accessTokenInterceptor attaches the session's access token and, when the
// backend reports it expired, refreshes once and retries.
func (b *GRPCBackend) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if method == rpc.IdentityRefreshToken || hasAccessToken(ctx) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	s := b.CurrentSession()
	if s == nil {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, s.AccessToken), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) || s.RefreshToken == "" {
		return err
	}

	fresh, rerr := b.refresh(ctx, s)
	if rerr != nil {
		return err
	}
	return invoker(withAccessToken(ctx, fresh.AccessToken), method, req, reply, cc, opts...)
}

// refresh rotates the token pair once per expired session; concurrent
// callers holding the same stale session share the result.
func (b *GRPCBackend) refresh(ctx context.Context, stale *models.Session) (*models.Session, error) {
	b.refreshMu.Lock()
	defer b.refreshMu.Unlock()

	cur := b.CurrentSession()
	if cur == nil {
		return nil, client.ErrNoSession
	}
	if cur.AccessToken != stale.AccessToken {
		return cur, nil
	}

	resp, err := b.client.RefreshToken(ctx, &rpc.RefreshTokenRequest{RefreshToken: cur.RefreshToken})
	if err != nil {
		mapped := client.MapError(err)
		if client.IsCode(mapped, codes.Unauthenticated) {
			b.logger.Info(ctx, "refresh token rejected, signing out", "error", mapped)
			b.setSession(ctx, nil)
			b.emit(ctx, models.AuthEventSignedOut, nil)
		}
		return nil, mapped
	}

	s := toSession(resp.Session, b.now())
	if s.User.ID == "" {
		s.User = cur.User
	}
	b.setSession(ctx, s)
	b.emit(ctx, models.AuthEventTokenRefreshed, s)
	return copySession(s), nil
}

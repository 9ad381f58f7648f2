package security

import (
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/samber/oops"

	"todo_server/internal/common"
)

// TokenTTL is the fixed lifetime of an access token.
const TokenTTL = 15 * time.Minute

// TokenConfig is the process-wide signing configuration, loaded once at startup.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Identity is the verified subject of a bearer token. It is valid for the
// request that presented the token only.
type Identity struct {
	UserID    int64
	Subject   string
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 access tokens. Expiry is absolute and
// checked with zero clock skew.
type TokenService struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now for issuance and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(cfg TokenConfig, opts ...TokenOption) *TokenService {
	s := &TokenService{ttl: cfg.TTL, now: time.Now}
	if s.ttl <= 0 {
		s.ttl = TokenTTL
	}
	for _, opt := range opts {
		opt(s)
	}
	s.auth = jwtauth.New("HS256", cfg.Secret, nil,
		jwxjwt.WithAcceptableSkew(0),
		jwxjwt.WithClock(jwxjwt.ClockFunc(func() time.Time { return s.now() })),
	)
	return s
}

// Issue signs a token whose subject is userID and which expires TTL after now.
func (s *TokenService) Issue(userID int64) (string, error) {
	issuedAt := s.now().Truncate(time.Second)
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": issuedAt.Unix(),
		"exp": issuedAt.Add(s.ttl).Unix(),
		"jti": uuid.NewString(),
	}
	_, tokenString, err := s.auth.Encode(claims)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").
			With("user_id", userID).
			Public("JWT generate error").
			Wrap(err)
	}
	return tokenString, nil
}

// Verify checks signature, format and expiry. Every failure is the same
// AuthError(InvalidToken).
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	invalid := common.NewAuthError(common.AuthInvalidToken)

	token, err := jwtauth.VerifyToken(s.auth, tokenString)
	if err != nil || token == nil {
		return Identity{}, invalid
	}

	expiresAt := token.Expiration()
	if expiresAt.IsZero() {
		return Identity{}, invalid
	}

	subject := token.Subject()
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || strconv.FormatInt(userID, 10) != subject {
		return Identity{}, invalid
	}

	return Identity{UserID: userID, Subject: subject, ExpiresAt: expiresAt}, nil
}

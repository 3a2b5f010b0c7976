package resource

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/boldserve/adminconsole/internal/apiclient"
	"github.com/boldserve/adminconsole/internal/apperr"
)

const InvalidCredentialsMessage = "Invalid credentials"

// Credentials as typed into the login form
type Credentials struct {
	UserID   string `json:"userId" form:"userId" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Authenticator exchanges credentials for a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, cred Credentials) (string, error)
	Name() string
}

// BackendAuthenticator logs in against POST /api/admin/login.
type BackendAuthenticator struct {
	api *apiclient.Client
}

var _ Authenticator = (*BackendAuthenticator)(nil)

func NewBackendAuthenticator(api *apiclient.Client) *BackendAuthenticator {
	return &BackendAuthenticator{api: api}
}

func (a *BackendAuthenticator) Name() string {
	return "backend"
}

func (a *BackendAuthenticator) Authenticate(ctx context.Context, cred Credentials) (string, error) {
	raw, err := a.api.Post(ctx, "/api/admin/login", cred, apiclient.WithoutSessionReset())
	if err != nil {
		// 401 here means wrong credentials; any current session stays
		if ae, ok := apperr.From(err); ok && ae.Kind == apperr.KindUnauthorized {
			msg := apiclient.ExtractMessage(ae.Body)
			if msg == "" {
				msg = InvalidCredentialsMessage
			}
			return "", apperr.HTTP(http.StatusUnauthorized, ae.Body, msg)
		}
		return "", err
	}

	var reply struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", apperr.Malformed(raw, errors.Wrap(err, "decode login reply"))
	}
	if !reply.Success || reply.Token == "" {
		msg := reply.Message
		if msg == "" {
			msg = InvalidCredentialsMessage
		}
		return "", apperr.HTTP(http.StatusOK, raw, msg)
	}
	return reply.Token, nil
}

// StaticAuthenticator compares against one configured identifier and secret
// and mints a locally signed token. It is a placeholder for installations
// whose backend has no admin login.
type StaticAuthenticator struct {
	userID   string
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

var _ Authenticator = (*StaticAuthenticator)(nil)

func NewStaticAuthenticator(userID, password, secret string) *StaticAuthenticator {
	return &StaticAuthenticator{
		userID:   userID,
		password: password,
		secret:   []byte(secret),
		ttl:      24 * time.Hour,
		now:      time.Now,
	}
}

func (a *StaticAuthenticator) Name() string {
	return "static"
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, cred Credentials) (string, error) {
	idOK := subtle.ConstantTimeCompare([]byte(cred.UserID), []byte(a.userID)) == 1
	pwOK := subtle.ConstantTimeCompare([]byte(cred.Password), []byte(a.password)) == 1
	if !idOK || !pwOK {
		return "", apperr.HTTP(http.StatusUnauthorized, nil, InvalidCredentialsMessage)
	}
	now := a.now()
	claims := jwt.MapClaims{
		"sub":  cred.UserID,
		"name": cred.UserID,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(a.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign local token")
	}
	return token, nil
}

// Identity is what the console can tell about the logged-in operator.
type Identity struct {
	Subject   string    `json:"subject,omitempty"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Opaque    bool      `json:"opaque"`
}

// ParseIdentity reads the claims of a JWT without verifying its signature;
// the backend is the only party that verifies. Tokens that are not JWTs are
// reported as opaque.
func ParseIdentity(token string) Identity {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{Opaque: true}
	}
	id := Identity{
		Subject: claimString(claims, "sub", "id", "_id", "adminId"),
		Name:    claimString(claims, "name", "fullName", "userId", "username"),
		Email:   claimString(claims, "email"),
		Role:    claimString(claims, "role"),
	}
	if iat := cast.ToInt64(claims["iat"]); iat > 0 {
		id.IssuedAt = time.Unix(iat, 0)
	}
	if exp := cast.ToInt64(claims["exp"]); exp > 0 {
		id.ExpiresAt = time.Unix(exp, 0)
	}
	if id.Name == "" {
		id.Name = id.Subject
	}
	return id
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := claims[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

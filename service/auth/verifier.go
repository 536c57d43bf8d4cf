package auth

import (
	"context"

	"github.com/covechat/cove/service/store"
	"github.com/covechat/cove/tools/errs"
	"github.com/covechat/cove/tools/security"
)

// Identity is what a verified bearer token resolves to.
type Identity struct {
	UserID   string
	Username string
	Avatar   string
}

// Verifier validates a bearer token and returns the identity behind it.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// JWTVerifier checks the HMAC signature, then loads the user row so
// deactivated or deleted accounts are rejected even with a valid token.
type JWTVerifier struct {
	opts  security.Options
	users store.UserStore
}

func NewJWTVerifier(secret string, users store.UserStore) *JWTVerifier {
	return &JWTVerifier{opts: security.DefaultOptions([]byte(secret)), users: users}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, errs.ErrUnauthorized.WithDetail("missing token")
	}
	sub, err := security.VerifySubject(v.opts, token)
	if err != nil {
		return nil, errs.ErrUnauthorized.WithDetail(err.Error())
	}

	u, err := v.users.GetUser(ctx, sub)
	if err != nil {
		return nil, errs.ErrResolution.WithDetail(err.Error())
	}
	if u == nil || u.Deactivated {
		return nil, errs.ErrUnauthorized.WithDetail("unknown or deactivated user")
	}
	return &Identity{UserID: u.ID, Username: u.Username, Avatar: u.Avatar}, nil
}

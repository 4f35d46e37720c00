package token

import (
	"context"
	"time"
)

// RefreshTokenStore is the server-side record of currently honorable
// refresh tokens. A refresh token is accepted only while it is present
// here; Delete is the revocation mechanism.
type RefreshTokenStore interface {
	Save(ctx context.Context, rawToken, subject string, expiresAt time.Time) error
	Exists(ctx context.Context, rawToken string) (bool, error)
	Delete(ctx context.Context, rawToken string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

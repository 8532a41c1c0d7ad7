package ports

import "context"

// ResetKeyStore issues and redeems single-use change-password keys.
type ResetKeyStore interface {
	Issue(ctx context.Context, accountID string) (key string, err error)
	// Verify returns the account id the key was issued for without using
	// it up. Unknown, expired or redeemed keys yield domain.ErrResetKeyInvalid.
	Verify(ctx context.Context, key string) (accountID string, err error)
	// Redeem invalidates the key. A key can be redeemed once.
	Redeem(ctx context.Context, key string) error
}

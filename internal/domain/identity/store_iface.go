package identity

import "context"

type StoreAPI interface {
	Create(ctx context.Context, account Account) error
	GetByID(ctx context.Context, id string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	UpdateProfile(ctx context.Context, id, email, role string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
	UpdateMFASecret(ctx context.Context, id string, secretEnc []byte) error
	SetMFAEnabled(ctx context.Context, id string, enabled bool) error
}

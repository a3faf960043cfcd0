package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"hcm/internal/platform/crypto"
)

const mfaIssuer = "HCM"

// Service owns accounts and credentials. It implements the account
// operations the employee directory relies on when hiring, amending and
// dismissing employees.
type Service struct {
	Store  StoreAPI
	Tokens *TokenIssuer
	Sealer *crypto.Sealer
}

func NewService(store StoreAPI, tokens *TokenIssuer, sealer *crypto.Sealer) *Service {
	return &Service{Store: store, Tokens: tokens, Sealer: sealer}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount registers a new account and returns its id.
func (s *Service) CreateAccount(ctx context.Context, email, password, role string) (string, error) {
	if !ValidRole(role) {
		return "", ErrInvalidRole
	}
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	account := Account{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.Store.Create(ctx, account); err != nil {
		return "", err
	}
	return account.ID, nil
}

func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

func (s *Service) UpdateAccount(ctx context.Context, id, email, role string) error {
	if !ValidRole(role) {
		return ErrInvalidRole
	}
	return s.Store.UpdateProfile(ctx, id, normalizeEmail(email), role)
}

func (s *Service) ResetPassword(ctx context.Context, id, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.Store.UpdatePassword(ctx, id, hash)
}

func (s *Service) Account(ctx context.Context, id string) (Account, error) {
	return s.Store.GetByID(ctx, id)
}

// Authenticate checks credentials, and the TOTP code when MFA is enabled,
// then issues a bearer token.
func (s *Service) Authenticate(ctx context.Context, email, password, mfaCode string) (LoginResult, error) {
	account, err := s.Store.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrAccountNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(account.PasswordHash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	if account.MFAEnabled {
		if strings.TrimSpace(mfaCode) == "" {
			return LoginResult{}, ErrMFARequired
		}
		secret, err := s.Sealer.OpenString(account.MFASecretEnc)
		if err != nil || secret == "" {
			return LoginResult{}, ErrMFAInvalid
		}
		if !totp.Validate(mfaCode, secret) {
			return LoginResult{}, ErrMFAInvalid
		}
	}

	token, expires, err := s.Tokens.Issue(account)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{
		Token:     token,
		ExpiresAt: expires,
		AccountID: account.ID,
		Email:     account.Email,
		Role:      account.Role,
	}, nil
}

// SetupMFA generates a fresh TOTP secret for the account. MFA stays
// disabled until EnableMFA confirms a code.
func (s *Service) SetupMFA(ctx context.Context, accountID string) (MFASetup, error) {
	if !s.Sealer.Configured() {
		return MFASetup{}, ErrMFAUnavailable
	}
	account, err := s.Store.GetByID(ctx, accountID)
	if err != nil {
		return MFASetup{}, err
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: account.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetup{}, fmt.Errorf("generate mfa secret: %w", err)
	}
	sealed, err := s.Sealer.SealString(key.Secret())
	if err != nil {
		return MFASetup{}, fmt.Errorf("seal mfa secret: %w", err)
	}
	if err := s.Store.UpdateMFASecret(ctx, accountID, sealed); err != nil {
		return MFASetup{}, err
	}
	return MFASetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *Service) EnableMFA(ctx context.Context, accountID, code string) error {
	if err := s.verifyCode(ctx, accountID, code); err != nil {
		return err
	}
	return s.Store.SetMFAEnabled(ctx, accountID, true)
}

func (s *Service) DisableMFA(ctx context.Context, accountID, code string) error {
	if err := s.verifyCode(ctx, accountID, code); err != nil {
		return err
	}
	return s.Store.SetMFAEnabled(ctx, accountID, false)
}

func (s *Service) verifyCode(ctx context.Context, accountID, code string) error {
	if !s.Sealer.Configured() {
		return ErrMFAUnavailable
	}
	account, err := s.Store.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if len(account.MFASecretEnc) == 0 {
		return ErrMFANotSetUp
	}
	secret, err := s.Sealer.OpenString(account.MFASecretEnc)
	if err != nil {
		return ErrMFAInvalid
	}
	if !totp.Validate(code, secret) {
		return ErrMFAInvalid
	}
	return nil
}

package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, account Account) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO accounts (id, email, password_hash, role)
    VALUES ($1,$2,$3,$4)
  `, account.ID, account.Email, account.PasswordHash, account.Role)
	return mapWriteError(err)
}

func (s *Store) GetByID(ctx context.Context, id string) (Account, error) {
	return s.getOne(ctx, "id", id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (Account, error) {
	return s.getOne(ctx, "email", email)
}

func (s *Store) getOne(ctx context.Context, column, value string) (Account, error) {
	var out Account
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, password_hash, role, mfa_enabled, mfa_secret_enc, created_at, updated_at
    FROM accounts
    WHERE `+column+` = $1
  `, value).Scan(&out.ID, &out.Email, &out.PasswordHash, &out.Role, &out.MFAEnabled, &out.MFASecretEnc, &out.CreatedAt, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	return out, err
}

func (s *Store) UpdateProfile(ctx context.Context, id, email, role string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE accounts SET email = $1, role = $2, updated_at = now() WHERE id = $3
  `, email, role, id)
	if err != nil {
		return mapWriteError(err)
	}
	return requireRow(tag)
}

func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE accounts SET password_hash = $1, updated_at = now() WHERE id = $2", hash, id)
	if err != nil {
		return err
	}
	return requireRow(tag)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(tag)
}

func (s *Store) UpdateMFASecret(ctx context.Context, id string, secretEnc []byte) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE accounts SET mfa_secret_enc = $1, mfa_enabled = false, updated_at = now() WHERE id = $2
  `, secretEnc, id)
	if err != nil {
		return err
	}
	return requireRow(tag)
}

func (s *Store) SetMFAEnabled(ctx context.Context, id string, enabled bool) error {
	tag, err := s.DB.Exec(ctx, "UPDATE accounts SET mfa_enabled = $1, updated_at = now() WHERE id = $2", enabled, id)
	if err != nil {
		return err
	}
	return requireRow(tag)
}

func requireRow(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

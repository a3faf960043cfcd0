package identity

import "time"

type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	MFAEnabled   bool
	MFASecretEnc []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	AccountID string    `json:"accountId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

type MFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}

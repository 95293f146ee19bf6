package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
)

// ProviderRepository provides data access methods for the provider_config
// table. Market-data API tokens are fernet-encrypted before they touch the
// database and decrypted on read.
type ProviderRepository struct {
	db  *sql.DB
	key *fernet.Key
}

// NewProviderRepository creates a new ProviderRepository. The base64 fernet
// key comes from configuration; an empty key is accepted so deployments
// without a token-requiring provider still start, but Get/SetToken calls
// will fail.
func NewProviderRepository(db *sql.DB, fernetKey string) (*ProviderRepository, error) {
	repo := &ProviderRepository{db: db}

	if fernetKey != "" {
		key, err := fernet.DecodeKey(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode provider fernet key: %w", err)
		}
		repo.key = key
	}

	return repo, nil
}

// SetToken stores the provider's API token encrypted at rest, replacing any
// previous token for that provider.
func (r *ProviderRepository) SetToken(provider, token string) error {
	if r.key == nil {
		return fmt.Errorf("provider token storage requires PROVIDER_FERNET_KEY")
	}

	encrypted, err := fernet.EncryptAndSign([]byte(token), r.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt provider token: %w", err)
	}

	query := `
          INSERT INTO provider_config (id, provider, encrypted_token, updated_at)
          VALUES (?, ?, ?, ?)
          ON CONFLICT(provider) DO UPDATE SET
              encrypted_token = excluded.encrypted_token,
              updated_at = excluded.updated_at
      `
	if _, err := r.db.Exec(query, uuid.New().String(), provider, string(encrypted), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store provider config: %w", err)
	}
	return nil
}

// GetToken retrieves and decrypts the provider's API token. Tokens never
// expire by age here; the zero TTL disables fernet's timestamp check.
func (r *ProviderRepository) GetToken(provider string) (string, error) {
	if r.key == nil {
		return "", fmt.Errorf("provider token storage requires PROVIDER_FERNET_KEY")
	}

	var encrypted string
	err := r.db.QueryRow(`SELECT encrypted_token FROM provider_config WHERE provider = ?`, provider).Scan(&encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrProviderConfigNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query provider config: %w", err)
	}

	token := fernet.VerifyAndDecrypt([]byte(encrypted), 0, []*fernet.Key{r.key})
	if token == nil {
		return "", fmt.Errorf("failed to decrypt provider token: %w", apperrors.ErrDataInconsistency)
	}
	return string(token), nil
}

package credential

import (
	"context"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "checklist-sync"

// KeyAPIToken is the keyring entry holding the checklist API bearer token.
const KeyAPIToken = "api_token"

// KeyEmailPassword is the keyring entry holding the IMAP password.
const KeyEmailPassword = "email_password"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/checklist-sync/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("checklist-sync-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// TokenProvider resolves the API bearer token from the system keyring.
// It satisfies the api.TokenProvider contract.
type TokenProvider struct{}

// Token returns the stored bearer credential.
func (TokenProvider) Token(context.Context) (string, error) {
	return Get(KeyAPIToken)
}

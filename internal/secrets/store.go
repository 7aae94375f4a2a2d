// Package secrets stores the opencode server password. It uses the OS
// keychain when one is reachable and a 0600 file otherwise.
package secrets

import (
	"errors"
	"os"
)

// serviceName is the keychain service for every opencode-helix secret.
const serviceName = "opencode-helix"

// EnvPassword supplies the server password without touching the store.
const EnvPassword = "OPENCODE_SERVER_PASSWORD"

// EnvUsername overrides the basic-auth user name.
const EnvUsername = "OPENCODE_SERVER_USERNAME"

// SecretStore provides credential storage.
type SecretStore interface {
	// Get returns ErrNotFound if key is absent.
	Get(key string) (string, error)
	Set(key, value string) error
	// Delete is a no-op for absent keys.
	Delete(key string) error
}

// ErrNotFound is returned when a secret key does not exist.
var ErrNotFound = errors.New("secret not found")

// PasswordKey is the store key for the password of the server on host.
func PasswordKey(host string) string {
	if host == "" {
		host = "localhost"
	}
	return "server/" + host + "/password"
}

// New returns the keychain store when it answers a read, and a file store
// under dir otherwise. Only the read is attempted, nothing is written.
func New(dir string) SecretStore {
	ks := newKeychainStore()
	if _, err := ks.Get(PasswordKey("")); err != nil && !errors.Is(err, ErrNotFound) {
		return newFileStore(dir)
	}
	return ks
}

// Password resolves the password for host: the environment first, then
// store. No password is not an error.
func Password(store SecretStore, host string) (string, error) {
	if p := os.Getenv(EnvPassword); p != "" {
		return p, nil
	}
	if store == nil {
		return "", nil
	}
	p, err := store.Get(PasswordKey(host))
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return p, err
}

// Package keybackend provides the key pairs that sign and verify presigned
// URLs of the local object store.
package keybackend

import (
	"fmt"
	"sort"

	"github.com/sagarc03/snapvault"
)

// MapSecretStore retrieves keys from an in-memory map.
type MapSecretStore struct {
	keys map[string]string
}

// NewMapSecretStore creates a new map-based secret store with the given access key to secret key mapping.
func NewMapSecretStore(keys map[string]string) *MapSecretStore {
	return &MapSecretStore{keys: keys}
}

// Lookup retrieves the secret key for the given access key from the map.
// Unknown keys yield an error matching both ErrKeyNotFound and
// snapvault.ErrUnauthorized.
func (s *MapSecretStore) Lookup(accessKey string) (string, error) {
	secretKey, found := s.keys[accessKey]
	if !found {
		return "", fmt.Errorf("lookup %q: %w: %w", accessKey, ErrKeyNotFound, snapvault.ErrUnauthorized)
	}
	return secretKey, nil
}

// SigningPair returns the key pair used to presign URLs. An empty accessKey
// selects the only configured pair and fails when there are several.
func (s *MapSecretStore) SigningPair(accessKey string) (KeyPair, error) {
	if accessKey == "" {
		if len(s.keys) != 1 {
			names := make([]string, 0, len(s.keys))
			for k := range s.keys {
				names = append(names, k)
			}
			sort.Strings(names)
			return KeyPair{}, fmt.Errorf("signing pair: %w: %d keys configured %v, set signer", ErrNoSigningKey, len(s.keys), names)
		}
		for k, v := range s.keys {
			return KeyPair{AccessKey: k, SecretKey: v}, nil
		}
	}

	secretKey, err := s.Lookup(accessKey)
	if err != nil {
		return KeyPair{}, fmt.Errorf("signing pair: %w: %w", ErrNoSigningKey, err)
	}
	return KeyPair{AccessKey: accessKey, SecretKey: secretKey}, nil
}

var _ snapvault.SecretStore = (*MapSecretStore)(nil)

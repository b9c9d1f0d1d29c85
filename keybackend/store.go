package keybackend

import "fmt"

// KeysConfig lists the key pairs the local object store accepts and names the
// one that signs new URLs.
type KeysConfig struct {
	Inline []KeyPair `mapstructure:"inline"`
	File   string    `mapstructure:"file"`
	// Signer is the access key used to presign. It may be empty when exactly
	// one pair is configured.
	Signer string `mapstructure:"signer"`
}

// NewSecretStore merges the inline pairs with those read from cfg.File. File
// entries replace inline entries with the same access key. Incomplete inline
// entries are dropped.
func NewSecretStore(cfg KeysConfig) (*MapSecretStore, error) {
	keys := make(map[string]string, len(cfg.Inline))
	for _, p := range cfg.Inline {
		if p.AccessKey == "" || p.SecretKey == "" {
			continue
		}
		keys[p.AccessKey] = p.SecretKey
	}

	if cfg.File == "" {
		return NewMapSecretStore(keys), nil
	}

	fromFile, err := LoadKeysFromFile(cfg.File)
	if err != nil {
		return nil, err
	}
	for access, secret := range fromFile {
		keys[access] = secret
	}

	return NewMapSecretStore(keys), nil
}

// Load builds the store for cfg and resolves its signing pair.
func Load(cfg KeysConfig) (*MapSecretStore, KeyPair, error) {
	store, err := NewSecretStore(cfg)
	if err != nil {
		return nil, KeyPair{}, fmt.Errorf("load keys: %w", err)
	}

	pair, err := store.SigningPair(cfg.Signer)
	if err != nil {
		return nil, KeyPair{}, fmt.Errorf("load keys: %w", err)
	}

	return store, pair, nil
}

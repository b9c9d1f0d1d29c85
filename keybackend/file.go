package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyPair is one presigning credential of the local object store.
type KeyPair struct {
	AccessKey string `json:"access_key" yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" mapstructure:"secret_key"`
}

// LoadKeysFromFile reads a list of key pairs from path. Files ending in
// .yaml or .yml are decoded as YAML, anything else as JSON:
//
//	[
//	  {"access_key": "SNAPVAULTLOCAL", "secret_key": "local-secret"},
//	  {"access_key": "ROTATED", "secret_key": "rotated-secret"}
//	]
//
// Blank entries are ignored. An entry with only one half set, or an access key
// listed twice, fails the whole file.
func LoadKeysFromFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from server config
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var pairs []KeyPair
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &pairs)
	default:
		err = json.Unmarshal(data, &pairs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse keys file %s: %w", path, err)
	}

	keys := make(map[string]string, len(pairs))
	for i, p := range pairs {
		switch {
		case p.AccessKey == "" && p.SecretKey == "":
			continue
		case p.AccessKey == "" || p.SecretKey == "":
			return nil, fmt.Errorf("parse keys file %s: entry %d: access_key and secret_key are both required", path, i)
		}
		if _, dup := keys[p.AccessKey]; dup {
			return nil, fmt.Errorf("parse keys file %s: duplicate access key %q", path, p.AccessKey)
		}
		keys[p.AccessKey] = p.SecretKey
	}

	return keys, nil
}

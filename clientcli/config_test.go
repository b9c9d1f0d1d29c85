package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sagarc03/snapvault/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaults(t *testing.T) {
	t.Run("keeps values", func(t *testing.T) {
		cfg := &clientcli.Config{Server: "http://photos.example.com", UserHeader: "X-Remote-User"}
		got := cfg.WithDefaults()
		assert.Equal(t, "http://photos.example.com", got.Server)
		assert.Equal(t, "X-Remote-User", got.UserHeader)
	})

	t.Run("fills empty fields without mutating", func(t *testing.T) {
		cfg := &clientcli.Config{}
		got := cfg.WithDefaults()
		assert.Equal(t, clientcli.DefaultServer, got.Server)
		assert.Equal(t, clientcli.DefaultUserHeader, got.UserHeader)
		assert.Empty(t, cfg.Server)
	})
}

func TestConfig_ValidateIdentity(t *testing.T) {
	tests := []struct {
		name    string
		cfg     clientcli.Config
		wantErr error
	}{
		{name: "user id", cfg: clientcli.Config{UserID: "user-1"}},
		{name: "token", cfg: clientcli.Config{Token: "abc.def.ghi"}},
		{name: "both", cfg: clientcli.Config{UserID: "user-1", Token: "abc.def.ghi"}},
		{name: "neither", cfg: clientcli.Config{Server: "http://localhost:5708"}, wantErr: clientcli.ErrIdentityRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateIdentity()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigFile_Profiles(t *testing.T) {
	newFile := func() *clientcli.ConfigFile {
		return &clientcli.ConfigFile{Profiles: []clientcli.Profile{
			{Name: "local", Server: "http://localhost:5708", UserID: "alice"},
			{Name: "prod", Server: "https://photos.example.com", Token: "prod-token", Default: true},
		}}
	}

	t.Run("get default", func(t *testing.T) {
		p, err := newFile().GetProfile("")
		require.NoError(t, err)
		assert.Equal(t, "prod", p.Name)
	})

	t.Run("first profile when none is default", func(t *testing.T) {
		cf := newFile()
		cf.Profiles[1].Default = false
		p, err := cf.GetDefaultProfile()
		require.NoError(t, err)
		assert.Equal(t, "local", p.Name)
	})

	t.Run("get by name", func(t *testing.T) {
		p, err := newFile().GetProfile("local")
		require.NoError(t, err)
		assert.Equal(t, "alice", p.UserID)
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := newFile().GetProfile("staging")
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})

	t.Run("no profiles", func(t *testing.T) {
		_, err := (&clientcli.ConfigFile{}).GetProfile("")
		assert.ErrorIs(t, err, clientcli.ErrNoProfiles)
	})

	t.Run("add duplicate", func(t *testing.T) {
		err := newFile().AddProfile(clientcli.Profile{Name: "local"})
		assert.ErrorIs(t, err, clientcli.ErrProfileExists)
	})

	t.Run("update", func(t *testing.T) {
		cf := newFile()
		require.NoError(t, cf.UpdateProfile(clientcli.Profile{Name: "local", Server: "http://127.0.0.1:5708", UserID: "bob"}))
		p, err := cf.GetProfile("local")
		require.NoError(t, err)
		assert.Equal(t, "bob", p.UserID)
	})

	t.Run("remove and set default", func(t *testing.T) {
		cf := newFile()
		require.NoError(t, cf.RemoveProfile("prod"))
		assert.Equal(t, []string{"local"}, cf.ProfileNames())

		require.NoError(t, cf.SetDefault("local"))
		assert.True(t, cf.Profiles[0].Default)
		assert.ErrorIs(t, cf.SetDefault("prod"), clientcli.ErrProfileNotFound)
	})
}

func TestConfigFile_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{
		{Name: "local", Server: "http://localhost:5708", UserID: "alice", Default: true},
	}}
	require.NoError(t, cf.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cf, loaded)
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("valid config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")

		content := `profiles:
  - name: local
    server: http://localhost:5708
    user_id: alice
  - name: prod
    server: https://photos.example.com
    token: secret-token
    default: true
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))

		cf, err := clientcli.LoadConfigFile(configPath)
		require.NoError(t, err)

		p, err := cf.GetProfile("")
		require.NoError(t, err)
		assert.Equal(t, &clientcli.Config{Server: "https://photos.example.com", Token: "secret-token"}, clientcli.ConfigFromProfile(p))
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := clientcli.LoadConfigFile("/nonexistent/path/config.yaml")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte(`profiles: [yaml: content`), 0o600))

		_, err := clientcli.LoadConfigFile(configPath)
		assert.Error(t, err)
	})
}

func TestMergeConfig(t *testing.T) {
	tests := []struct {
		name     string
		configs  []*clientcli.Config
		expected *clientcli.Config
	}{
		{
			name:     "empty configs",
			configs:  []*clientcli.Config{},
			expected: &clientcli.Config{},
		},
		{
			name: "single config",
			configs: []*clientcli.Config{
				{Server: "http://a.com", UserID: "alice", Token: "t1"},
			},
			expected: &clientcli.Config{Server: "http://a.com", UserID: "alice", Token: "t1"},
		},
		{
			name: "later config overrides",
			configs: []*clientcli.Config{
				{Server: "http://a.com", UserID: "alice", Token: "t1"},
				{Server: "http://b.com", UserID: "bob", UserHeader: "X-Remote-User"},
			},
			expected: &clientcli.Config{Server: "http://b.com", UserID: "bob", Token: "t1", UserHeader: "X-Remote-User"},
		},
		{
			name: "empty strings do not override",
			configs: []*clientcli.Config{
				{Server: "http://a.com", UserID: "alice"},
				{},
			},
			expected: &clientcli.Config{Server: "http://a.com", UserID: "alice"},
		},
		{
			name: "nil config is skipped",
			configs: []*clientcli.Config{
				{Server: "http://a.com"},
				nil,
				{Token: "t2"},
			},
			expected: &clientcli.Config{Server: "http://a.com", Token: "t2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clientcli.MergeConfig(tt.configs...))
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SNAPVAULT_SERVER", "http://test.example.com")
	t.Setenv("SNAPVAULT_USER_ID", "env-user")
	t.Setenv("SNAPVAULT_TOKEN", "env-token")
	t.Setenv("SNAPVAULT_USER_HEADER", "X-Remote-User")
	t.Setenv("SNAPVAULT_PROFILE", "prod")
	t.Setenv("SNAPVAULT_CONFIG", "/tmp/snapvault.yaml")

	cfg := clientcli.ConfigFromEnv()

	assert.Equal(t, "http://test.example.com", cfg.Server)
	assert.Equal(t, "env-user", cfg.UserID)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, "X-Remote-User", cfg.UserHeader)
	assert.Equal(t, "prod", clientcli.ProfileFromEnv())
	assert.Equal(t, "/tmp/snapvault.yaml", clientcli.ConfigPathFromEnv())
}

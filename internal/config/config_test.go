package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ezfintutor/tutormail/internal/security/secretbox"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", c.Server.Addr)
	require.Equal(t, "memory", c.Storage.Driver)
	require.Equal(t, "memory", c.Cache.Kind)
	require.Equal(t, 2*time.Minute, c.Cache.TTL)
	require.Equal(t, 587, c.SMTP.Port)
	require.Equal(t, "auto", c.SMTP.TLS)
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	p := writeYAML(t, `
storage:
  driver: fs
smtp:
  host: smtp.example.com
  from: no-reply@ezfintutor.com
cache:
  ttl: 30s
`)
	t.Setenv("SMTP_HOST", "smtp.override.com")
	t.Setenv("SMTP_PORT", "2525")

	c, err := Load(p)
	require.NoError(t, err)

	require.Equal(t, "fs", c.Storage.Driver)
	require.Equal(t, "data/email_templates.yaml", c.Storage.Path)
	require.Equal(t, "smtp.override.com", c.SMTP.Host)
	require.Equal(t, 2525, c.SMTP.Port)
	require.Equal(t, "no-reply@ezfintutor.com", c.SMTP.From)
	require.Equal(t, 30*time.Second, c.Cache.TTL)
}

func TestLoad_ValidateRejects(t *testing.T) {
	cases := map[string]string{
		"redis_without_addr": "cache:\n  kind: redis\n",
		"unknown_cache":      "cache:\n  kind: memcached\n",
		"bad_tls":            "smtp:\n  tls: maybe\n",
		"enforce_no_creds":   "admin:\n  enforce: true\n",
		"enc_without_key":    "smtp:\n  password_enc: abc|def\n",
		"memory_cache_sql":   "storage:\n  driver: postgres\n  dsn: postgres://x\ncache:\n  kind: memory\n",
		"memory_cache_fs":    "storage:\n  driver: fs\ncache:\n  kind: memory\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeYAML(t, body))
			require.Error(t, err)
		})
	}
}

func TestSMTPPassword_DecryptsPasswordEnc(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	enc, err := secretbox.EncryptWithKey(key, "s3cret")
	require.NoError(t, err)

	c := Default()
	c.Security.SecretBoxMasterKey = key
	c.SMTP.PasswordEnc = enc

	pw, err := c.SMTPPassword()
	require.NoError(t, err)
	require.Equal(t, "s3cret", pw)

	c.SMTP.PasswordEnc = ""
	c.SMTP.Password = "plain"
	pw, err = c.SMTPPassword()
	require.NoError(t, err)
	require.Equal(t, "plain", pw)
}

func TestLoad_CacheKindFollowsStorage(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"memory store", "", "memory"},
		{"fs with watch", "storage:\n  driver: fs\n  watch: true\n", "memory"},
		{"fs without watch", "storage:\n  driver: fs\n", "none"},
		{"postgres", "storage:\n  driver: postgres\n  dsn: postgres://x\n", "none"},
		{"explicit redis", "storage:\n  driver: mysql\ncache:\n  kind: redis\n  redis:\n    addr: localhost:6379\n", "redis"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := ""
			if tc.yaml != "" {
				path = writeYAML(t, tc.yaml)
			}
			c, err := Load(path)
			require.NoError(t, err)
			require.Equal(t, tc.want, c.Cache.Kind)
		})
	}
}

func TestLoad_EnvDriverGetsDriverDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "fs")

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "data/email_templates.yaml", c.Storage.Path)
	require.Equal(t, "none", c.Cache.Kind)
}

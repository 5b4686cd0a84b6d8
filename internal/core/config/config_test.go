package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3000, c.App.HTTP.Port)
	assert.Equal(t, "mysql", c.DB.Driver)
	assert.Equal(t, 5, c.DB.QueryTimeoutSec)
	assert.Equal(t, "cloudinary", c.Media.Provider)
	assert.Equal(t, "usuarios", c.Media.Folder)
	assert.Equal(t, 30, c.Media.TimeoutSec)
}

func TestLoadLegacyEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "crud")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, c.App.HTTP.Port)
	assert.Equal(t, "db.internal", c.DB.Host)
	assert.Equal(t, "app", c.DB.Username)
	assert.Equal(t, "pw", c.DB.Password)
	assert.Equal(t, "crud", c.DB.Name)
	assert.Equal(t, "demo", c.Media.Cloudinary.CloudName)
	assert.Equal(t, "key", c.Media.Cloudinary.APIKey)
	assert.Equal(t, "secret", c.Media.Cloudinary.APISecret)
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  http:
    port: 9000
db:
  driver: postgres
  dsn: postgres://localhost/crud
media:
  provider: s3
  s3:
    bucket: fotos
    region: us-east-1
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("PORT", "")
	t.Setenv("APP_MEDIA_FOLDER", "perfiles")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, c.App.HTTP.Port)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "postgres://localhost/crud", c.DB.DSN)
	assert.Equal(t, "s3", c.Media.Provider)
	assert.Equal(t, "fotos", c.Media.S3.Bucket)
	assert.Equal(t, "perfiles", c.Media.Folder)
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	t.Setenv("PORT", "")
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3000, c.App.HTTP.Port)
}

func TestLoadTimeoutAndPoolEnvKeys(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "")
	t.Setenv("APP_DB_QUERYTIMEOUTSEC", "9")
	t.Setenv("APP_DB_MAXOPENCONNS", "7")
	t.Setenv("APP_APP_HTTP_REQUESTTIMEOUTSEC", "12")
	t.Setenv("APP_MEDIA_TIMEOUT_SEC", "4")
	t.Setenv("APP_REDIS_LIST_TTL_SEC", "15")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, c.DB.QueryTimeoutSec)
	assert.Equal(t, 7, c.DB.MaxOpenConns)
	assert.Equal(t, 12, c.App.HTTP.RequestTimeoutSec)
	assert.Equal(t, 4, c.Media.TimeoutSec)
	assert.Equal(t, 15, c.Redis.ListTTLSec)
}

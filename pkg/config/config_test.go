package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: dept-test\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dept-test", cfg.App.Name)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 8082, cfg.Server.HTTP.Port)
	assert.Equal(t, "/api", cfg.Server.HTTP.Prefix)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 300, cfg.Cache.TTL)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadResolvesEnvPlaceholders(t *testing.T) {
	t.Setenv("DEPT_TEST_DB_PASSWORD", "s3cret")
	path := writeConfig(t, `
database:
  driver: mysql
  host: db.local
  port: 3306
  database: org
  username: root
  password: ${DEPT_TEST_DB_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "root:s3cret@tcp(db.local:3306)/org?charset=utf8mb4&parseTime=True&loc=Local", cfg.Database.DSN())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "postgres",
			cfg:  DatabaseConfig{Driver: "postgres", Host: "pg", Port: 5432, Username: "u", Password: "p", Database: "d"},
			want: "host=pg port=5432 user=u password=p dbname=d sslmode=disable",
		},
		{
			name: "sqlite memory",
			cfg:  DatabaseConfig{Driver: "sqlite"},
			want: ":memory:",
		},
		{
			name: "sqlite file",
			cfg:  DatabaseConfig{Driver: "sqlite", Database: "data/dept.db"},
			want: "data/dept.db",
		},
		{
			name: "unknown",
			cfg:  DatabaseConfig{Driver: "oracle"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

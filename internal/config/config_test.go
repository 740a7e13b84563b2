// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuizHub Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quizhub/pkg/errutil"
)

func secrets() map[string]string {
	return map[string]string{
		"BCRYPT_SALT": "abcdefghijklmnopqrstuu",
		"JWT_SECRET":  "signing-key",
	}
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.String("config", "", "config file path")
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quizhub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(Source{Flags: newFlags(t), Environ: secrets()})
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, DefaultMetricsAddr, cfg.MetricsAddr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.HonorLoginLocale)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.CookieSecure)
	assert.Empty(t, cfg.QuestionsPath)
	assert.Equal(t, "signing-key", cfg.Env.JWTSecret)
}

func TestLoad_WithoutFlags(t *testing.T) {
	cfg, err := Load(Source{Environ: secrets()})
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.True(t, cfg.HonorLoginLocale)
}

func TestLoad_FileOverridesFlagDefaults(t *testing.T) {
	path := writeFile(t, `
http_addr: ":9000"
honor_login_locale: false
log_format: text
bcrypt_cost: 10
`)

	cfg, err := Load(Source{File: path, Flags: newFlags(t), Environ: secrets()})
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.False(t, cfg.HonorLoginLocale, "unchanged flag default must not win over the file")
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoad_ExplicitFlagsOverrideFile(t *testing.T) {
	path := writeFile(t, `
http_addr: ":9000"
honor_login_locale: false
`)

	fs := newFlags(t, "--http-addr", ":7000", "--honor-login-locale=true", "--cookie-secure")
	cfg, err := Load(Source{File: path, Flags: fs, Environ: secrets()})
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.True(t, cfg.HonorLoginLocale)
	assert.True(t, cfg.CookieSecure)
}

func TestLoad_QuestionsPathFallsBackToEnv(t *testing.T) {
	environ := secrets()
	environ["QUESTIONS_PATH"] = "/srv/questions.yaml"

	cfg, err := Load(Source{Flags: newFlags(t), Environ: environ})
	require.NoError(t, err)
	assert.Equal(t, "/srv/questions.yaml", cfg.QuestionsPath)

	cfg, err = Load(Source{Flags: newFlags(t, "--questions", "local.yaml"), Environ: environ})
	require.NoError(t, err)
	assert.Equal(t, "local.yaml", cfg.QuestionsPath)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     func(t *testing.T) Source
		wantErr string
	}{
		{
			name: "missing file",
			src: func(t *testing.T) Source {
				return Source{File: filepath.Join(t.TempDir(), "absent.yaml"), Environ: secrets()}
			},
		},
		{
			name: "malformed yaml",
			src: func(t *testing.T) Source {
				return Source{File: writeFile(t, "http_addr: [unterminated"), Environ: secrets()}
			},
		},
		{
			name: "missing salt",
			src: func(t *testing.T) Source {
				return Source{Flags: newFlags(t), Environ: map[string]string{"JWT_SECRET": "k"}}
			},
			wantErr: "BCRYPT_SALT",
		},
		{
			name: "missing jwt secret",
			src: func(t *testing.T) Source {
				return Source{Flags: newFlags(t), Environ: map[string]string{"BCRYPT_SALT": "s"}}
			},
			wantErr: "JWT_SECRET",
		},
		{
			name: "bad log format",
			src: func(t *testing.T) Source {
				return Source{Flags: newFlags(t, "--log-format", "xml"), Environ: secrets()}
			},
			wantErr: "log-format",
		},
		{
			name: "bad log level",
			src: func(t *testing.T) Source {
				return Source{Flags: newFlags(t, "--log-level", "loud"), Environ: secrets()}
			},
		},
		{
			name: "bcrypt cost too high",
			src: func(t *testing.T) Source {
				return Source{Flags: newFlags(t, "--bcrypt-cost", "32"), Environ: secrets()}
			},
			wantErr: "bcrypt-cost",
		},
		{
			name: "negative hash bound",
			src: func(t *testing.T) Source {
				return Source{Flags: newFlags(t, "--max-concurrent-hashes", "-1"), Environ: secrets()}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.src(t))
			require.Error(t, err)
			assert.Nil(t, cfg)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestEnv_DSN(t *testing.T) {
	tests := []struct {
		name string
		env  Env
		want string
	}{
		{
			name: "database url wins",
			env:  Env{DatabaseURL: "postgres://a:b@db:6543/quiz", PostgresHost: "ignored"},
			want: "postgres://a:b@db:6543/quiz",
		},
		{
			name: "assembled from parts",
			env: Env{
				PostgresHost: "db", PostgresPort: "5432",
				PostgresUser: "quiz", PostgresPassword: "secret", PostgresDB: "app",
			},
			want: "postgres://quiz:secret@db:5432/app",
		},
		{
			name: "password is escaped",
			env: Env{
				PostgresHost: "db", PostgresPort: "5432",
				PostgresUser: "quiz", PostgresPassword: "p@ss/word", PostgresDB: "app",
			},
			want: "postgres://quiz:p%40ss%2Fword@db:5432/app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.env.DSN())
		})
	}
}

func TestLoad_EnvDefaults(t *testing.T) {
	cfg, err := Load(Source{Environ: secrets()})
	require.NoError(t, err)
	assert.Equal(t, "postgres://postgres:@localhost:5432/app", cfg.Env.DSN())
}

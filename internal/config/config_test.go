package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper isolates each test from the global viper state.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadTelegramFromViper(t *testing.T) {
	resetViper(t)
	viper.Set("telegram.token", "123:abc")
	viper.Set("telegram.authorized_users", []string{"1", "42"})
	viper.Set("telegram.poll_timeout", 10)

	cfg, err := LoadTelegram()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Token)
	assert.Equal(t, []int64{1, 42}, cfg.AuthorizedUsers)
	assert.Equal(t, 10, cfg.PollTimeout)
}

func TestLoadTelegramEnvFallback(t *testing.T) {
	resetViper(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "456:def")
	t.Setenv("AUTHORIZED_USERS", " 10, 20 ,30,")

	cfg, err := LoadTelegram()
	require.NoError(t, err)
	assert.Equal(t, "456:def", cfg.Token)
	assert.Equal(t, []int64{10, 20, 30}, cfg.AuthorizedUsers)
	assert.Equal(t, 30, cfg.PollTimeout, "poll timeout should default")
}

func TestLoadTelegramMissingToken(t *testing.T) {
	resetViper(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := LoadTelegram()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoadTelegramRejectsBadUserID(t *testing.T) {
	resetViper(t)
	viper.Set("telegram.token", "123:abc")
	viper.Set("telegram.authorized_users", []string{"1", "jose"})

	_, err := LoadTelegram()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jose")
}

func TestDatabasePath(t *testing.T) {
	t.Run("viper wins", func(t *testing.T) {
		resetViper(t)
		t.Setenv("DB_PATH", "/env/gastos.db")
		viper.Set("database.path", "/config/gastos.db")

		path, err := DatabasePath()
		require.NoError(t, err)
		assert.Equal(t, "/config/gastos.db", path)
	})

	t.Run("env fallback", func(t *testing.T) {
		resetViper(t)
		t.Setenv("DB_PATH", "/env/gastos.db")

		path, err := DatabasePath()
		require.NoError(t, err)
		assert.Equal(t, "/env/gastos.db", path)
	})

	t.Run("default under data dir", func(t *testing.T) {
		resetViper(t)
		t.Setenv("DB_PATH", "")

		path, err := DatabasePath()
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(path, filepath.Join("gastosbot", "gastosbot.db")), "got %s", path)
	})
}

func TestLoadBlob(t *testing.T) {
	t.Run("defaults to local", func(t *testing.T) {
		resetViper(t)

		cfg, err := LoadBlob()
		require.NoError(t, err)
		assert.Equal(t, "local", cfg.Backend)
		assert.True(t, strings.HasSuffix(cfg.Dir, filepath.Join("gastosbot", "photos")), "got %s", cfg.Dir)
	})

	t.Run("gcs needs a bucket", func(t *testing.T) {
		resetViper(t)
		viper.Set("blob.backend", "gcs")

		_, err := LoadBlob()
		require.Error(t, err)
	})

	t.Run("gcs with bucket", func(t *testing.T) {
		resetViper(t)
		viper.Set("blob.backend", "gcs")
		viper.Set("blob.bucket", "receipts")

		cfg, err := LoadBlob()
		require.NoError(t, err)
		assert.Equal(t, "receipts", cfg.Bucket)
	})

	t.Run("unknown backend", func(t *testing.T) {
		resetViper(t)
		viper.Set("blob.backend", "s3")

		_, err := LoadBlob()
		require.Error(t, err)
	})
}

func TestLoadRecurring(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DailyTrigger
		wantErr bool
	}{
		{name: "default", input: "", want: DailyTrigger{Hour: 8}},
		{name: "explicit", input: "21:30", want: DailyTrigger{Hour: 21, Minute: 30}},
		{name: "single digits", input: "9:5", want: DailyTrigger{Hour: 9, Minute: 5}},
		{name: "hour out of range", input: "25:00", wantErr: true},
		{name: "minute out of range", input: "08:61", wantErr: true},
		{name: "no colon", input: "0800", wantErr: true},
		{name: "garbage", input: "mediodía", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)
			if tt.input != "" {
				viper.Set("recurring.daily_at", tt.input)
			}

			got, err := LoadRecurring()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDailyTriggerCronSpec(t *testing.T) {
	assert.Equal(t, "0 8 * * *", DailyTrigger{Hour: 8}.CronSpec())
	assert.Equal(t, "30 21 * * *", DailyTrigger{Hour: 21, Minute: 30}.CronSpec())
}

func TestLoadLocation(t *testing.T) {
	t.Run("defaults to local", func(t *testing.T) {
		resetViper(t)

		loc, err := LoadLocation()
		require.NoError(t, err)
		assert.Equal(t, time.Local, loc)
	})

	t.Run("IANA name", func(t *testing.T) {
		resetViper(t)
		viper.Set("timezone", "America/Lima")

		loc, err := LoadLocation()
		require.NoError(t, err)
		assert.Equal(t, "America/Lima", loc.String())
	})

	t.Run("unknown zone", func(t *testing.T) {
		resetViper(t)
		viper.Set("timezone", "Marte/Olympus")

		_, err := LoadLocation()
		require.Error(t, err)
	})
}

func TestLoadSheetsConfigDisabled(t *testing.T) {
	resetViper(t)
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "")
	t.Setenv("GOOGLE_SHEETS_ID", "")

	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled())
}

func TestLoadSheetsConfigPrecedence(t *testing.T) {
	resetViper(t)
	t.Setenv("GOOGLE_SHEETS_ID", "env-sheet")
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/env/creds.json")
	viper.Set("sheets.spreadsheet_id", "viper-sheet")

	cfg, err := LoadSheetsConfig()
	require.NoError(t, err)
	assert.Equal(t, "viper-sheet", cfg.SpreadsheetID, "viper should win over the environment")
	assert.Equal(t, "/env/creds.json", cfg.ServiceAccountPath)
	assert.Equal(t, "Registro", cfg.WorksheetName)
}

func TestLoadSheetsConfigRequiresCredentials(t *testing.T) {
	resetViper(t)
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "")
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
	t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")
	viper.Set("sheets.spreadsheet_id", "some-sheet")

	_, err := LoadSheetsConfig()
	require.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("GASTOS_TEST_DIR", "/tmp/gastos")

	assert.Equal(t, "/tmp/gastos/db", ExpandPath("$GASTOS_TEST_DIR/db"))
	assert.NotContains(t, ExpandPath("~/gastos.db"), "~")
	assert.Equal(t, "", ExpandPath(""))
}

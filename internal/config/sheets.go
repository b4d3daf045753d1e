package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/jmorales/gastosbot/internal/sheets"
)

// LoadSheetsConfig loads the spreadsheet mirror configuration. Precedence:
// 1. Viper configuration (config file or GASTOS_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*, GOOGLE_CREDENTIALS_FILE)
// 3. Defaults
//
// A config without a spreadsheet ID disables the mirror; that is not an
// error.
func LoadSheetsConfig() (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		cfg.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		cfg.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		cfg.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		cfg.RefreshToken = v
	}
	if v := viper.GetString("sheets.token_file"); v != "" {
		cfg.TokenFile = ExpandPath(v)
	}
	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		cfg.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.worksheet"); v != "" {
		cfg.WorksheetName = v
	}

	if cfg.ServiceAccountPath == "" {
		for _, key := range []string{"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "GOOGLE_CREDENTIALS_FILE"} {
			if v := os.Getenv(key); v != "" {
				cfg.ServiceAccountPath = ExpandPath(v)
				break
			}
		}
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if cfg.RefreshToken == "" {
		cfg.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if cfg.SpreadsheetID == "" {
		for _, key := range []string{"GOOGLE_SHEETS_SPREADSHEET_ID", "GOOGLE_SHEETS_ID"} {
			if v := os.Getenv(key); v != "" {
				cfg.SpreadsheetID = v
				break
			}
		}
	}
	if v := os.Getenv("GOOGLE_SHEETS_WORKSHEET"); v != "" && cfg.WorksheetName == sheets.DefaultConfig().WorksheetName {
		cfg.WorksheetName = v
	}

	if cfg.TokenFile == "" {
		if dir, err := configDir(); err == nil {
			cfg.TokenFile = filepath.Join(dir, "sheets-token.json")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		config  Config
		wantErr bool
	}{
		{
			name:    "disabled mirror needs nothing",
			config:  Config{},
			wantErr: false,
		},
		{
			name: "enabled without auth",
			config: Config{
				SpreadsheetID: "sheet-id",
			},
			wantErr: true,
			errMsg:  "missing Google Sheets authentication",
		},
		{
			name: "partial oauth credentials",
			config: Config{
				SpreadsheetID: "sheet-id",
				ClientID:      "test-client",
				ClientSecret:  "", // Missing secret
				RefreshToken:  "test-token",
			},
			wantErr: true,
			errMsg:  "missing Google Sheets authentication",
		},
		{
			name: "service account",
			config: Config{
				SpreadsheetID:      "sheet-id",
				ServiceAccountPath: "/path/to/key.json",
			},
			wantErr: false,
		},
		{
			name: "token file with client credentials",
			config: Config{
				SpreadsheetID: "sheet-id",
				ClientID:      "test-client",
				ClientSecret:  "test-secret",
				TokenFile:     "/path/to/token.json",
			},
			wantErr: false,
		},
		{
			name: "both auth methods",
			config: Config{
				SpreadsheetID:      "sheet-id",
				ServiceAccountPath: "/path/to/key.json",
				ClientID:           "test-client",
				ClientSecret:       "test-secret",
				RefreshToken:       "test-token",
			},
			wantErr: true,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name: "negative retry delay",
			config: Config{
				SpreadsheetID:      "sheet-id",
				ServiceAccountPath: "/path/to/key.json",
				RetryAttempts:      3,
				RetryDelay:         -1 * time.Second,
			},
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

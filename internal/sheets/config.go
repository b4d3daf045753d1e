// Package sheets mirrors committed ledger rows to a Google Sheets worksheet.
package sheets

import (
	"fmt"
	"time"
)

// Config holds the configuration for the spreadsheet mirror.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetID      string
	WorksheetName      string
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		WorksheetName: "Registro",
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// Enabled reports whether a spreadsheet is configured. The mirror is an
// optional sink; an empty spreadsheet ID turns it off entirely.
func (c *Config) Enabled() bool {
	return c.SpreadsheetID != ""
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}

	// Check authentication
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasTokenFile := c.ClientID != "" && c.ClientSecret != "" && c.TokenFile != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasTokenFile && !hasServiceAccount {
		return fmt.Errorf("missing Google Sheets authentication: provide a service account path, a refresh token, or a saved token file")
	}

	if hasServiceAccount && (hasOAuth || hasTokenFile) {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}

	// Validate retry settings
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative")
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative")
	}

	return nil
}

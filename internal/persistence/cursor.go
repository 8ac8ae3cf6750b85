// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"encoding/base64"
	"fmt"
	"strings"

	"example.com/fitscribe/internal/domain"
)

// EncodeCursor serialises the cursor to a string token.
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(c.Date))
}

// DecodeCursor parses the encoded cursor token.
func DecodeCursor(token string) (*domain.Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	date := string(decoded)
	if err := domain.ValidateDate(date); err != nil {
		return nil, fmt.Errorf("invalid cursor format")
	}
	return &domain.Cursor{Date: date}, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/topic-explorer/internal/secrets"
)

func TestEncoderConfigAPIKeyPrecedence(t *testing.T) {
	prev := loadedSecrets
	t.Cleanup(func() {
		loadedSecrets = prev
		viper.Set("encoder.api_key", "")
	})
	loadedSecrets = map[string]string{secrets.EncoderAPIKey: "file-key"}

	viper.Set("encoder.api_key", "")
	assert.Equal(t, "file-key", encoderConfig().APIKey, "secrets file fills a blank setting")

	viper.Set("encoder.api_key", "env-key")
	assert.Equal(t, "env-key", encoderConfig().APIKey, "configured key wins over the secrets file")

	loadedSecrets = nil
	viper.Set("encoder.api_key", "")
	assert.Empty(t, encoderConfig().APIKey)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/topic-explorer/internal/secrets"
	"github.com/pdiddy/topic-explorer/pkg/types"
)

// bindFlag ties a config key to a flag so the flag, TOPIC_EXPLORER_<KEY>,
// and the config file all feed the same value. Flags win.
func bindFlag(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

func explorerConfig() types.ExplorerConfig {
	return types.ExplorerConfig{
		PrecomputeDir: viper.GetString("precompute_dir"),
		ManifestFile:  viper.GetString("manifest_file"),
		SidebarSize:   viper.GetInt("sidebar_size"),
	}.WithDefaults()
}

func labelingConfig() types.LabelingConfig {
	return types.LabelingConfig{
		NClusters: viper.GetInt("labeling.n_clusters"),
		Seed:      viper.GetInt64("labeling.seed"),
		Restarts:  viper.GetInt("labeling.restarts"),
		MaxIter:   viper.GetInt("labeling.max_iter"),
		Tolerance: viper.GetFloat64("labeling.tolerance"),
	}.WithDefaults()
}

func encoderConfig() types.EncoderConfig {
	return types.EncoderConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:    viper.GetDuration("encoder.timeout"),
			UserAgent:  viper.GetString("encoder.user_agent"),
			MaxRetries: viper.GetInt("encoder.max_retries"),
		},
		ID:        viper.GetString("encoder.id"),
		BaseURL:   viper.GetString("encoder.base_url"),
		APIKey:    secretDefault(secrets.EncoderAPIKey, viper.GetString("encoder.api_key")),
		BatchSize: viper.GetInt("encoder.batch_size"),
		CacheDir:  viper.GetString("encoder.cache_dir"),
	}.WithDefaults()
}

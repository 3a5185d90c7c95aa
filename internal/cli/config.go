package cli

import (
	"fmt"

	"github.com/spf13/viper"

	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/coach"
	"codeberg.org/snonux/accentcoach/internal/feedback"
	"codeberg.org/snonux/accentcoach/internal/scoring"
	"codeberg.org/snonux/accentcoach/internal/server"
)

// Config is the typed view of the viper configuration
type Config struct {
	Speechace scoring.Config
	Breaker   scoring.BreakerConfig
	Profiles  *feedback.Profiles
	Server    server.Config
	StorePath string
	Coach     coach.Config
	Audio     audio.Config
	LogLevel  string
	LogFormat string
}

// LoadConfig materializes the current viper state. Custom threshold
// profiles under "profiles" are validated here.
func LoadConfig() (*Config, error) {
	var custom map[string]feedback.Thresholds
	if err := viper.UnmarshalKey("profiles", &custom); err != nil {
		return nil, fmt.Errorf("invalid profiles section: %w", err)
	}
	profiles, err := feedback.NewProfiles(viper.GetString("feedback.profile"), custom)
	if err != nil {
		return nil, err
	}

	maxUploadMB := viper.GetInt64("server.max_upload_mb")
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("server.max_upload_mb must be positive, got %d", maxUploadMB)
	}

	return &Config{
		Speechace: scoring.Config{
			APIKey:  GetSpeechaceKey(),
			BaseURL: viper.GetString("speechace.url"),
			Dialect: viper.GetString("speechace.dialect"),
			UserID:  viper.GetString("speechace.user_id"),
		},
		Breaker: scoring.BreakerConfig{
			MaxFailures: viper.GetUint32("speechace.breaker_failures"),
			OpenTimeout: viper.GetDuration("speechace.breaker_timeout"),
		},
		Profiles: profiles,
		Server: server.Config{
			Addr:           viper.GetString("server.addr"),
			MaxUploadBytes: maxUploadMB << 20,
		},
		StorePath: viper.GetString("store.path"),
		Coach: coach.Config{
			Provider:  viper.GetString("coach.provider"),
			OpenAIKey: GetOpenAIKey(),
			GeminiKey: GetGeminiKey(),
			Model:     viper.GetString("coach.model"),
		},
		Audio: audio.Config{
			Provider:          viper.GetString("audio.provider"),
			OpenAIKey:         GetOpenAIKey(),
			OpenAIModel:       viper.GetString("audio.openai_model"),
			OpenAIVoice:       viper.GetString("audio.openai_voice"),
			OpenAISpeed:       viper.GetFloat64("audio.openai_speed"),
			OpenAIInstruction: viper.GetString("audio.openai_instruction"),
			ESpeakVoice:       viper.GetString("audio.espeak_voice"),
			ESpeakSpeed:       viper.GetInt("audio.espeak_speed"),
			CacheDir:          viper.GetString("audio.cache_dir"),
			EnableCache:       viper.GetBool("audio.cache"),
		},
		LogLevel:  viper.GetString("log.level"),
		LogFormat: viper.GetString("log.format"),
	}, nil
}

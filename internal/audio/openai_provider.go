package audio

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider interface for OpenAI TTS
type OpenAIProvider struct {
	client *openai.Client
	config *Config
	logger *slog.Logger
}

// NewOpenAIProvider creates a new OpenAI TTS provider
func NewOpenAIProvider(config *Config, logger *slog.Logger) (*OpenAIProvider, error) {
	return newOpenAIProvider(openai.DefaultConfig(config.OpenAIKey), config, logger)
}

// NewOpenAIProviderWithURL creates a provider talking to an OpenAI
// compatible endpoint at baseURL
func NewOpenAIProviderWithURL(baseURL string, config *Config, logger *slog.Logger) (*OpenAIProvider, error) {
	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	clientConfig.BaseURL = baseURL
	return newOpenAIProvider(clientConfig, config, logger)
}

func newOpenAIProvider(clientConfig openai.ClientConfig, config *Config, logger *slog.Logger) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultProviderConfig()
	cfg := *config
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = defaults.OpenAIModel
	}
	if cfg.OpenAIVoice == "" {
		cfg.OpenAIVoice = defaults.OpenAIVoice
	}
	if cfg.OpenAISpeed == 0 {
		cfg.OpenAISpeed = defaults.OpenAISpeed
	}

	// Create cache directory if caching is enabled
	if cfg.EnableCache && cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: &cfg,
		logger: logger.With("provider", "openai"),
	}, nil
}

// GenerateAudio generates audio using OpenAI TTS
func (p *OpenAIProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	spoken, err := SpokenText(text)
	if err != nil {
		return err
	}

	format := responseFormat(outputFile)

	// Check cache first
	cacheFile := p.cacheFilePath(spoken, format)
	if cacheFile != "" {
		if _, err := os.Stat(cacheFile); err == nil {
			p.logger.Debug("tts cache hit", slog.String("file", cacheFile))
			return copyFile(cacheFile, outputFile)
		}
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.config.OpenAIModel),
		Input:          spoken,
		Voice:          openai.SpeechVoice(p.config.OpenAIVoice),
		Speed:          p.config.OpenAISpeed,
		ResponseFormat: format,
	}
	if p.supportsInstructions() {
		req.Instructions = p.config.OpenAIInstruction
	}

	p.logger.Info("generating reference audio",
		slog.String("model", p.config.OpenAIModel),
		slog.String("voice", p.config.OpenAIVoice),
		slog.String("input", spoken),
	)

	response, err := p.client.CreateSpeech(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "does not have access to model") && p.supportsInstructions() {
			return fmt.Errorf("OpenAI TTS API error: %w\nNote: The %s model requires access. Try tts-1-hd instead", err, p.config.OpenAIModel)
		}
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	if err := ensureDir(outputFile); err != nil {
		return err
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, response)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		return fmt.Errorf("no audio data received from OpenAI")
	}

	if cacheFile != "" {
		if err := copyFile(outputFile, cacheFile); err != nil {
			p.logger.Warn("failed to cache reference audio", slog.String("error", err.Error()))
		}
	}

	return nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the OpenAI API is configured. It does not call the
// API, which would use credits.
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}

func (p *OpenAIProvider) supportsInstructions() bool {
	return p.config.OpenAIInstruction != "" &&
		(p.config.OpenAIModel == "gpt-4o-mini-tts" || p.config.OpenAIModel == "gpt-4o-mini-audio-preview")
}

func responseFormat(outputFile string) openai.SpeechResponseFormat {
	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".wav":
		return openai.SpeechResponseFormatWav
	case ".opus":
		return openai.SpeechResponseFormatOpus
	case ".aac":
		return openai.SpeechResponseFormatAac
	case ".flac":
		return openai.SpeechResponseFormatFlac
	default:
		return openai.SpeechResponseFormatMp3
	}
}

// cacheFilePath returns where audio for text is cached, or "" when caching
// is off. The key covers every setting that changes the rendered audio.
func (p *OpenAIProvider) cacheFilePath(text string, format openai.SpeechResponseFormat) string {
	if !p.config.EnableCache || p.config.CacheDir == "" {
		return ""
	}

	h := md5.New()
	h.Write([]byte(text))
	h.Write([]byte(p.config.OpenAIModel))
	h.Write([]byte(p.config.OpenAIVoice))
	h.Write([]byte(fmt.Sprintf("%.2f", p.config.OpenAISpeed)))
	if p.supportsInstructions() {
		h.Write([]byte(p.config.OpenAIInstruction))
	}
	hash := hex.EncodeToString(h.Sum(nil))

	// first 2 chars as subdirectory
	return filepath.Join(p.config.CacheDir, hash[:2], hash[2:]+"."+string(format))
}

// ClearCache removes all cached audio files
func (p *OpenAIProvider) ClearCache() error {
	if p.config.CacheDir == "" {
		return nil
	}
	return os.RemoveAll(p.config.CacheDir)
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	if err := ensureDir(dst); err != nil {
		return err
	}

	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()

	_, err = io.Copy(destination, source)
	return err
}

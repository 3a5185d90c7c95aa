package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ESpeakProvider implements Provider using the local espeak-ng engine. It
// writes WAV natively and converts to MP3 with ffmpeg when asked for one.
type ESpeakProvider struct {
	voice string
	speed int
}

// NewESpeakProvider creates a new espeak-ng provider
func NewESpeakProvider(config *Config) (Provider, error) {
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}

	voice, speed := config.ESpeakVoice, config.ESpeakSpeed
	if voice == "" {
		voice = "en-us"
	}
	return &ESpeakProvider{voice: voice, speed: clampSpeed(speed)}, nil
}

// GenerateAudio generates audio using espeak-ng
func (p *ESpeakProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	spoken, err := SpokenText(text)
	if err != nil {
		return err
	}

	if err := ensureDir(outputFile); err != nil {
		return err
	}

	if strings.EqualFold(filepath.Ext(outputFile), ".wav") {
		return p.synthesize(ctx, spoken, outputFile)
	}

	tempWAV := strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + "_temp.wav"
	defer os.Remove(tempWAV)

	if err := p.synthesize(ctx, spoken, tempWAV); err != nil {
		return err
	}
	return convertWAVToMP3(ctx, tempWAV, outputFile)
}

func (p *ESpeakProvider) synthesize(ctx context.Context, text, wavFile string) error {
	args := []string{
		"-v", p.voice,
		"-s", strconv.Itoa(p.speed),
		"-w", wavFile,
		text,
	}

	output, err := exec.CommandContext(ctx, "espeak-ng", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("espeak-ng failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// Name returns the provider name
func (p *ESpeakProvider) Name() string {
	return "espeak-ng"
}

// IsAvailable checks if espeak-ng is installed
func (p *ESpeakProvider) IsAvailable() error {
	return checkESpeakInstalled()
}

func clampSpeed(speed int) int {
	switch {
	case speed <= 0:
		return 140
	case speed < 80:
		return 80
	case speed > 450:
		return 450
	default:
		return speed
	}
}

// checkESpeakInstalled verifies that espeak-ng is available on the system
func checkESpeakInstalled() error {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}

// convertWAVToMP3 converts a WAV file to MP3 using ffmpeg
func convertWAVToMP3(ctx context.Context, wavFile, mp3File string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", wavFile, "-acodec", "mp3", "-y", mp3File)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

func ensureDir(outputFile string) error {
	dir := filepath.Dir(outputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return nil
}

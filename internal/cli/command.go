package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/accentcoach/internal"
	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/feedback"
)

// Runner executes the subcommands. Each method reads its inputs from the
// Flags passed to CreateRootCommand and from the loaded configuration.
type Runner interface {
	Evaluate(ctx context.Context) error
	Classify(ctx context.Context) error
	Serve(ctx context.Context) error
	ImportSet(ctx context.Context, file string) error
	ListSets(ctx context.Context) error
	ShowSet(ctx context.Context, name string) error
	Speak(ctx context.Context) error
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags, runner Runner) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "accentcoach",
		Short: "Pronunciation and word stress feedback",
		Long: `accentcoach scores a spoken English sentence and tells the learner which
words were mispronounced and where word stress went wrong.

Mark the words whose stress you are practicing with an apostrophe-like
indicator (’ ‘ or ') in the reference sentence:

Examples:
  accentcoach evaluate --audio take1.wav --text "I ‘like ‘apps"
  accentcoach evaluate --audio take2.wav --set week1 --index 3 --tips
  accentcoach classify --result take1.json --text "I ‘like ‘apps"
  accentcoach sets import week1.txt --name week1
  accentcoach serve --addr :8080`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newEvaluateCommand(flags, runner),
		newClassifyCommand(flags, runner),
		newServeCommand(flags, runner),
		newSetsCommand(flags, runner),
		newSpeakCommand(flags, runner),
	)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.accentcoach.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")

	_ = viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))
}

func newEvaluateCommand(flags *Flags, runner Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a recording and print feedback",
		Long: `Upload a recording of the reference sentence for scoring and print which
words need work. The reference comes from --text or from a stored practice set.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateReference(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Evaluate(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&flags.AudioFile, "audio", "a", "", "Recording to score (wav, mp3, ogg, webm, m4a, flac)")
	cmd.Flags().StringVarP(&flags.Text, "text", "t", "", "Annotated reference sentence")
	cmd.Flags().StringVar(&flags.SetName, "set", "", "Take the reference sentence from this practice set")
	cmd.Flags().IntVar(&flags.Index, "index", flags.Index, "Position of the sentence within --set (1-based)")
	cmd.Flags().StringVar(&flags.SaveResult, "save-result", "", "Write the raw scoring result to this file")
	addFeedbackFlags(cmd, flags)
	cmd.Flags().BoolVar(&flags.Tips, "tips", false, "Ask the configured coach for pronunciation tips")
	_ = cmd.MarkFlagRequired("audio")
	cmd.MarkFlagsMutuallyExclusive("text", "set")

	return cmd
}

func newClassifyCommand(flags *Flags, runner Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a saved scoring result without uploading audio",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateReference(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Classify(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&flags.ResultFile, "result", "r", "", "Scoring result JSON file")
	cmd.Flags().StringVarP(&flags.Text, "text", "t", "", "Annotated reference sentence")
	cmd.Flags().StringVar(&flags.SetName, "set", "", "Take the reference sentence from this practice set")
	cmd.Flags().IntVar(&flags.Index, "index", flags.Index, "Position of the sentence within --set (1-based)")
	addFeedbackFlags(cmd, flags)
	_ = cmd.MarkFlagRequired("result")
	cmd.MarkFlagsMutuallyExclusive("text", "set")

	return cmd
}

func addFeedbackFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVarP(&flags.Profile, "profile", "p", "", "Threshold profile (default from feedback.profile)")
	cmd.Flags().StringVarP(&flags.Format, "format", "f", flags.Format, "Output format: "+strings.Join(feedback.Formats, ", "))
}

func newServeCommand(flags *Flags, runner Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "Listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func newSetsCommand(flags *Flags, runner Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sets",
		Short: "Manage practice sets",
	}

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a practice set from a text file (one sentence per line)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.ImportSet(cmd.Context(), args[0])
		},
	}
	importCmd.Flags().StringVarP(&flags.ImportName, "name", "n", "", "Set name (default: file name without extension)")
	importCmd.Flags().StringVarP(&flags.Profile, "profile", "p", "", "Threshold profile used when practicing this set")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List practice sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.ListSets(cmd.Context())
		},
	}

	showCmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Show the sentences of a practice set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.ShowSet(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(importCmd, listCmd, showCmd)
	return cmd
}

func newSpeakCommand(flags *Flags, runner Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speak",
		Short: "Generate a model reading of a reference sentence",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return validateReference(flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runner.Speak(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&flags.Text, "text", "t", "", "Annotated reference sentence")
	cmd.Flags().StringVar(&flags.SetName, "set", "", "Take the reference sentence from this practice set")
	cmd.Flags().IntVar(&flags.Index, "index", flags.Index, "Position of the sentence within --set (1-based)")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "Output audio file (default: derived from the sentence)")
	cmd.Flags().StringVar(&flags.TTSProvider, "provider", flags.TTSProvider, "TTS provider: openai, espeak or auto")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	cmd.Flags().StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, coral, echo, fable, nova, onyx, sage, shimmer")
	cmd.Flags().Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0)")
	cmd.Flags().StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts model")
	cmd.MarkFlagsMutuallyExclusive("text", "set")

	bindFlagsToViper(cmd)
	return cmd
}

func bindFlagsToViper(cmd *cobra.Command) {
	_ = viper.BindPFlag("audio.provider", cmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("audio.openai_model", cmd.Flags().Lookup("openai-model"))
	_ = viper.BindPFlag("audio.openai_voice", cmd.Flags().Lookup("openai-voice"))
	_ = viper.BindPFlag("audio.openai_speed", cmd.Flags().Lookup("openai-speed"))
	_ = viper.BindPFlag("audio.openai_instruction", cmd.Flags().Lookup("openai-instruction"))
}

// validateReference checks that exactly one reference source was given
func validateReference(flags *Flags) error {
	if strings.TrimSpace(flags.Text) == "" && flags.SetName == "" {
		return fmt.Errorf("either --text or --set is required")
	}
	if flags.SetName != "" && flags.Index < 1 {
		return fmt.Errorf("--index must be at least 1, got %d", flags.Index)
	}
	return nil
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	setDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".accentcoach" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".accentcoach")
	}

	// Environment variables, e.g. ACCENTCOACH_SPEECHACE_KEY
	viper.SetEnvPrefix("ACCENTCOACH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	home, _ := os.UserHomeDir()

	viper.SetDefault("speechace.url", "https://api.speechace.co")
	viper.SetDefault("speechace.dialect", "en-us")
	viper.SetDefault("speechace.user_id", "accentcoach")
	viper.SetDefault("speechace.breaker_failures", 3)
	viper.SetDefault("speechace.breaker_timeout", "30s")
	viper.SetDefault("feedback.profile", "default")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.max_upload_mb", 10)
	viper.SetDefault("store.path", filepath.Join(home, ".local", "state", "accentcoach", "sets.db"))
	viper.SetDefault("coach.provider", "auto")
	viper.SetDefault("audio.provider", "auto")
	viper.SetDefault("audio.openai_instruction", audio.DefaultProviderConfig().OpenAIInstruction)
	viper.SetDefault("audio.espeak_voice", "en-us")
	viper.SetDefault("audio.espeak_speed", 140)
	viper.SetDefault("audio.cache", true)
	viper.SetDefault("audio.cache_dir", filepath.Join(home, ".cache", "accentcoach", "tts"))
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("coach.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("coach.gemini_key")
}

// GetSpeechaceKey retrieves the Speechace API key from environment or config
func GetSpeechaceKey() string {
	if key := os.Getenv("SPEECHACE_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("speechace.key")
}

package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// recordingRunner records which subcommand ran
type recordingRunner struct {
	called string
	arg    string
}

func (r *recordingRunner) Evaluate(ctx context.Context) error { r.called = "evaluate"; return nil }
func (r *recordingRunner) Classify(ctx context.Context) error { r.called = "classify"; return nil }
func (r *recordingRunner) Serve(ctx context.Context) error    { r.called = "serve"; return nil }
func (r *recordingRunner) ListSets(ctx context.Context) error { r.called = "sets list"; return nil }
func (r *recordingRunner) Speak(ctx context.Context) error    { r.called = "speak"; return nil }

func (r *recordingRunner) ImportSet(ctx context.Context, file string) error {
	r.called, r.arg = "sets import", file
	return nil
}

func (r *recordingRunner) ShowSet(ctx context.Context, name string) error {
	r.called, r.arg = "sets show", name
	return nil
}

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestCreateRootCommand(t *testing.T) {
	resetViper(t)

	cmd := CreateRootCommand(NewFlags(), &recordingRunner{})

	if cmd.Use != "accentcoach" {
		t.Errorf("Expected Use to be 'accentcoach', got %s", cmd.Use)
	}

	for _, name := range []string{"config", "log-level", "log-format"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag %s to exist", name)
		}
	}

	subcommands := map[string][]string{
		"evaluate": {"audio", "text", "set", "index", "profile", "format", "tips", "save-result"},
		"classify": {"result", "text", "set", "index", "profile", "format"},
		"serve":    {"addr"},
		"speak":    {"text", "set", "index", "output", "provider", "openai-model", "openai-voice"},
	}
	for name, flagNames := range subcommands {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("Expected subcommand %s", name)
			continue
		}
		for _, f := range flagNames {
			if lookupFlag(sub, f) == nil {
				t.Errorf("Expected flag --%s on %s", f, name)
			}
		}
	}
}

// lookupFlag finds a flag in the local or persistent flag set
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag
	}
	return cmd.PersistentFlags().Lookup(name)
}

func TestSetupFlags(t *testing.T) {
	resetViper(t)

	cmd := &cobra.Command{}
	flags := NewFlags()

	setupFlags(cmd, flags)

	defaults := map[string]string{
		"config":     "",
		"log-level":  "info",
		"log-format": "text",
	}
	for name, want := range defaults {
		flag := lookupFlag(cmd, name)
		if flag == nil {
			t.Errorf("%s flag not found", name)
			continue
		}
		if flag.DefValue != want {
			t.Errorf("Expected default %s to be %q, got %q", name, want, flag.DefValue)
		}
	}

	if err := cmd.PersistentFlags().Set("log-level", "debug"); err != nil {
		t.Fatalf("Failed to set log-level: %v", err)
	}
	if got := viper.GetString("log.level"); got != "debug" {
		t.Errorf("log.level = %q, want flag value debug", got)
	}
}

func TestBindFlagsToViper(t *testing.T) {
	resetViper(t)

	cmd := newSpeakCommand(NewFlags(), &recordingRunner{})
	if err := cmd.Flags().Set("openai-voice", "nova"); err != nil {
		t.Fatalf("Failed to set openai-voice: %v", err)
	}

	if got := viper.GetString("audio.openai_voice"); got != "nova" {
		t.Errorf("audio.openai_voice = %q, want nova", got)
	}
	if got := viper.GetString("audio.openai_model"); got != "gpt-4o-mini-tts" {
		t.Errorf("audio.openai_model = %q, want flag default", got)
	}
}

func TestValidateReference(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		set     string
		index   int
		wantErr bool
	}{
		{"text", "I ‘like ‘apps", "", 1, false},
		{"set", "", "week1", 3, false},
		{"blank text", "   ", "", 1, true},
		{"neither", "", "", 1, true},
		{"zero index", "", "week1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := NewFlags()
			flags.Text, flags.SetName, flags.Index = tt.text, tt.set, tt.index

			err := validateReference(flags)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateReference() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCommandDispatch(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCalled string
		wantArg    string
		wantErr    string
	}{
		{
			name:       "evaluate with text",
			args:       []string{"evaluate", "--audio", "take.wav", "--text", "I ‘like ‘apps"},
			wantCalled: "evaluate",
		},
		{
			name:       "evaluate with set",
			args:       []string{"evaluate", "--audio", "take.wav", "--set", "week1", "--index", "2"},
			wantCalled: "evaluate",
		},
		{
			name:    "evaluate without reference",
			args:    []string{"evaluate", "--audio", "take.wav"},
			wantErr: "either --text or --set is required",
		},
		{
			name:    "evaluate without audio",
			args:    []string{"evaluate", "--text", "hello"},
			wantErr: `required flag(s) "audio" not set`,
		},
		{
			name:    "text and set are exclusive",
			args:    []string{"evaluate", "--audio", "a.wav", "--text", "hi", "--set", "s"},
			wantErr: "none of the others can be",
		},
		{
			name:    "bad index",
			args:    []string{"evaluate", "--audio", "a.wav", "--set", "s", "--index", "0"},
			wantErr: "--index must be at least 1",
		},
		{
			name:       "classify",
			args:       []string{"classify", "--result", "r.json", "--text", "hello"},
			wantCalled: "classify",
		},
		{
			name:       "serve",
			args:       []string{"serve", "--addr", ":9999"},
			wantCalled: "serve",
		},
		{
			name:       "sets import",
			args:       []string{"sets", "import", "week1.txt", "--name", "week1"},
			wantCalled: "sets import",
			wantArg:    "week1.txt",
		},
		{
			name:       "sets list",
			args:       []string{"sets", "list"},
			wantCalled: "sets list",
		},
		{
			name:       "sets show",
			args:       []string{"sets", "show", "week1"},
			wantCalled: "sets show",
			wantArg:    "week1",
		},
		{
			name:       "speak",
			args:       []string{"speak", "--text", "We ‘finish it."},
			wantCalled: "speak",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			runner := &recordingRunner{}
			cmd := CreateRootCommand(NewFlags(), runner)
			cmd.SetArgs(tt.args)
			cmd.SetOut(&strings.Builder{})
			cmd.SetErr(&strings.Builder{})

			err := cmd.Execute()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Execute() error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute() unexpected error: %v", err)
			}
			if runner.called != tt.wantCalled {
				t.Errorf("called %q, want %q", runner.called, tt.wantCalled)
			}
			if runner.arg != tt.wantArg {
				t.Errorf("arg %q, want %q", runner.arg, tt.wantArg)
			}
		})
	}
}

func TestServeAddrBinding(t *testing.T) {
	resetViper(t)
	setDefaults()

	cmd := CreateRootCommand(NewFlags(), &recordingRunner{})
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:9000"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() unexpected error: %v", err)
	}

	if got := viper.GetString("server.addr"); got != "127.0.0.1:9000" {
		t.Errorf("server.addr = %q, want flag value", got)
	}
}

func TestInitConfig(t *testing.T) {
	resetViper(t)

	cfgPath := filepath.Join(t.TempDir(), "test-config.yaml")
	content := `speechace:
  key: from-file
  dialect: en-gb
feedback:
  profile: strict
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	t.Setenv("ACCENTCOACH_SERVER_ADDR", ":7070")
	InitConfig(cfgPath)

	if got := viper.GetString("speechace.dialect"); got != "en-gb" {
		t.Errorf("speechace.dialect = %q, want en-gb", got)
	}
	if got := viper.GetString("feedback.profile"); got != "strict" {
		t.Errorf("feedback.profile = %q, want strict", got)
	}
	if got := viper.GetString("server.addr"); got != ":7070" {
		t.Errorf("server.addr = %q, want env override :7070", got)
	}
	if got := viper.GetString("speechace.user_id"); got != "accentcoach" {
		t.Errorf("speechace.user_id default = %q", got)
	}
}

func TestGetKeys(t *testing.T) {
	tests := []struct {
		name      string
		envVar    string
		configKey string
		get       func() string
	}{
		{"openai", "OPENAI_API_KEY", "coach.openai_key", GetOpenAIKey},
		{"gemini", "GEMINI_API_KEY", "coach.gemini_key", GetGeminiKey},
		{"speechace", "SPEECHACE_API_KEY", "speechace.key", GetSpeechaceKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetViper(t)

			t.Setenv(tt.envVar, "")
			if got := tt.get(); got != "" {
				t.Errorf("expected empty key, got %q", got)
			}

			viper.Set(tt.configKey, "config-key")
			if got := tt.get(); got != "config-key" {
				t.Errorf("expected config key, got %q", got)
			}

			t.Setenv(tt.envVar, "env-key")
			if got := tt.get(); got != "env-key" {
				t.Errorf("expected env key to win, got %q", got)
			}
		})
	}
}

package processor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"codeberg.org/snonux/accentcoach/internal"
	"codeberg.org/snonux/accentcoach/internal/annotation"
	"codeberg.org/snonux/accentcoach/internal/audio"
	"codeberg.org/snonux/accentcoach/internal/cli"
	"codeberg.org/snonux/accentcoach/internal/coach"
	"codeberg.org/snonux/accentcoach/internal/feedback"
	"codeberg.org/snonux/accentcoach/internal/logging"
	"codeberg.org/snonux/accentcoach/internal/practice"
	"codeberg.org/snonux/accentcoach/internal/scoring"
	"codeberg.org/snonux/accentcoach/internal/server"
)

var _ cli.Runner = (*Processor)(nil)

// Processor implements the CLI commands
type Processor struct {
	flags  *cli.Flags
	out    io.Writer
	logOut io.Writer
}

// NewProcessor creates a processor printing to stdout and logging to stderr
func NewProcessor(flags *cli.Flags) *Processor {
	return &Processor{
		flags:  flags,
		out:    os.Stdout,
		logOut: os.Stderr,
	}
}

// setup loads the configuration and builds the logger for one command
func (p *Processor) setup() (*cli.Config, *slog.Logger, error) {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, p.logOut)
	return cfg, logger, nil
}

// Evaluate scores the recording against the reference sentence and prints
// the feedback.
func (p *Processor) Evaluate(ctx context.Context) error {
	cfg, logger, err := p.setup()
	if err != nil {
		return err
	}

	reference, profile, err := p.reference(ctx, cfg)
	if err != nil {
		return err
	}
	th, err := cfg.Profiles.Resolve(profile)
	if err != nil {
		return err
	}
	// Reject an unknown format before spending a scoring call
	if err := feedback.ValidateFormat(p.flags.Format); err != nil {
		return err
	}

	f, err := os.Open(p.flags.AudioFile)
	if err != nil {
		return fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat recording: %w", err)
	}
	name := filepath.Base(p.flags.AudioFile)
	contentType := audio.ContentTypeFor(name)
	if err := audio.ValidateUpload(name, contentType, info.Size(), cfg.Server.MaxUploadBytes); err != nil {
		return err
	}

	client, err := scoring.NewSpeechaceClient(&cfg.Speechace, logger)
	if err != nil {
		return err
	}

	logger.Debug("scoring recording", slog.String("file", name), slog.String("profile", profile))
	res, err := client.Score(ctx, scoring.Request{
		Text:        annotation.Strip(reference),
		Audio:       f,
		FileName:    name,
		ContentType: contentType,
	})
	if res != nil && p.flags.SaveResult != "" {
		if werr := os.WriteFile(p.flags.SaveResult, res.Document(), 0644); werr != nil {
			logger.Warn("failed to save result", slog.String("file", p.flags.SaveResult), slog.String("error", werr.Error()))
		}
	}
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	return p.printFeedback(ctx, cfg, logger, reference, res, th)
}

// Classify classifies a saved result document without calling Speechace
func (p *Processor) Classify(ctx context.Context) error {
	cfg, logger, err := p.setup()
	if err != nil {
		return err
	}

	reference, profile, err := p.reference(ctx, cfg)
	if err != nil {
		return err
	}
	th, err := cfg.Profiles.Resolve(profile)
	if err != nil {
		return err
	}

	f, err := os.Open(p.flags.ResultFile)
	if err != nil {
		return fmt.Errorf("failed to open result: %w", err)
	}
	defer f.Close()

	res, err := scoring.DecodeResult(f)
	if err != nil {
		return err
	}
	if err := res.Err(); err != nil {
		return err
	}

	return p.printFeedback(ctx, cfg, logger, reference, res, th)
}

func (p *Processor) printFeedback(ctx context.Context, cfg *cli.Config, logger *slog.Logger,
	reference string, res *scoring.Result, th feedback.Thresholds) error {
	for _, word := range annotation.Conflicts(reference) {
		logger.Warn("word is both stress-marked and unmarked, treating it as marked", slog.String("word", word))
	}

	set := annotation.Parse(reference)
	report := feedback.ClassifyResult(res, set, th)

	renderer, err := feedback.NewRenderer(p.flags.Format, res.Words(), set, th)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, renderer.Render(report))

	if !p.flags.Tips || report.IsEmpty() {
		return nil
	}

	c, err := coach.New(ctx, cfg.Coach, logger)
	if err != nil {
		logger.Warn("pronunciation tips are unavailable", slog.String("error", err.Error()))
		return nil
	}
	tips, err := c.Tips(ctx, report, reference)
	if err != nil {
		logger.Warn("pronunciation tips are unavailable", slog.String("coach", c.Name()), slog.String("error", err.Error()))
		return nil
	}
	if tips != "" {
		fmt.Fprintf(p.out, "\nTips:\n%s\n", tips)
	}
	return nil
}

// reference resolves the annotated sentence from --text or a practice set.
// The returned profile is --profile, else the set's profile, else "" for the
// configured default.
func (p *Processor) reference(ctx context.Context, cfg *cli.Config) (string, string, error) {
	if p.flags.SetName == "" {
		if strings.TrimSpace(p.flags.Text) == "" {
			return "", "", fmt.Errorf("reference text cannot be empty")
		}
		return p.flags.Text, p.flags.Profile, nil
	}

	store, closeStore, err := p.openStore(cfg)
	if err != nil {
		return "", "", err
	}
	defer closeStore()

	set, err := store.GetSet(ctx, p.flags.SetName)
	if err != nil {
		return "", "", err
	}
	sentence, err := store.Sentence(ctx, set.Name, p.flags.Index)
	if err != nil {
		return "", "", err
	}

	profile := p.flags.Profile
	if profile == "" {
		profile = set.Profile
	}
	return sentence.Text, profile, nil
}

// Serve runs the HTTP API until ctx is cancelled
func (p *Processor) Serve(ctx context.Context) error {
	cfg, logger, err := p.setup()
	if err != nil {
		return err
	}

	client, err := scoring.NewSpeechaceClient(&cfg.Speechace, logger)
	if err != nil {
		return err
	}
	scorer := scoring.NewBreaker(client, cfg.Breaker, logger)

	opts := []server.Option{server.WithVersion(internal.Version)}
	if c, err := coach.New(ctx, cfg.Coach, logger); err != nil {
		logger.Info("pronunciation tips disabled", slog.String("reason", err.Error()))
	} else {
		opts = append(opts, server.WithCoach(c))
	}

	return server.New(cfg.Server, scorer, cfg.Profiles, logger, opts...).Run(ctx)
}

// ImportSet loads a practice set file into the store. The set name defaults
// to the file name without extension.
func (p *Processor) ImportSet(ctx context.Context, file string) error {
	cfg, logger, err := p.setup()
	if err != nil {
		return err
	}

	name := p.flags.ImportName
	if name == "" {
		base := filepath.Base(file)
		name = internal.SanitizeFilename(strings.TrimSuffix(base, filepath.Ext(base)))
	}
	if name == "" {
		return fmt.Errorf("cannot derive a set name from %q, use --name", file)
	}
	if p.flags.Profile != "" {
		if _, err := cfg.Profiles.Resolve(p.flags.Profile); err != nil {
			return err
		}
	}

	sentences, err := practice.ReadSetFile(file)
	if err != nil {
		return err
	}
	for i, s := range sentences {
		for _, word := range annotation.Conflicts(s) {
			logger.Warn("word is both stress-marked and unmarked",
				slog.Int("line", i+1), slog.String("word", word))
		}
	}

	store, closeStore, err := p.openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := store.ImportSet(ctx, name, p.flags.Profile, sentences); err != nil {
		return err
	}

	fmt.Fprintf(p.out, "Imported %d sentences into set %q\n", len(sentences), name)
	return nil
}

// ListSets prints all practice sets
func (p *Processor) ListSets(ctx context.Context) error {
	cfg, _, err := p.setup()
	if err != nil {
		return err
	}

	store, closeStore, err := p.openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sets, err := store.ListSets(ctx)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		fmt.Fprintln(p.out, "No practice sets. Import one with: accentcoach sets import FILE")
		return nil
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSENTENCES\tPROFILE\tIMPORTED")
	for _, set := range sets {
		profile := set.Profile
		if profile == "" {
			profile = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", set.Name, set.Sentences, profile, set.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

// ShowSet prints the sentences of one practice set
func (p *Processor) ShowSet(ctx context.Context, name string) error {
	cfg, _, err := p.setup()
	if err != nil {
		return err
	}

	store, closeStore, err := p.openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	set, err := store.GetSet(ctx, name)
	if err != nil {
		return err
	}
	sentences, err := store.Sentences(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(p.out, "Set %q (%d sentences)\n", set.Name, set.Sentences)
	if set.Profile != "" {
		fmt.Fprintf(p.out, "Profile: %s\n", set.Profile)
	}
	for _, s := range sentences {
		fmt.Fprintf(p.out, "%3d  %s\n", s.Position, s.Text)
	}
	return nil
}

// Speak renders the reference sentence as audio
func (p *Processor) Speak(ctx context.Context) error {
	cfg, logger, err := p.setup()
	if err != nil {
		return err
	}

	reference, _, err := p.reference(ctx, cfg)
	if err != nil {
		return err
	}
	spoken, err := audio.SpokenText(reference)
	if err != nil {
		return err
	}

	output := p.flags.Output
	if output == "" {
		name := internal.SanitizeFilename(spoken)
		if len(name) > 60 {
			name = strings.TrimRight(name[:60], "_")
		}
		if name == "" {
			name = "reference"
		}
		output = name + ".mp3"
	}

	provider, err := audio.NewProvider(&cfg.Audio, logger)
	if err != nil {
		return err
	}
	if err := provider.GenerateAudio(ctx, reference, output); err != nil {
		return fmt.Errorf("failed to generate audio: %w", err)
	}

	fmt.Fprintf(p.out, "Saved reference audio to %s (%s)\n", output, provider.Name())
	return nil
}

// openStore opens the practice set database, creating its directory
func (p *Processor) openStore(cfg *cli.Config) (*practice.Store, func(), error) {
	if cfg.StorePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	db, err := practice.Open(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}
	return practice.NewStore(db), func() { db.Close() }, nil
}


// Package studiocmd holds the bodies of the asciistudio commands.
package studiocmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lehigh-university-libraries/asciistudio/internal/config"
	"github.com/lehigh-university-libraries/asciistudio/internal/images"
	"github.com/lehigh-university-libraries/asciistudio/internal/interpreter"
	"github.com/lehigh-university-libraries/asciistudio/internal/logging"
	"github.com/lehigh-university-libraries/asciistudio/internal/session"
)

// App carries the resolved configuration and logger between the root
// command's pre-run hook and the subcommands.
type App struct {
	Config *config.Config
	Log    *zap.Logger
}

// Init loads configuration from v and builds the logger.
func (a *App) Init(v *viper.Viper, cfgFile string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return err
	}
	a.Config, a.Log = cfg, log
	return nil
}

// Close flushes the logger.
func (a *App) Close() {
	if a.Log != nil {
		_ = a.Log.Sync()
	}
}

// NewRegistry builds an empty registry wired to a decoder that honours the
// configured resampling filter and remote fetch limits.
func (a *App) NewRegistry() (*session.Registry, error) {
	resampling, err := images.ParseResampling(a.Config.Render.Resample)
	if err != nil {
		return nil, err
	}

	fetcher := images.NewFetcher(a.Config.Fetch.Timeout, a.Config.Fetch.MaxBytes, a.Log)
	decoder := images.NewDecoder(
		images.WithFetcher(fetcher),
		images.WithResampling(resampling),
		images.WithLogger(a.Log),
	)

	return session.New(decoder,
		session.WithRamp(a.Config.GlyphRamp()),
		session.WithAutoResize(a.Config.Load.AutoResize),
		session.WithMaxDimension(a.Config.Limits.MaxDimension),
		session.WithLogger(a.Log),
	), nil
}

// RunStudio starts the interactive loop, restoring sessionPath first when set.
func (a *App) RunStudio(ctx context.Context, sessionPath string, in io.Reader, out io.Writer) error {
	registry, err := a.NewRegistry()
	if err != nil {
		return err
	}

	if sessionPath != "" {
		res, err := registry.Restore(ctx, sessionPath)
		if err != nil {
			return fmt.Errorf("failed to restore session %s: %w", sessionPath, err)
		}
		if res.MissingCurrent != "" {
			fmt.Fprintln(out, interpreter.MissingCurrentMessage)
		}
		a.Log.Info("Starting from saved session", zap.String("path", res.Path), zap.Int("members", registry.Len()))
	}

	return interpreter.New(registry, a.Config, out, a.Log).Run(ctx, in)
}

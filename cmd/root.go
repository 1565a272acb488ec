package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/asciistudio/internal/config"
	"github.com/lehigh-university-libraries/asciistudio/internal/studiocmd"
)

func NewRootCmd() *cobra.Command {
	var cfgFile string
	var sessionPath string

	v := config.New()
	app := &studiocmd.App{}

	cmd := &cobra.Command{
		Use:   "asciistudio",
		Short: "Interactive studio for turning images into ASCII art",
		Long: `ASCII Art Studio loads images, lets you resize them and adjust their
brightness and contrast, and renders them as text.

Run without a subcommand to start the interactive studio. Sessions can be saved
and restored, and single images can be rendered with 'asciistudio render'.

Settings can also come from a config file (--config) or ASCIISTUDIO_*
environment variables, e.g. ASCIISTUDIO_LOG_LEVEL=debug.`,
		Example: `  # Start the studio
  asciistudio

  # Start the studio from a saved session
  asciistudio --session s1.json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			return app.Init(v, cfgFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunStudio(cmd.Context(), sessionPath, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	cmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-encoding", "console", "Log encoding (console or json)")
	cmd.PersistentFlags().String("ramp", "", "Glyph ramp from darkest to lightest (default: the standard 70 level ramp)")
	cmd.PersistentFlags().String("resample", "cubic", "Resampling filter (nearest, box, linear, cubic, lanczos)")
	cmd.PersistentFlags().Bool("auto-resize", true, "Resize images to a width of 50 when they are loaded")

	cmd.Flags().StringVar(&sessionPath, "session", "", "Restore this saved session before the prompt appears")

	// Add subcommands
	cmd.AddCommand(studiocmd.NewRenderCmd(app))
	cmd.AddCommand(newSessionCmd(app))

	return cmd
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/asciistudio/internal/studiocmd"
)

func newSessionCmd(app *studiocmd.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Work with saved studio sessions",
		Long: `Tools for session files written by 'save session as <filename>'.

A session stores each image's file name, alias, target size, brightness and
contrast plus the current image. Pixel data is never stored.`,
	}

	cmd.AddCommand(studiocmd.NewInspectCmd(app))
	cmd.AddCommand(studiocmd.NewExportCmd(app))

	return cmd
}

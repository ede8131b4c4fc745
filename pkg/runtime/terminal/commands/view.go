package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/de-tools/soc-atlas/pkg/runtime/logging"
	"github.com/de-tools/soc-atlas/pkg/runtime/terminal/tui"
	"github.com/de-tools/soc-atlas/pkg/viewer"
	"github.com/spf13/cobra"
)

type ViewCmd struct {
	env    *Env
	source string
}

func NewViewCmd(env *Env) *cobra.Command {
	vc := &ViewCmd{env: env}
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the SOC reports in the terminal",
		RunE:  vc.run,
	}

	cmd.Flags().StringVar(&vc.source, "source", "", "URL, s3:// URI or path of the report document (default data.source)")

	return cmd
}

func (vc *ViewCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := vc.env.Config()
	if err != nil {
		return err
	}

	logFile, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, _ := vc.env.Context(cmd.Context(), cfg, logFile)

	src, err := vc.env.OpenSource(ctx, cfg, vc.source)
	if err != nil {
		return err
	}

	if err := tui.Run(ctx, viewer.New(src), tea.WithOutput(cmd.OutOrStdout())); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

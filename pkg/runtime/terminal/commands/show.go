package commands

import (
	"errors"
	"fmt"

	"github.com/de-tools/soc-atlas/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type ShowCmd struct {
	env    *Env
	source string
	index  int
}

func NewShowCmd(env *Env) *cobra.Command {
	sc := &ShowCmd{env: env}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print one SOC report with every section expanded",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.source, "source", "", "URL, s3:// URI or path of the report document (default data.source)")
	cmd.Flags().IntVar(&sc.index, "index", 0, "Zero-based position of the report")

	return cmd
}

func (sc *ShowCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := sc.env.Config()
	if err != nil {
		return err
	}
	ctx, _ := sc.env.Context(cmd.Context(), cfg, cmd.ErrOrStderr())

	src, err := sc.env.OpenSource(ctx, cfg, sc.source)
	if err != nil {
		return err
	}

	reports, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reports: %w", err)
	}
	if len(reports) == 0 {
		return errors.New("report document has no records")
	}
	if sc.index < 0 || sc.index >= len(reports) {
		return fmt.Errorf("index %d is out of range [0, %d]", sc.index, len(reports)-1)
	}

	return export.NewReporter(cmd.OutOrStdout()).Handle(reports[sc.index], sc.index+1, len(reports))
}

package commands

import (
	"github.com/de-tools/soc-atlas/pkg/handlers/reports"
	"github.com/de-tools/soc-atlas/pkg/server"
	"github.com/spf13/cobra"
)

type ServeCmd struct {
	env    *Env
	source string
}

func NewServeCmd(env *Env) *cobra.Command {
	sc := &ServeCmd{env: env}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the development web server for the SOC report viewer",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.source, "source", "", "URL, s3:// URI or path of the report document (default data.source)")

	return cmd
}

func (sc *ServeCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := sc.env.Config()
	if err != nil {
		return err
	}
	ctx, logger := sc.env.Context(cmd.Context(), cfg, cmd.OutOrStdout())

	src, err := sc.env.OpenSource(ctx, cfg, sc.source)
	if err != nil {
		return err
	}
	logger.Info().Str("source", src.Location).Msg("loading reports")

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Dataset: reports.LoadDataset(ctx, src),
		},
	})

	return webAPI.Start()
}

package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/soc-atlas/pkg/runtime/terminal/commands"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	env     *commands.Env
	rootCmd *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Env    *commands.Env
	Output io.Writer
	Args   []string
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Env == nil {
		opts.Env = commands.NewEnv()
	}

	cli := &CLI{env: opts.Env}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	if opts.Args != nil {
		cli.rootCmd.SetArgs(opts.Args)
	}
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "soc-atlas",
		Short:         "Browse, extract and publish SOC audit report data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&cli.env.ConfigPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&cli.env.Debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(commands.NewViewCmd(cli.env))
	cmd.AddCommand(commands.NewShowCmd(cli.env))
	cmd.AddCommand(commands.NewServeCmd(cli.env))
	cmd.AddCommand(commands.NewPublishCmd(cli.env))
	cmd.AddCommand(commands.NewExtractCmd(cli.env))
	cmd.AddCommand(commands.NewExportCmd(cli.env))

	return cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/de-tools/soc-atlas/pkg/runtime/terminal/commands"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	env := commands.NewEnv()

	rootCmd := commands.NewServeCmd(env)
	rootCmd.Use = "web"
	rootCmd.Short = "Start the web server for SOC Atlas"
	rootCmd.Flags().StringVarP(&env.ConfigPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.Flags().BoolVar(&env.Debug, "debug", false, "Enable debug logging")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

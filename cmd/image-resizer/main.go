package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "image-resizer: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "image-resizer",
		Short: "HTTP service that fetches, resizes and re-encodes remote images",
		Long: `image-resizer fetches images from an allowlist of hosts, resizes them to fit
a bounding box and serves them with client caching headers.

Environment variables:
  PORT              Listen port (default 8080)
  ENVIRONMENT       Deployment name used as the env metric tag (default development)
  WORKERS           Concurrent image operations (default: number of CPUs)
  ALLOWED_HOSTS     Comma separated hosts images may be fetched from (required)
  DEFAULT_QUALITY   Encode quality when a request sets none (default 85)
  CACHE_EXPIRATION  Client cache lifetime in hours (default 1)
  CACHE_JITTER      Random seconds added to the lifetime (default 0)
  STATSD_HOST       DogStatsD agent host:port (default: disabled)
  FETCH_TIMEOUT     Upstream fetch timeout, e.g. 10s (default: none)
  LOG_LEVEL         debug, info, warn or error (default info)
  LOG_FORMAT        json or text (default json)

A .env file in the working directory is loaded first when present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serve := newServeCmd()
	root.AddCommand(serve, newVersionCmd())

	// Running without a subcommand serves.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "image-resizer %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

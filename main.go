package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/beanbocchi/lakeprobe/config"
	"github.com/beanbocchi/lakeprobe/internal"
)

const usage = "Usage: lakeprobe <accountName> <accessToken> <localPathName> <localFileSize> <remotePathName>"

func loadConfig(c *cli.Context) error {
	if _, err := config.Load(c.String("config")); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	internal.SetupLogger()
	return nil
}

func probe(c *cli.Context) error {
	if c.NArg() != 5 {
		return cli.Exit(usage, 1)
	}
	args := c.Args().Slice()

	size, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil || size < 0 {
		return cli.Exit(fmt.Sprintf("invalid localFileSize %q: must be a non-negative integer", args[3]), 1)
	}

	if err := internal.Probe(c.Context, internal.ProbeParams{
		AccountName: args[0],
		AccessToken: args[1],
		LocalPath:   args[2],
		Size:        size,
		RemotePath:  args[4],
	}); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func listHistory(c *cli.Context) error {
	// An account literally named "history" lands here with the probe arguments
	if c.NArg() > 0 {
		return cli.Exit(usage, 1)
	}
	if err := internal.History(c.Context, os.Stdout, internal.HistoryParams{
		Page:  int32(c.Int("page")),
		Limit: int32(c.Int("limit")),
		JSON:  c.Bool("json"),
	}); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "lakeprobe",
		Usage:     "Upload a generated file to a data lake and delete it again",
		ArgsUsage: "<accountName> <accessToken> <localPathName> <localFileSize> <remotePathName>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"LAKEPROBE_CONFIG"},
			},
		},
		Before: loadConfig,
		Action: probe,
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "Show the most recent probe runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of runs per page",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page to show, starting at 1",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print runs as JSON",
					},
				},
				Action: listHistory,
			},
		},
	}
}

// loadDotEnv loads path when it exists. The logger is not configured yet, so
// warnings go through the default slog handler.
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env file", "path", path, "error", err)
	}
}

func main() {
	loadDotEnv(".env")

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

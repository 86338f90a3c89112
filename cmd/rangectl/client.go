package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/rangedex"
	"github.com/kailas-cloud/rangedex/internal/config"
	logpkg "github.com/kailas-cloud/rangedex/internal/logger"
)

// openClient builds a client from the command's flags. Replaced in tests.
var openClient = clientFromCmd

func clientFromCmd(cmd *cobra.Command) (*rangedex.Client, error) {
	env, _ := cmd.Flags().GetString("env")
	if env == "" {
		env = config.GetEnv()
	}
	cfgEnv, _ := cmd.Flags().GetString("config-env")
	if cfgEnv == "" {
		cfgEnv = env
	}

	cfg, err := config.Load(cfgEnv)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	opts := []rangedex.Option{
		rangedex.WithLogger(logger),
		rangedex.WithKeyPrefix(cfg.Storage.KeyPrefix),
	}
	switch cfg.Database.Driver {
	case config.DriverValkey:
		opts = append(opts, rangedex.WithValkey(cfg.Database.Addrs[0], cfg.Database.Password))
	case config.DriverRedis:
		opts = append(opts, rangedex.WithRedis(cfg.Database.Addrs[0], cfg.Database.Password))
	default:
		opts = append(opts, rangedex.WithMemory())
	}
	for name, idx := range cfg.Indexes {
		opts = append(opts, rangedex.WithIndex(name, idx.Mappings))
	}

	return rangedex.New(context.Background(), opts...) //nolint:wrapcheck // already prefixed
}

// withClient opens a client for the duration of fn.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *rangedex.Client) error) error {
	c, err := openClient(cmd)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(cmd.Context(), c)
}

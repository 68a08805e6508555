package main

import (
	"context"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/urfave/cli/v3"
)

// runConfig prints the effective configuration after every source has been
// applied. Loading and validation already ran in before, so reaching this
// point means the configuration is valid.
func (a *app) runConfig(ctx context.Context, cmd *cli.Command) error {
	cfg := *a.cfg
	if cfg.Ngrok.Authtoken != "" {
		cfg.Ngrok.Authtoken = "********"
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	fmt.Fprintf(a.out, "# resolved storage path: %s\n", a.cfg.ResolvedStoragePath())
	fmt.Fprint(a.out, string(data))
	return nil
}

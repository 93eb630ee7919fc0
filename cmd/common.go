package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tenantsync/internal/config"
	"github.com/tenantsync/internal/logging"
	"github.com/tenantsync/internal/migrate"
	"github.com/tenantsync/internal/platform"
)

// loadConfig loads and validates the configuration for a command.
func loadConfig(c *cli.Context) (*config.Config, error) {
	logging.Setup(c.Bool("verbose"))

	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClients builds the two unauthenticated tenant handles from config.
func newClients(cfg *config.Config) (source, target *platform.Client) {
	opts := []platform.Option{platform.WithRateLimit(cfg.Limits.RatePerSec)}
	source = platform.NewClient(cfg.Source.ResolveBaseURL(), cfg.Source.ClientID, cfg.Source.ClientSecret, opts...)
	target = platform.NewClient(cfg.Target.ResolveBaseURL(), cfg.Target.ClientID, cfg.Target.ClientSecret, opts...)
	return source, target
}

// newSession authenticates both tenants and verifies the read scopes every
// command needs. Write scopes are checked by the operations that write.
func newSession(ctx context.Context, cfg *config.Config) (*migrate.Session, error) {
	source, target := newClients(cfg)
	session, err := migrate.NewSession(ctx, source, target)
	if err != nil {
		return nil, err
	}
	if err := session.Source.RequireScopes(platform.ScopeProjectsRead); err != nil {
		return nil, fmt.Errorf("source tenant: %w", err)
	}
	if err := session.Target.RequireScopes(platform.ScopeProjectsRead); err != nil {
		return nil, fmt.Errorf("target tenant: %w", err)
	}
	return session, nil
}

// printOutcomes reports per-item results and the aggregate counts of a batch.
func printOutcomes(label string, outcomes []migrate.Outcome) {
	for _, o := range outcomes {
		line := fmt.Sprintf("  [%s] %s", o.Status, o.ID)
		if o.Name != "" {
			line += " (" + o.Name + ")"
		}
		if o.NewID != "" {
			line += " -> " + o.NewID
		}
		if o.Reason != "" {
			line += ": " + o.Reason
		}
		fmt.Println(line)
	}
	ok, skipped, failed := migrate.Counts(outcomes)
	fmt.Printf("%s: %d ok, %d skipped, %d failed\n", label, ok, skipped, failed)
}

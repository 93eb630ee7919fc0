package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tenantsync/internal/config"
	"github.com/tenantsync/internal/setup"
)

// WorkflowCommand returns the workflow command group, which talks to the
// Setup API: copying prompting settings between companies and rewriting the
// company-id tokens embedded in agent prompts.
func WorkflowCommand() *cli.Command {
	return &cli.Command{
		Name:  "workflow",
		Usage: "Copy prompting-agent workflows between tenants via the Setup API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "access-token",
				Usage: "Setup API access_token cookie `VALUE` (overrides setup.access_token)",
			},
		},
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the source company's prompting workflows",
				Action: runWorkflowList,
			},
			{
				Name:   "copy-settings",
				Usage:  "Copy prompting settings from the source company to the target company",
				Action: runWorkflowCopySettings,
			},
			{
				Name:   "copy-agents",
				Usage:  "Rewrite company-id tokens in target-company agent prompts and bump versions",
				Action: runWorkflowCopyAgents,
			},
			{
				Name:   "copy-workflows",
				Usage:  "Recreate the source company's enrichment workflows under the target company",
				Action: runWorkflowCopyWorkflows,
			},
		},
	}
}

// setupContext authenticates both tenants, resolves their company ids and
// builds the Setup-API client. The token is verified with a read against the
// source company's prompting settings before anything is written.
func setupContext(c *cli.Context, cfg *config.Config) (client *setup.Client, sourceCompanyID, targetCompanyID string, err error) {
	token := c.String("access-token")
	if token == "" {
		token = cfg.Setup.AccessToken
	}
	if token == "" {
		return nil, "", "", fmt.Errorf("a Setup API access token is required " +
			"(--access-token or setup.access_token); copy the access_token cookie from a browser session")
	}

	session, err := newSession(c.Context, cfg)
	if err != nil {
		return nil, "", "", err
	}
	sourceCompany, err := session.Source.Company(c.Context)
	if err != nil {
		return nil, "", "", fmt.Errorf("could not resolve source company: %w", err)
	}
	targetCompany, err := session.Target.Company(c.Context)
	if err != nil {
		return nil, "", "", fmt.Errorf("could not resolve target company: %w", err)
	}

	client = setup.NewClient(cfg.Setup.BaseURL, token)
	if _, err := client.GetPromptingSettings(c.Context, sourceCompany.ID); err != nil {
		return nil, "", "", fmt.Errorf("setup token verification failed: %w", err)
	}

	fmt.Printf("Source company: %s (%s)\n", sourceCompany.Name, sourceCompany.ID)
	fmt.Printf("Target company: %s (%s)\n", targetCompany.Name, targetCompany.ID)
	return client, sourceCompany.ID, targetCompany.ID, nil
}

func runWorkflowList(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	client, sourceCompanyID, _, err := setupContext(c, cfg)
	if err != nil {
		return err
	}

	settings, err := client.GetPromptingSettings(c.Context, sourceCompanyID)
	if err != nil {
		return err
	}
	for _, s := range settings {
		name := s.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%s  %s\n", s.ID, name)
	}
	fmt.Printf("%d workflows\n", len(settings))
	return nil
}

func runWorkflowCopySettings(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	client, sourceCompanyID, targetCompanyID, err := setupContext(c, cfg)
	if err != nil {
		return err
	}

	if _, err := client.CopyPromptingSettings(c.Context, sourceCompanyID, targetCompanyID); err != nil {
		return err
	}
	fmt.Println("Prompting settings copied to the target company.")
	return nil
}

func runWorkflowCopyWorkflows(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	client, sourceCompanyID, targetCompanyID, err := setupContext(c, cfg)
	if err != nil {
		return err
	}

	outcomes, err := client.CopyWorkflows(c.Context, sourceCompanyID, targetCompanyID)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		fmt.Printf("  %s (%s): %s\n", o.Workflow, o.ID, o.Status)
		if o.Status != "OK" {
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("Completed with %d failure(s) out of %d workflow(s).\n", failed, len(outcomes))
	} else {
		fmt.Printf("All %d workflow(s) copied.\n", len(outcomes))
	}
	return nil
}

func runWorkflowCopyAgents(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	client, sourceCompanyID, targetCompanyID, err := setupContext(c, cfg)
	if err != nil {
		return err
	}

	outcomes, err := client.CopyAgents(c.Context, sourceCompanyID, targetCompanyID)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		fmt.Printf("  %s (%s) -> version %s: %s\n", o.Agent, o.ID, o.Version, o.Status)
		if o.Status != "OK" {
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("Completed with %d failure(s) out of %d agent(s).\n", failed, len(outcomes))
	} else {
		fmt.Printf("All %d agent(s) updated successfully.\n", len(outcomes))
	}
	return nil
}

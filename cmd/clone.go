package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tenantsync/internal/config"
	"github.com/tenantsync/internal/migrate"
)

// CloneCommand returns the clone command: project cloning, routing-rule
// replication, or both in one run. A clone run can save its project ID map to
// a JSON file so routing replication can happen in a later invocation.
func CloneCommand() *cli.Command {
	modelFlag := &cli.StringFlag{
		Name:    "model-id",
		Aliases: []string{"m"},
		Usage:   "Extraction model `ID` from a template project in the target tenant",
	}
	prefixFlag := &cli.StringFlag{
		Name:  "prefix",
		Usage: "Optional prefix for cloned project names",
	}
	mapFlag := &cli.StringFlag{
		Name:  "id-map",
		Usage: "Path of the project ID map `FILE`",
		Value: "idmap.json",
	}

	return &cli.Command{
		Name:  "clone",
		Usage: "Clone projects and routing rules from the source tenant to the target tenant",
		Subcommands: []*cli.Command{
			{
				Name:      "projects",
				Usage:     "Clone the given source projects and save the ID map",
				ArgsUsage: "PROJECT_ID [PROJECT_ID...]",
				Flags:     []cli.Flag{modelFlag, prefixFlag, mapFlag},
				Action:    runCloneProjects,
			},
			{
				Name:   "routings",
				Usage:  "Replicate routing rules using a saved ID map",
				Flags:  []cli.Flag{mapFlag},
				Action: runCloneRoutings,
			},
			{
				Name:      "run",
				Usage:     "Clone projects and replicate routing rules in one pass",
				ArgsUsage: "PROJECT_ID [PROJECT_ID...]",
				Flags:     []cli.Flag{modelFlag, prefixFlag, mapFlag},
				Action:    runCloneAll,
			},
		},
	}
}

func cloneOptions(c *cli.Context, cfg *config.Config) (migrate.CloneOptions, error) {
	opts := migrate.CloneOptions{
		ModelID:    c.String("model-id"),
		NamePrefix: c.String("prefix"),
	}
	if opts.ModelID == "" {
		opts.ModelID = cfg.Clone.ModelID
	}
	if opts.NamePrefix == "" {
		opts.NamePrefix = cfg.Clone.NamePrefix
	}
	if opts.ModelID == "" {
		return opts, fmt.Errorf("an extraction model id is required (--model-id or clone.model_id); " +
			"take it from a template project in the target tenant, see 'tenantsync project model-id'")
	}
	return opts, nil
}

func runCloneProjects(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("at least one source project id is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	opts, err := cloneOptions(c, cfg)
	if err != nil {
		return err
	}

	session, err := newSession(c.Context, cfg)
	if err != nil {
		return err
	}

	idMap, outcomes, err := session.CloneProjects(c.Context, c.Args().Slice(), opts)
	if err != nil {
		return err
	}
	printOutcomes("Cloned projects", outcomes)

	mapPath := c.String("id-map")
	if err := migrate.SaveIDMap(mapPath, session.RunID, idMap); err != nil {
		return err
	}
	fmt.Printf("Project ID map written to %s (%d entries)\n", mapPath, len(idMap))
	return nil
}

func runCloneRoutings(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	idMap, err := migrate.LoadIDMap(c.String("id-map"))
	if err != nil {
		return err
	}

	session, err := newSession(c.Context, cfg)
	if err != nil {
		return err
	}

	ruleMap, outcomes, err := session.ReplicateRoutings(c.Context, idMap)
	if err != nil {
		return err
	}
	printOutcomes("Replicated routing rules", outcomes)
	fmt.Printf("Routing rule mapping: %d rules recreated\n", len(ruleMap))
	return nil
}

func runCloneAll(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("at least one source project id is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	opts, err := cloneOptions(c, cfg)
	if err != nil {
		return err
	}

	session, err := newSession(c.Context, cfg)
	if err != nil {
		return err
	}

	idMap, projectOutcomes, err := session.CloneProjects(c.Context, c.Args().Slice(), opts)
	if err != nil {
		return err
	}
	printOutcomes("Cloned projects", projectOutcomes)

	if len(idMap) == 0 {
		return fmt.Errorf("no projects were cloned; skipping routing replication")
	}
	if err := migrate.SaveIDMap(c.String("id-map"), session.RunID, idMap); err != nil {
		return err
	}

	ruleMap, ruleOutcomes, err := session.ReplicateRoutings(c.Context, idMap)
	if err != nil {
		return err
	}
	printOutcomes("Replicated routing rules", ruleOutcomes)
	fmt.Printf("Routing rule mapping: %d rules recreated\n", len(ruleMap))
	return nil
}

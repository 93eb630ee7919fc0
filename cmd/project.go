package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tenantsync/internal/migrate"
)

// ProjectCommand returns the project command group: model-id lookup and
// PATCH-based configuration/schema sync between existing projects.
func ProjectCommand() *cli.Command {
	sourceFlag := &cli.StringFlag{
		Name:     "source-project",
		Aliases:  []string{"s"},
		Usage:    "Source project `ID`",
		Required: true,
	}
	targetFlag := &cli.StringFlag{
		Name:     "target-project",
		Aliases:  []string{"t"},
		Usage:    "Target project `ID`",
		Required: true,
	}

	return &cli.Command{
		Name:  "project",
		Usage: "Inspect and update projects in the target tenant",
		Subcommands: []*cli.Command{
			{
				Name:      "model-id",
				Usage:     "Print the extraction model id of a target-tenant project",
				ArgsUsage: "PROJECT_ID",
				Action:    runProjectModelID,
			},
			{
				Name:  "list",
				Usage: "List projects of the source or target tenant",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "source",
						Usage: "List the source tenant instead of the target",
					},
				},
				Action: runProjectList,
			},
			{
				Name:  "update-config",
				Usage: "Set completion/duplicates/retention/isLive on a target project",
				Flags: []cli.Flag{
					targetFlag,
					&cli.StringFlag{Name: "completion", Usage: "manual or automatic", Value: "manual"},
					&cli.StringFlag{Name: "duplicates", Usage: "allow or fail", Value: "fail"},
					&cli.IntFlag{Name: "retention-days", Usage: "Retention period in days", Value: 180},
					&cli.BoolFlag{Name: "live", Usage: "Mark the project live"},
				},
				Action: runProjectUpdateConfig,
			},
			{
				Name:   "clone-config",
				Usage:  "Copy completion/duplicates/retention/isLive from a source project",
				Flags:  []cli.Flag{sourceFlag, targetFlag},
				Action: runProjectCloneConfig,
			},
			{
				Name:   "clone-schema",
				Usage:  "Copy the schema verbatim from a source project",
				Flags:  []cli.Flag{sourceFlag, targetFlag},
				Action: runProjectCloneSchema,
			},
		},
	}
}

func runProjectModelID(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one target project id is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	session, err := newSession(c.Context, cfg)
	if err != nil {
		return err
	}

	details, err := session.Target.GetProject(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	if details.ExtractionModelID == "" {
		return fmt.Errorf("project %s has no extraction model bound", details.ID)
	}
	fmt.Println(details.ExtractionModelID)
	return nil
}

func runProjectList(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	session, err := newSession(c.Context, cfg)
	if err != nil {
		return err
	}

	client := session.Target
	if c.Bool("source") {
		client = session.Source
	}
	projects, err := client.ListProjects(c.Context)
	if err != nil {
		return err
	}
	for _, p := range projects {
		fmt.Printf("%s  %s\n", p.ID, p.Name)
	}
	fmt.Printf("%d projects\n", len(projects))
	return nil
}

func runProjectUpdateConfig(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	session, err := newSession(c.Context, cfg)
	if err != nil {
		return err
	}

	projectCfg := migrate.ProjectConfig{
		Completion:    c.String("completion"),
		Duplicates:    c.String("duplicates"),
		RetentionDays: c.Int("retention-days"),
		IsLive:        c.Bool("live"),
	}
	updated, err := session.UpdateConfig(c.Context, c.String("target-project"), projectCfg)
	if err != nil {
		return err
	}
	fmt.Printf("Updated project %s (%s)\n", updated.ID, updated.Name)
	return nil
}

func runProjectCloneConfig(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	session, err := newSession(c.Context, cfg)
	if err != nil {
		return err
	}

	updated, err := session.CloneConfig(c.Context, c.String("source-project"), c.String("target-project"))
	if err != nil {
		return err
	}
	fmt.Printf("Configuration cloned onto project %s (%s)\n", updated.ID, updated.Name)
	return nil
}

func runProjectCloneSchema(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	session, err := newSession(c.Context, cfg)
	if err != nil {
		return err
	}

	updated, err := session.CloneSchema(c.Context, c.String("source-project"), c.String("target-project"))
	if err != nil {
		return err
	}
	fmt.Printf("Schema cloned onto project %s (%s)\n", updated.ID, updated.Name)
	return nil
}

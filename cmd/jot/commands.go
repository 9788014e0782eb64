package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/jot/internal"
	"github.com/starford/jot/internal/apperr"
	"github.com/starford/jot/internal/mcpserver"
	"github.com/starford/jot/internal/models"
	"github.com/starford/jot/internal/noteservice"
	"github.com/starford/jot/internal/ui"
	pkgconfig "github.com/starford/jot/pkg/config"
)

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "jot",
		Usage:   "Personal Markdown notes with a tag index",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "<config dir>/jot/config.yaml",
				Value:       internal.DefaultConfigPath(),
				Sources:     cli.EnvVars(internal.EnvConfig),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "create",
				Aliases:   []string{"c"},
				Usage:     "[c]reate a new note",
				ArgsUsage: "<path>",
				Flags:     []cli.Flag{tagsFlag("tags to add to the note")},
				Action:    withApp(createAction),
			},
			{
				Name:      "edit",
				Aliases:   []string{"e"},
				Usage:     "[e]dit a note; without a path, pick one",
				ArgsUsage: "[path]",
				Action:    withApp(editAction),
			},
			{
				Name:      "find",
				Aliases:   []string{"f"},
				Usage:     "[f]ind notes by path, by tags or all",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					tagsFlag("match notes with any of these tags"),
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "list every note"},
				},
				Action: withApp(findAction),
			},
			{
				Name:      "delete",
				Aliases:   []string{"d"},
				Usage:     "[d]elete a note",
				ArgsUsage: "<path>",
				Action:    withApp(deleteAction),
			},
			{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "[t]ag management",
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "add tags to a note",
						ArgsUsage: "<path> <tag,...>",
						Action:    withApp(tagAddAction),
					},
					{
						Name:      "remove",
						Aliases:   []string{"rm"},
						Usage:     "remove tags from a note",
						ArgsUsage: "<path> <tag,...>",
						Action:    withApp(tagRemoveAction),
					},
				},
			},
			{
				Name:      "rename",
				Aliases:   []string{"rn"},
				Usage:     "give a note a new title in the same directory",
				ArgsUsage: "<path> <title>",
				Action:    withApp(renameAction),
			},
			{
				Name:      "move",
				Aliases:   []string{"mv"},
				Usage:     "move a note to a new path",
				ArgsUsage: "<path> <destination>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rename", Aliases: []string{"r"}, Usage: "treat destination as a new title in place"},
				},
				Action: withApp(moveAction),
			},
			{
				Name:   "export",
				Usage:  "print every note's metadata as JSON",
				Action: withApp(exportAction),
			},
			{
				Name:    "rebuild",
				Aliases: []string{"r"},
				Usage:   "[r]ebuild the index from the notes directory",
				Action:  withApp(rebuildAction),
			},
			{
				Name:   "watch",
				Usage:  "keep the index in sync with outside edits until interrupted",
				Action: withApp(watchAction),
			},
			{
				Name:   "mcp",
				Usage:  "serve a read-only MCP server on stdio",
				Action: withApp(mcpAction),
			},
		},
	}
}

func tagsFlag(usage string) cli.Flag {
	return &cli.StringFlag{Name: "tags", Aliases: []string{"t"}, Usage: usage + " (comma-separated)"}
}

type appAction func(ctx context.Context, cmd *cli.Command, app *internal.App) error

// withApp loads the configuration, opens the app for the duration of one
// command and closes it afterwards.
func withApp(fn appAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) (err error) {
		cfg, err := loadConfig(cmd.Root().String("config"))
		if err != nil {
			return err
		}
		app, err := internal.Open(ctx, internal.WithConfig(cfg))
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, app.Close())
		}()
		return fn(ctx, cmd, app)
	}
}

// loadConfig layers defaults, the config file and the environment, then
// validates the result once.
func loadConfig(path string) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	err := pkgconfig.LoadOptional(path, cfg,
		func(c *internal.Config) error { return c.ApplyEnv(os.Getenv) },
		func(c *internal.Config) error { return c.Resolve() },
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// requireArgs returns the first n arguments or an input error naming usage.
func requireArgs(cmd *cli.Command, n int) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) < n {
		return nil, fmt.Errorf("usage: jot %s %s: %w", cmd.Name, cmd.ArgsUsage, apperr.ErrEmptyPath)
	}
	return args, nil
}

func createAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	n, err := app.Notes.Create(ctx, args[0], models.SplitTags(cmd.String("tags")))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, ui.Successf("created %s", ui.FilePath(n.RelativePath)))
	return nil
}

func editAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	if cmd.Args().Len() == 0 {
		_, err := app.Notes.EditPick(ctx)
		return err
	}
	_, err := app.Notes.Edit(ctx, cmd.Args().First())
	return err
}

func findAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	notes, err := app.Notes.Find(ctx, noteservice.FindQuery{
		Path: cmd.Args().First(),
		Tags: models.SplitTags(cmd.String("tags")),
		All:  cmd.Bool("all"),
	})
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return apperr.ErrNoMatchingNotes
	}
	out := cmd.Root().Writer
	fmt.Fprintln(out, ui.NotesTable(notes))
	fmt.Fprintln(out, ui.Hint(ui.Count(len(notes), "note", "notes")))
	return nil
}

func deleteAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	n, err := app.Notes.Delete(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, ui.Successf("deleted %s", ui.FilePath(n.RelativePath)))
	return nil
}

// tagArgs splits "<path> <tag,...> [tag,...]" into the path and its tags.
func tagArgs(cmd *cli.Command) (string, []string, error) {
	args, err := requireArgs(cmd, 2)
	if err != nil {
		return "", nil, err
	}
	return args[0], models.SplitTags(strings.Join(args[1:], ",")), nil
}

func tagAddAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	path, tags, err := tagArgs(cmd)
	if err != nil {
		return err
	}
	n, err := app.Notes.AddTags(ctx, path, tags)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, ui.Successf("%s tags: %s", ui.FilePath(n.RelativePath), strings.Join(n.Tags.Sorted(), ", ")))
	return nil
}

func tagRemoveAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	path, tags, err := tagArgs(cmd)
	if err != nil {
		return err
	}
	n, err := app.Notes.RemoveTags(ctx, path, tags)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, ui.Successf("%s tags: %s", ui.FilePath(n.RelativePath), strings.Join(n.Tags.Sorted(), ", ")))
	return nil
}

func renameAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	args, err := requireArgs(cmd, 2)
	if err != nil {
		return err
	}
	n, err := app.Notes.Rename(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, ui.Successf("renamed to %s", ui.FilePath(n.RelativePath)))
	return nil
}

func moveAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	args, err := requireArgs(cmd, 2)
	if err != nil {
		return err
	}
	var n models.Note
	if cmd.Bool("rename") {
		n, err = app.Notes.Rename(ctx, args[0], args[1])
	} else {
		n, err = app.Notes.Move(ctx, args[0], args[1])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, ui.Successf("moved to %s", ui.FilePath(n.RelativePath)))
	return nil
}

func exportAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	return app.Notes.Export(ctx, cmd.Root().Writer)
}

func rebuildAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	report, err := app.Notes.Rebuild(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, ui.Successf("index rebuilt: %d added, %d removed, %d unchanged",
		report.Added, report.Removed, report.Kept))
	return nil
}

func watchAction(ctx context.Context, cmd *cli.Command, app *internal.App) error {
	out := cmd.Root().Writer
	fmt.Fprintln(out, ui.Infof("watching %s (Ctrl-C to stop)", ui.FilePath(app.Store.Root())))
	return internal.RunUntilSignal(ctx, app.Logger, func(ctx context.Context) error {
		return app.Notes.Watch(ctx, func(kind, path string) {
			fmt.Fprintf(out, "%s %s\n", ui.Hint(fmt.Sprintf("%-7s", kind)), path)
		})
	})
}

func mcpAction(ctx context.Context, _ *cli.Command, app *internal.App) error {
	srv := mcpserver.New(app.Notes, version)
	return internal.RunUntilSignal(ctx, app.Logger, func(ctx context.Context) error {
		return srv.Serve(ctx, os.Stdin, os.Stdout)
	})
}

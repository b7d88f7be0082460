package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/datamanager/internal/config"
	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/memdoc"
	"github.com/standardbeagle/datamanager/internal/metrics"
	"github.com/standardbeagle/datamanager/internal/panel"
	"github.com/standardbeagle/datamanager/internal/security"
	"github.com/standardbeagle/datamanager/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "datamanager",
		Usage:                  "Catalog, cross-reference and prune VarSet variables and spreadsheet aliases",
		Version:                version.FullInfo(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: search --root and the home directory for " + config.FileName + ")",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory searched for " + config.FileName,
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "document",
				Aliases: []string{"d"},
				Usage:   "Document snapshot (.json or .toml), overrides document.path",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "Host API profile: full or legacy (overrides document.profile)",
			},
			&cli.StringFlag{
				Name:    "tab",
				Aliases: []string{"t"},
				Usage:   "varsets or aliases",
				Value:   string(panel.VarSets),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print JSON instead of text",
			},
			&cli.BoolFlag{
				Name:    "use-label",
				Aliases: []string{"l"},
				Usage:   "Show objects by label and match parent filters against labels",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Print debug output to stderr",
			},
			&cli.BoolFlag{
				Name:  "debug-log",
				Usage: "Write debug output to a file under the temp directory",
			},
		},
		Before: setupDebug,
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:    "parents",
				Aliases: []string{"p"},
				Usage:   "List VarSets or spreadsheets",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Substring or glob"},
					&cli.BoolFlag{Name: "exclude-derived", Aliases: []string{"x"}, Usage: "Hide copy-on-change clones"},
				},
				Action: parentsCommand,
			},
			{
				Name:      "children",
				Aliases:   []string{"ls"},
				Usage:     "List variables or aliases of parents",
				ArgsUsage: "PARENT...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Substring or glob on child names"},
					&cli.BoolFlag{Name: "only-unused", Aliases: []string{"u"}, Usage: "Only unreferenced children"},
				},
				Action: childrenCommand,
			},
			{
				Name:      "refs",
				Aliases:   []string{"expressions"},
				Usage:     "Show expressions referencing entries",
				ArgsUsage: "PARENT.CHILD...",
				Action:    refsCommand,
			},
			{
				Name:      "remove-unused",
				Aliases:   []string{"rm"},
				Usage:     "Remove entries nothing references and save the document",
				ArgsUsage: "PARENT.CHILD...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-save", Usage: "Do not write the document back"},
				},
				Action: removeUnusedCommand,
			},
			{
				Name:      "suggest",
				Usage:     "Suggest parent names similar to NAME",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "max", Aliases: []string{"m"}, Value: 5},
				},
				Action: suggestCommand,
			},
			{
				Name:      "tree",
				Usage:     "Show parents with their children and reference counts",
				ArgsUsage: "[PARENT...]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "text", Usage: "text, compact or json"},
					&cli.BoolFlag{Name: "only-unused", Aliases: []string{"u"}, Usage: "Only unreferenced children"},
					&cli.BoolFlag{Name: "exclude-derived", Aliases: []string{"x"}, Usage: "Hide copy-on-change clones"},
				},
				Action: treeCommand,
			},
			{
				Name:  "stats",
				Usage: "Summarize parents, children and references per tab",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "top", Value: metrics.DefaultTopN, Usage: "Most referenced children to list"},
				},
				Action: statsCommand,
			},
			{
				Name:   "watch",
				Usage:  "Print unused entries whenever the document file changes",
				Action: watchCommand,
			},
			{
				Name:  "serve",
				Usage: "Run the MCP server on stdio",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Reload the document when its file changes"},
				},
				Action: serveCommand,
			},
		},
	}
}

func setupDebug(c *cli.Context) error {
	if !c.Bool("debug") && !c.Bool("debug-log") {
		return nil
	}
	debug.EnableDebug = "true"
	if c.Bool("debug-log") {
		path, err := debug.InitDebugLogFile()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "debug log: %s\n", path)
		return nil
	}
	debug.SetDebugOutput(c.App.ErrWriter)
	return nil
}

// session is what every command works on.
type session struct {
	cfg     *config.Config
	docPath string
	app     *memdoc.App
	panel   *panel.Panel
	kind    panel.Kind
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"), c.String("root"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if doc := c.String("document"); doc != "" {
		abs, err := filepath.Abs(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve document path %q: %w", doc, err)
		}
		cfg.Document.Path = abs
	}
	if profile := c.String("profile"); profile != "" {
		cfg.Document.Profile = profile
		if err := config.ValidateConfig(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// openDocument loads a snapshot; a legacy config profile overrides the file's.
func openDocument(path string, profile string) (*memdoc.Document, error) {
	if err := security.NewSnapshotValidator(security.DefaultMaxSnapshotMB).ValidateFile(path); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc, err := memdoc.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if memdoc.Profile(profile) == memdoc.ProfileLegacy {
		if err := doc.SetProfile(memdoc.ProfileLegacy); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func openSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, err
	}
	if cfg.Document.Path == "" {
		return nil, fmt.Errorf("no document: pass --document or set document.path in %s", config.FileName)
	}
	kind, err := panel.ParseKind(c.String("tab"))
	if err != nil {
		return nil, err
	}
	doc, err := openDocument(cfg.Document.Path, cfg.Document.Profile)
	if err != nil {
		return nil, err
	}

	debug.Printf("document %s (%s profile, %d objects), tab %s, config %q\n",
		cfg.Document.Path, doc.Profile(), len(doc.ObjectNames()), kind, cfg.Source)

	app := memdoc.NewApp(doc)
	return &session{
		cfg:     cfg,
		docPath: cfg.Document.Path,
		app:     app,
		panel:   panel.New(app, cfg, panel.Options{Refresher: app}),
		kind:    kind,
	}, nil
}

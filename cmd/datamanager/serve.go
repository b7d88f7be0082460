package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/datamanager/internal/debug"
	"github.com/standardbeagle/datamanager/internal/mcp"
	"github.com/standardbeagle/datamanager/internal/memdoc"
	"github.com/standardbeagle/datamanager/internal/panel"
	"github.com/standardbeagle/datamanager/internal/tab"
	"github.com/standardbeagle/datamanager/internal/types"
	"github.com/standardbeagle/datamanager/internal/watch"
)

func serveCommand(c *cli.Context) error {
	// stdout belongs to the protocol from here on.
	debug.SetMCPMode(true)

	s, err := openSession(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcp.NewServer(s.app, s.cfg, s.docPath)
	g, ctx := errgroup.WithContext(ctx)

	if c.Bool("watch") || s.cfg.Watch.Enabled {
		profile := s.cfg.Document.Profile
		w, err := watch.New(s.docPath, s.cfg.Watch, func(doc *memdoc.Document) {
			if memdoc.Profile(profile) == memdoc.ProfileLegacy {
				_ = doc.SetProfile(memdoc.ProfileLegacy)
			}
			server.ReplaceDocument(doc)
		})
		if err != nil {
			return err
		}
		server.OnSaved(func() {
			if err := w.Remember(); err != nil {
				debug.LogWatch("remember after save failed: %v\n", err)
			}
		})
		g.Go(func() error { return w.Run(ctx) })
	}

	g.Go(func() error {
		err := server.Run(ctx)
		// The client hanging up ends the watcher too.
		stop()
		return err
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func watchCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printUnused := func() {
		fmt.Fprintf(c.App.Writer, "unused in %s:\n", s.docPath)
		for _, line := range unusedEntries(s.panel, s.kind) {
			fmt.Fprintf(c.App.Writer, "  %s\n", line)
		}
	}
	printUnused()

	w, err := watch.New(s.docPath, s.cfg.Watch, func(doc *memdoc.Document) {
		if memdoc.Profile(s.cfg.Document.Profile) == memdoc.ProfileLegacy {
			_ = doc.SetProfile(memdoc.ProfileLegacy)
		}
		s.app.SetDocument(doc)
		printUnused()
	})
	if err != nil {
		return err
	}
	w.OnError(func(err error) {
		fmt.Fprintln(c.App.ErrWriter, "watch:", err)
	})
	fmt.Fprintln(c.App.ErrWriter, "watching", w.Path(), "(Ctrl-C to stop)")
	return w.Run(ctx)
}

// unusedEntries lists every unreferenced child of every parent of kind.
func unusedEntries(p *panel.Panel, kind panel.Kind) []string {
	return types.RefTexts(p.GetFilteredChildItems(kind, tab.ChildQuery{
		Parents:    p.GetSortedParents(kind, false),
		OnlyUnused: true,
	}))
}

package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/bmgr/internal/command"
	"github.com/nikbrunner/bmgr/internal/culler"
	"github.com/nikbrunner/bmgr/internal/exporter"
	"github.com/nikbrunner/bmgr/internal/model"
	"github.com/nikbrunner/bmgr/internal/picker"
	"github.com/nikbrunner/bmgr/internal/router"
	"github.com/nikbrunner/bmgr/internal/search"
	"github.com/nikbrunner/bmgr/internal/tui"
)

var (
	configPath string
	route      string
	incognito  bool

	cullDelete      bool
	cullConcurrency int
	cullExclude     []string
)

var rootCmd = &cobra.Command{
	Use:   "bmgr",
	Short: "vim-style bookmark manager",
	Long: `bmgr - vim-style bookmark manager

Bookmarks are kept in a Chromium style tree with a bookmarks bar,
other bookmarks and mobile bookmarks.

Examples:
  bmgr                       Open the interactive TUI
  bmgr --route '?q=go'       Open the TUI on a search
  bmgr search go docs        Quick search, pick and open
  bmgr import bookmarks.html Import a Netscape bookmarks file
  bmgr export [path]         Export bookmarks to HTML
  bmgr cull --delete         Delete bookmarks whose pages are gone

Configuration lives in ~/.config/bmgr/config.yaml. Preference changes
are applied while the TUI runs.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runTUI,
}

var importCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Import bookmarks from a Netscape HTML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export bookmarks to a Netscape HTML file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search bookmarks and open the one you pick",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuickSearch,
}

var openCmd = &cobra.Command{
	Use:   "open <id>...",
	Short: "Open bookmarks by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runOpen,
}

var cullCmd = &cobra.Command{
	Use:   "cull",
	Short: "Find bookmarks whose URLs are dead",
	Args:  cobra.NoArgs,
	RunE:  runCull,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ~/.config/bmgr/config.yaml)")
	rootCmd.Flags().StringVar(&route, "route", "", "initial route, ?id=<folder> or ?q=<term>")
	openCmd.Flags().BoolVar(&incognito, "incognito", false, "open in an incognito window")
	cullCmd.Flags().BoolVar(&cullDelete, "delete", false, "delete dead bookmarks")
	cullCmd.Flags().IntVar(&cullConcurrency, "concurrency", 10, "parallel requests")
	cullCmd.Flags().StringSliceVar(&cullExclude, "exclude", nil, "domains where 404 means private (e.g. github.com)")

	rootCmd.AddCommand(importCmd, exportCmd, searchCmd, openCmd, cullCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runTUI runs the full interactive TUI.
func runTUI(cmd *cobra.Command, _ []string) error {
	bridge := tui.NewBridge()
	defer bridge.Close()

	e, err := openEnv(configPath, bridge)
	if err != nil {
		return err
	}
	defer e.Close()

	if route != "" && !router.Navigate(e.store, e.service, router.Parse(route)) {
		e.log.WithField("route", route).Warn("ignoring unknown route")
	}

	app := tui.NewApp(tui.AppParams{
		Store:        e.store,
		Searcher:     e.service,
		Commands:     e.commands,
		DnD:          e.drag,
		Bridge:       bridge,
		Local:        e.backend,
		Context:      cmd.Context(),
		Logger:       e.log,
		SidebarWidth: tui.LoadSidebarWidth(e.backend),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}

// runImport handles the import subcommand.
func runImport(cmd *cobra.Command, args []string) error {
	e, err := openEnv(configPath, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer file.Close()

	id, err := e.service.ImportHTML(file)
	if err != nil {
		return err
	}

	sub, err := e.service.GetSubTree(id)
	if err != nil {
		return err
	}
	folders, bookmarks := countNodes(sub)
	fmt.Printf("Imported %d bookmarks, %d folders into %q\n", bookmarks, folders-1, sub.Title)
	return nil
}

// runExport handles the export subcommand.
func runExport(cmd *cobra.Command, args []string) error {
	outputPath := ""
	if len(args) > 0 {
		outputPath = args[0]
	}
	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath()
		if err != nil {
			return fmt.Errorf("default export path: %w", err)
		}
	}

	e, err := openEnv(configPath, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	tree := e.service.GetTree()
	html := exporter.ExportHTML(model.NormalizeNodes(tree))
	if err := os.WriteFile(outputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	folders, bookmarks := countNodes(tree)
	// The root is not exported.
	fmt.Printf("Exported %d bookmarks, %d folders to %s\n", bookmarks, folders-1, outputPath)
	return nil
}

// runQuickSearch performs a fuzzy search and opens the selected bookmark.
func runQuickSearch(cmd *cobra.Command, args []string) error {
	e, err := openEnv(configPath, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	query := strings.Join(args, " ")
	nodes := model.NormalizeNodes(e.service.GetTree())
	results := search.FuzzySearch(nodes, query)

	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return nil
	}

	var selected search.SearchResult
	if len(results) == 1 {
		// Single result - select it directly
		selected = results[0]
		fmt.Printf("Opening: %s\n", selected.Node.Title)
	} else {
		p := picker.New(results, query, nodes)
		finalModel, err := tea.NewProgram(p).Run()
		if err != nil {
			return fmt.Errorf("run picker: %w", err)
		}

		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			return nil
		}
		var ok bool
		if selected, ok = finalPicker.Selected(); !ok {
			return nil
		}
	}

	return command.NewOpener(e.cfg.Open.Browser)(selected.Node.URL, false)
}

// runOpen opens bookmarks by ID.
func runOpen(cmd *cobra.Command, args []string) error {
	e, err := openEnv(configPath, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	c := command.OpenInBrowser
	if incognito {
		c = command.OpenIncognito
	}
	msg, err := e.commands.Execute(cmd.Context(), c, args, command.Args{})
	if err != nil {
		return err
	}
	if msg != "" {
		fmt.Println(msg)
	}
	return nil
}

// runCull checks every bookmark URL and reports, or deletes, the dead ones.
func runCull(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(configPath, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	targets := culler.Bookmarks(model.NormalizeNodes(e.service.GetTree()))
	checker := culler.New(culler.Params{
		Concurrency:    cullConcurrency,
		ExcludeDomains: cullExclude,
		Logger:         e.log,
		OnProgress: func(completed, total int) {
			fmt.Fprintf(os.Stderr, "\rChecking %d/%d", completed, total)
		},
	})
	results := checker.Check(cmd.Context(), targets)
	fmt.Fprintln(os.Stderr)

	for _, r := range results {
		switch r.Status {
		case culler.Dead:
			fmt.Printf("dead        %d  %s  %s\n", r.StatusCode, r.Node.Title, r.Node.URL)
		case culler.Unreachable:
			fmt.Printf("unreachable %s  %s  %s\n", r.Error, r.Node.Title, r.Node.URL)
		}
	}

	dead := culler.DeadIDs(results)
	if !cullDelete || len(dead) == 0 {
		fmt.Printf("%d checked, %d dead\n", len(results), len(dead))
		return nil
	}
	if err := e.service.RemoveTrees(dead); err != nil {
		return fmt.Errorf("delete dead bookmarks: %w", err)
	}
	fmt.Printf("%d checked, %d dead bookmarks deleted\n", len(results), len(dead))
	return nil
}

func countNodes(n *model.TreeNode) (folders, bookmarks int) {
	if n == nil {
		return 0, 0
	}
	if n.URL != "" {
		return 0, 1
	}
	folders = 1
	for _, c := range n.Children {
		f, b := countNodes(c)
		folders += f
		bookmarks += b
	}
	return folders, bookmarks
}

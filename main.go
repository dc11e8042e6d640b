package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "mindcanvas:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	open       string
	importPath string
	exportPNG  string
	exportTXT  string
	layout     bool
	list       bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("mindcanvas", pflag.ContinueOnError)
	fs.StringVarP(&o.configPath, "config", "c", "", "config file (default ~/"+configFileName+")")
	fs.StringVarP(&o.open, "open", "o", "", "open the map with this id")
	fs.StringVarP(&o.importPath, "import", "i", "", "open a map file from a path")
	fs.StringVar(&o.exportPNG, "export-png", "", "render the map to a PNG file and exit")
	fs.StringVar(&o.exportTXT, "export-txt", "", "render the map to a text file and exit")
	fs.BoolVar(&o.layout, "layout", false, "auto-layout the map after loading")
	fs.BoolVarP(&o.list, "list", "l", false, "list stored maps and exit")
	err := fs.Parse(args)
	return o, err
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	config, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	logger, closer, err := newLogger(config)
	if err != nil {
		return err
	}
	defer closer.Close()

	estimator := NewCellEstimator(config.Layout.MaxNodeWidth)
	store := NewStore(config.MapDirectory(), estimator, logger)

	if opts.list {
		return listMaps(stdout, store)
	}

	var (
		mm    *Map
		state ViewportState
	)
	switch {
	case opts.importPath != "":
		mm, state, err = store.Import(opts.importPath)
	case opts.open != "":
		mm, state, err = store.Load(opts.open)
	}
	if err != nil {
		return err
	}

	if opts.exportPNG != "" || opts.exportTXT != "" {
		if mm == nil {
			return errors.New("--export-png and --export-txt need --open or --import")
		}
		return runExport(mm, state, opts, config, estimator, logger)
	}

	m := newModel(config, store, estimator, logger)
	if mm != nil {
		doc := m.openBuffer(mm, state)
		if opts.layout {
			doc.AutoLayout()
		}
		m.mode = ModeNormal
	} else if !config.StartMenu {
		m.openBuffer(NewMap("Untitled", estimator), ViewportState{Scale: 1})
		m.mode = ModeNormal
	}
	m.flushChanges()

	logger.Info("starting editor", "maps", config.MapDirectory())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

func listMaps(w io.Writer, store *Store) error {
	maps, err := store.List()
	if err != nil {
		return err
	}
	for _, s := range maps {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d nodes\n", s.ID, s.Title, s.Nodes); err != nil {
			return err
		}
	}
	return nil
}

func runExport(mm *Map, state ViewportState, opts options, config *Config, estimator SizeEstimator, logger *slog.Logger) error {
	doc := NewDocument(mm, config, estimator, nil, logger)
	doc.Viewport.Restore(state)
	if opts.layout {
		doc.AutoLayout()
	}
	if opts.exportPNG != "" {
		if err := exportPNG(doc, opts.exportPNG); err != nil {
			return fmt.Errorf("exporting %s: %w", opts.exportPNG, err)
		}
		logger.Info("exported png", "map", mm.ID, "file", opts.exportPNG)
	}
	if opts.exportTXT != "" {
		const width, height = 120, 40
		doc.FitToView(width, height)
		if err := exportVisualTXT(doc, opts.exportTXT, width, height); err != nil {
			return fmt.Errorf("exporting %s: %w", opts.exportTXT, err)
		}
		logger.Info("exported txt", "map", mm.ID, "file", opts.exportTXT)
	}
	return nil
}

func newModel(config *Config, store *Store, estimator SizeEstimator, logger *slog.Logger) model {
	input := textinput.New()
	input.CharLimit = 500

	m := model{
		mode:      ModeStartup,
		config:    config,
		store:     store,
		estimator: estimator,
		logger:    logger,
		keys:      defaultKeyMap(),
		helpView:  help.New(),
		input:     input,
	}
	m.refreshMapList()
	return m
}

func (m *model) refreshMapList() {
	maps, err := m.store.List()
	if err != nil {
		m.logger.Error("listing maps", "error", err)
		m.errorMessage = err.Error()
	}
	m.mapList = maps
	if m.selectedMapIndex >= len(m.mapList) {
		m.selectedMapIndex = len(m.mapList) - 1
	}
	if m.selectedMapIndex < 0 {
		m.selectedMapIndex = 0
	}
}

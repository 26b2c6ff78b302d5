package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"brushlink/internal/config"
	"brushlink/internal/domain"
	"brushlink/internal/logging"
	"brushlink/internal/registry"
	"brushlink/internal/session"
)

func main() {
	var (
		modeFlag   string
		configPath string
		listenAddr string
	)
	flag.StringVar(&modeFlag, "mode", "", "selection mode: transient, persistent or dynamic")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&listenAddr, "listen", "", "serve a websocket bridge for remote renderers on this address")
	flag.Parse()

	// Keep log lines off the alternate screen
	logFile, err := os.OpenFile("linkdemo.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		defer logFile.Close()
		logging.SetOutput(logFile)
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.NewServiceWithPath(configPath).Load()
	} else {
		cfg, err = config.NewService().Load()
	}
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if modeFlag != "" {
		cfg.Selection.DefaultMode = modeFlag
		if err := cfg.Validate(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	if listenAddr != "" {
		cfg.Bridge.Listen = listenAddr
	}

	sess := session.New(cfg)
	defer sess.Close()

	if _, err := sess.LoadGroup(citiesGroup, cityRows(), registry.ColumnKeys("city")); err != nil {
		fmt.Printf("Error loading dataset: %v\n", err)
		os.Exit(1)
	}

	model := newModel(sess, cfg.Mode())
	p := tea.NewProgram(model, tea.WithAltScreen())
	model.setProgram(p)

	if err := model.attach(); err != nil {
		fmt.Printf("Error attaching views: %v\n", err)
		os.Exit(1)
	}

	if cfg.Bridge.Listen != "" {
		bridge, err := model.attachBridge()
		if err != nil {
			fmt.Printf("Error attaching bridge: %v\n", err)
			os.Exit(1)
		}
		mux := http.NewServeMux()
		mux.Handle("/link", bridge)
		go func() {
			if err := http.ListenAndServe(cfg.Bridge.Listen, mux); err != nil {
				logging.NewLogger("linkdemo").WithError(err).Error("bridge server stopped")
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}

const citiesGroup = domain.GroupID("cities")

// cityRows is the demo dataset: one observation per city with
// population (x, millions) and area (y, km²) as data-scale
// coordinates, so drag regions resolve without any pixel mapping.
func cityRows() []registry.Row {
	cities := []struct {
		name string
		pop  float64
		area float64
	}{
		{"Austin", 0.96, 826},
		{"Dallas", 1.30, 999},
		{"Houston", 2.30, 1659},
		{"San Antonio", 1.53, 1307},
		{"El Paso", 0.68, 667},
		{"Fort Worth", 0.94, 920},
		{"Lubbock", 0.26, 350},
		{"Amarillo", 0.20, 263},
	}

	rows := make([]registry.Row, len(cities))
	for i, c := range cities {
		rows[i] = registry.Row{
			Values: map[string]any{"city": c.name, "pop": c.pop, "area": c.area},
			X:      c.pop,
			Y:      c.area,
			HasXY:  true,
		}
	}
	return rows
}

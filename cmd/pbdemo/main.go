package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zeusync/parallelbehavior/internal/core/actor"
	"github.com/zeusync/parallelbehavior/internal/core/behavior"
	"github.com/zeusync/parallelbehavior/internal/core/observability/log"
	"github.com/zeusync/parallelbehavior/internal/core/parallel"
)

// defaultTrees is a layered guard AI: combat, locomotion and emotion run
// as independent trees, each with its own blackboard.
const defaultTrees = `
trees:
  combat:
    root: root
    blackboard:
      defaults:
        threat: 0
    nodes:
      root:
        type: selector
        children: [engage, scan]
      engage:
        type: sequence
        children: [threat-high, strike]
      threat-high:
        type: condition
        condition: key-above
        params: {key: threat, threshold: 0.5}
      strike:
        type: decorator
        decorator: cooldown
        params: {every: 2s}
        child: hit
      hit:
        type: action
        action: increment
        params: {key: strikes}
      scan:
        type: action
        action: increment
        params: {key: scans, step: 1}
  locomotion:
    root: root
    blackboard:
      defaults:
        speed: 1.0
    nodes:
      root:
        type: sequence
        children: [step, rest]
      step:
        type: action
        action: increment
        params: {key: steps}
      rest:
        type: action
        action: wait
        params: {duration: 500ms}
  emotion:
    root: root
    blackboard:
      defaults:
        mood: 0
    nodes:
      root:
        type: action
        action: increment
        params: {key: mood}
`

const defaultConfig = `
behaviors:
  - id: combat
    tree: combat
  - id: locomotion
    tree: locomotion
    data:
      speed: 2.5
  - id: emotion
    tree: emotion
update_interval: 100ms
`

func main() {
	var (
		treesPath  = flag.String("trees", "", "path to tree library YAML (builtin demo trees when empty)")
		configPath = flag.String("config", "", "path to manager config YAML (builtin demo config when empty)")
		listenAddr = flag.String("listen", ":8080", "debug viewer listen address")
	)
	flag.Parse()

	logger := log.New(log.LevelInfo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	library, cfg, err := loadAssets(*treesPath, *configPath)
	if err != nil {
		fmt.Println("Error loading assets:", err)
		os.Exit(1)
	}

	pawn := actor.NewPawn("guard")
	controller := actor.NewController("guard_controller", pawn, actor.RoleAuthority)
	manager := parallel.NewManager(controller, library, cfg, logger)

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	if err = manager.Start(ctx); err != nil {
		fmt.Println("Error starting behaviors:", err)
	}
	manager.StartAutoUpdate(ctx)

	viewer := newViewer(manager, logger)
	go func() {
		if err := viewer.ListenAndServe(*listenAddr); err != nil {
			logger.Error("Viewer stopped", log.Error(err))
		}
	}()
	logger.Info("Parallel behavior demo running",
		log.String("listen", *listenAddr),
		log.Int("behaviors", manager.Len()))

	<-stopCh
	cancel()
	if err = manager.Close(); err != nil {
		fmt.Println("Error stopping manager:", err)
	}
}

func loadAssets(treesPath, configPath string) (*behavior.Library, *parallel.Config, error) {
	reg := behavior.NewDefaultRegistry()

	treesSrc := defaultTrees
	if treesPath != "" {
		b, err := os.ReadFile(treesPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read trees: %w", err)
		}
		treesSrc = string(b)
	}
	library, err := behavior.LoadLibraryYAML(strings.NewReader(treesSrc), reg)
	if err != nil {
		return nil, nil, fmt.Errorf("load trees: %w", err)
	}

	configSrc := defaultConfig
	if configPath != "" {
		b, err := os.ReadFile(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
		configSrc = string(b)
	}
	cfg, err := parallel.LoadConfigYAML(strings.NewReader(configSrc))
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return library, cfg, nil
}

package app

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fugi/antrun/internal/ctxlog"
	"github.com/fugi/antrun/internal/execnode"
	"github.com/fugi/antrun/internal/install"
	"github.com/fugi/antrun/internal/installer"
	"github.com/fugi/antrun/internal/invoker"
	"github.com/fugi/antrun/internal/launch"
)

// Run executes every step of the loaded job in order and returns an error
// if any step aborts or fails.
func (a *App) Run(ctx context.Context, cfg *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if cfg.AutoInstall {
		if err := a.provision(ctx, cfg.ToolsDir); err != nil {
			return err
		}
	}

	console, closeConsole := a.console(cfg)
	defer closeConsole()

	node := execnode.NewLocal("")
	iv := invoker.New(a.registry)

	for _, step := range a.job.Steps {
		a.logger.Info("▶️ Starting build step.", "step", step.Name)

		build := invoker.BuildContext{
			Node:          node,
			Launcher:      launch.NewLocal(),
			Workspace:     cfg.Workspace,
			ModuleRoot:    cfg.ModuleRoot,
			Env:           a.hostEnv,
			BuildVars:     step.Vars,
			SensitiveVars: step.SensitiveSet(),
			Console:       console,
		}

		ok, err := iv.Perform(ctx, invoker.Step{
			Targets:    step.Targets,
			AntName:    step.Ant,
			AntOpts:    step.AntOpts,
			BuildFile:  step.BuildFile,
			Properties: step.Properties,
		}, build)
		if err != nil {
			a.logger.Error("Build step aborted.", "step", step.Name, "error", err)
			return fmt.Errorf("step %s aborted: %w", step.Name, err)
		}
		if !ok {
			a.logger.Error("🏁 Build step failed.", "step", step.Name)
			return fmt.Errorf("step %s failed", step.Name)
		}
		a.logger.Info("✅ Build step succeeded.", "step", step.Name)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// provision auto-installs every registered installation that declares a
// download URL, re-pointing its home at the unpacked distribution.
func (a *App) provision(ctx context.Context, toolsDir string) error {
	ins := installer.New(toolsDir)
	defer ins.Close()

	installations := a.registry.Snapshot()
	changed := false
	for i, inst := range installations {
		if inst.DownloadURL == "" {
			continue
		}
		home, err := ins.Ensure(ctx, inst)
		if err != nil {
			return fmt.Errorf("provisioning installation %s: %w", inst.Name, err)
		}
		if home != inst.Home {
			installations[i] = install.New(inst.Name, home,
				install.WithNodeHomes(inst.NodeHomes),
				install.WithProperties(inst.Properties),
				install.WithDownloadURL(inst.DownloadURL),
			)
			changed = true
		}
	}
	if changed {
		a.registry.Replace(installations)
	}
	return nil
}

// console builds the build-console sink: stdout, optionally teed into a
// rotating log file.
func (a *App) console(cfg *Config) (io.Writer, func()) {
	if cfg.ConsoleLogPath == "" {
		return a.outW, func() {}
	}
	rotating := &lumberjack.Logger{
		Filename:   cfg.ConsoleLogPath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
	}
	return io.MultiWriter(a.outW, rotating), func() { rotating.Close() }
}

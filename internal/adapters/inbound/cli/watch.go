package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/opsgate/opsgate/internal/adapters/outbound/tui"
	"github.com/opsgate/opsgate/internal/domain"
)

// debounce window for editors that write rule files in several events.
const watchSettle = 300 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var (
		path string
		opts checkOptions
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the gate whenever rules, resources or config change",
		Long: "Run the gate once, then watch the rule files, resources file and .opsgate.yaml. " +
			"Each change reloads the rules (keeping the previous set if the new one fails validation) and re-evaluates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, path, opts)
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Target directory to validate")
	cmd.Flags().StringSliceVar(&opts.rulePaths, "rules", nil, "Rule file or directory (repeatable, overrides config)")
	cmd.Flags().StringVar(&opts.resources, "resources", "", "Resources file (overrides config)")
	cmd.Flags().StringVar(&opts.env, "env", "", "Deployment environment (overrides config)")
	cmd.Flags().StringSliceVar(&opts.frameworks, "framework", nil, "Compliance framework to evaluate (repeatable, overrides config)")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, path string, opts checkOptions) error {
	cfg, svc, tools, err := buildGate(path, opts)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	watched := watchTargets(path, cfg)
	for _, p := range watched {
		if err := watcher.Add(p); err != nil {
			log.Warn().Str("path", p).Err(err).Msg("cannot watch path")
		}
	}

	rulePaths := make([]string, 0, len(cfg.RulePaths))
	for _, p := range cfg.RulePaths {
		rulePaths = append(rulePaths, resolvePath(path, p))
	}

	evaluate := func() {
		if err := svc.LoadRules(rulePaths); err != nil {
			log.Error().Err(err).Msg("rule reload failed, keeping previous rule set")
		}
		rep, err := svc.Run(ctx, path, cfg, tools)
		if err != nil {
			log.Error().Err(err).Msg("gate run failed")
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(rep))
		if err := writeArtifacts(rep, path, cfg); err != nil {
			log.Error().Err(err).Msg("writing report artifacts failed")
		}
	}

	evaluate()
	fmt.Fprintln(cmd.OutOrStdout(), "watching for changes, press Ctrl-C to stop")

	var settle *time.Timer
	settleCh := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("change detected")
			if settle != nil {
				settle.Stop()
			}
			settle = time.AfterFunc(watchSettle, func() {
				select {
				case settleCh <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		case <-settleCh:
			evaluate()
		}
	}
}

// watchTargets collects the paths whose changes should re-trigger the gate:
// rule files or directories, the resources file, and the config file.
func watchTargets(path string, cfg domain.GateConfig) []string {
	out := []string{filepath.Join(path, ".opsgate.yaml")}
	for _, p := range cfg.RulePaths {
		out = append(out, resolvePath(path, p))
	}
	resourcesFile := cfg.ResourcesFile
	if resourcesFile == "" {
		resourcesFile = "resources.yaml"
	}
	out = append(out, resolvePath(path, resourcesFile))
	return out
}

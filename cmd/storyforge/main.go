package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kingrea/storyforge/internal/codex"
	"github.com/kingrea/storyforge/internal/config"
	"github.com/kingrea/storyforge/internal/debate"
	"github.com/kingrea/storyforge/internal/gateway"
	"github.com/kingrea/storyforge/internal/logging"
	"github.com/kingrea/storyforge/internal/pipeline"
	"github.com/kingrea/storyforge/internal/story"
	"github.com/kingrea/storyforge/internal/ux"
)

type cliFlags struct {
	configPath string
	codexPath  string
	outputDir  string
	scope      string
	model      string
	mediaURL   string
	phases     []string
	steps      []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}
	root := &cobra.Command{
		Use:           "storyforge",
		Short:         "Generative story pipeline: card draws to rendered storyboards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&flags.codexPath, "codex", "", "path to an existing codex to resume")
	root.PersistentFlags().StringVar(&flags.outputDir, "output-dir", "", "directory run folders are created under")
	root.AddCommand(newRunCmd(flags), newStatusCmd(flags))
	return root
}

func newRunCmd(flags *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the pipeline, creating a new run or resuming via --codex",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(flags)
		},
	}
	cmd.Flags().StringVar(&flags.scope, "scope", "", "story scope: flash, short, standard, or long")
	cmd.Flags().StringVar(&flags.model, "model", "", "text-generation model override")
	cmd.Flags().StringVar(&flags.mediaURL, "media-url", "", "media job server override")
	cmd.Flags().StringSliceVar(&flags.phases, "phases", nil, "restrict the run to these phases")
	cmd.Flags().StringSliceVar(&flags.steps, "steps", nil, "force specific steps to rerun, as phase/step")
	return cmd
}

func newStatusCmd(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show every pipeline step's state for a codex",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(flags)
		},
	}
}

func loadConfig(flags *cliFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if flags.outputDir != "" {
		cfg.OutputDir = flags.outputDir
	}
	if flags.scope != "" {
		cfg.Scope = config.Scope(flags.scope)
	}
	if flags.model != "" {
		cfg.Model = flags.model
	}
	if flags.mediaURL != "" {
		cfg.MediaURL = flags.mediaURL
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runPipeline(flags *cliFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	codexPath := flags.codexPath
	runID := ""
	if codexPath == "" {
		runID = time.Now().Format("20060102150405")
		codexPath = filepath.Join(cfg.OutputDir, runID, "codex_"+runID+".json")
	}
	store, err := codex.NewStore(codexPath)
	if err != nil {
		return err
	}

	var doc *codex.Codex
	if runID != "" {
		doc, err = store.Create(runID)
	} else {
		doc, err = store.Load()
	}
	if err != nil {
		return err
	}

	log, err := logging.New(filepath.Dir(codexPath))
	if err != nil {
		return err
	}
	defer log.Close()

	gw, err := gateway.New(cfg)
	if err != nil {
		return err
	}
	deb, err := debate.NewEngine(gw.Text, debate.WithRounds(cfg.DebateRounds))
	if err != nil {
		return err
	}
	exec, err := pipeline.NewExecutor(store, cfg, gw, deb, log)
	if err != nil {
		return err
	}
	ctl, err := pipeline.NewController(story.Pipeline(), store, exec, log,
		pipeline.WithObserver(func(ev pipeline.StepEvent) {
			fmt.Println(ux.StepLine(ev))
		}))
	if err != nil {
		return err
	}

	fmt.Println(ux.Banner(doc.Metadata.ID, codexPath))

	req, err := buildRequest(flags)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	res, err := ctl.Run(ctx, req)
	if res != nil {
		fmt.Println(ux.Summary(res))
	}
	if err != nil {
		var pre *pipeline.PreconditionError
		if errors.As(err, &pre) {
			return fmt.Errorf("%s/%s is not runnable yet; missing: %s",
				pre.Phase, pre.Step, strings.Join(pre.Missing, ", "))
		}
		return err
	}
	return nil
}

func showStatus(flags *cliFlags) error {
	if flags.codexPath == "" {
		return fmt.Errorf("status requires --codex")
	}
	store, err := codex.NewStore(flags.codexPath)
	if err != nil {
		return err
	}
	p := story.Pipeline()
	if err := p.Validate(); err != nil {
		return err
	}
	doc, err := store.Load()
	if err != nil {
		return err
	}
	states := make(map[pipeline.StepID]pipeline.StepState)
	for _, phase := range p.Phases {
		for _, step := range phase.Steps {
			states[pipeline.StepID{Phase: phase.Name, Step: step.Name}] = pipeline.StateOf(doc, phase, step)
		}
	}
	fmt.Println(ux.Banner(doc.Metadata.ID, flags.codexPath))
	fmt.Println(ux.StatusBoard(p, states))
	return nil
}

// buildRequest parses --phases and --steps into a controller request. A step
// given as phase/step also implies its phase is requested.
func buildRequest(flags *cliFlags) (pipeline.Request, error) {
	req := pipeline.Request{Phases: flags.phases}
	for _, raw := range flags.steps {
		phase, step, ok := strings.Cut(raw, "/")
		if !ok || phase == "" || step == "" {
			return pipeline.Request{}, fmt.Errorf("invalid --steps entry %q, want phase/step", raw)
		}
		if req.Steps == nil {
			req.Steps = make(map[string][]string)
		}
		req.Steps[phase] = append(req.Steps[phase], step)
	}
	return req, nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vampirenirmal/storylord/internal/checkpoint"
	"github.com/vampirenirmal/storylord/internal/config"
	"github.com/vampirenirmal/storylord/internal/pipeline"
	"github.com/vampirenirmal/storylord/internal/storage"
	"github.com/vampirenirmal/storylord/internal/story"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate <input.yaml>",
		Short: "Generate a story from a YAML input file",
		Args:  cobra.ExactArgs(1),
		Run:   runGenerate,
	}
	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		exitErr("loading config", err)
	}

	input, err := loadStoryInput(args[0])
	if err != nil {
		exitErr("loading story input", err)
	}

	ai, err := buildAgent(cfg)
	if err != nil {
		exitErr("configuring AI client", err)
	}

	checkpoints, err := checkpoint.Open(cfg.Paths.CheckpointDB)
	if err != nil {
		exitErr("opening checkpoint store", err)
	}
	defer checkpoints.Close()

	p := pipeline.New(
		buildRegistry(),
		ai,
		storage.NewFileSystem(cfg.Paths.OutputDir),
		pipeline.WithCheckpoints(checkpoints),
		pipeline.WithEditorWorkers(cfg.Limits.MaxEditorWorkers),
	)

	result, err := p.Run(cmd.Context(), input)
	if err != nil {
		if result != nil && len(result.Narrated.Narrations) > 0 {
			fmt.Fprintf(os.Stderr, "run %s halted; %d committed beats preserved (see 'storylord export %s')\n",
				result.RunID, len(result.Narrated.Narrations), result.RunID)
		}
		exitErr("generating story", err)
	}

	fmt.Printf("run %s complete\n", result.RunID)
	fmt.Printf("architecture: %s\n", result.ArchitecturePath)
	fmt.Printf("narrative:    %s\n", result.NarrativePath)
}

func loadStoryInput(path string) (story.StoryInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return story.StoryInput{}, err
	}

	var input story.StoryInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return story.StoryInput{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return input, nil
}

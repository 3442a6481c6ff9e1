package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremysball/alfred-memory/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Edit a memory's content or importance",
		Long: "Update an existing memory in place. When content changes, the " +
			"embedding is recomputed unless --no-reembed is set.",
		Args: cobra.ExactArgs(1),
		Run:  runUpdate,
	}

	cmd.Flags().String("content", "", "New content")
	cmd.Flags().Float64P("importance", "i", -1, "New importance in [0.0, 1.0]")
	cmd.Flags().Bool("no-reembed", false, "Keep the stored embedding even though content changed")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	content, _ := cmd.Flags().GetString("content")
	importance, _ := cmd.Flags().GetFloat64("importance")
	noReembed, _ := cmd.Flags().GetBool("no-reembed")
	id := args[0]

	if content == "" && importance < 0 {
		exitErr("update", fmt.Errorf("nothing to update: set --content and/or --importance"))
	}

	eng, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	params := engine.UpdateParams{ID: id, Content: content}
	if importance >= 0 {
		params.Importance = &importance
	}
	if content != "" && !noReembed {
		vec, err := embedText(cmd.Context(), cfg, content)
		if err != nil {
			exitErr("update", err)
		}
		params.Embedding = vec
	}

	mem, err := eng.UpdateMemory(cmd.Context(), params)
	if err != nil {
		exitErr("update", err)
	}

	mem.Embedding = nil
	b, _ := json.Marshal(mem)
	fmt.Println(string(b))
}

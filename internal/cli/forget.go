package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremysball/alfred-memory/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "forget [query]",
		Short: "Find or delete memories (two calls required to delete)",
		Long: "With a query, list deletion candidates. With --id, request deletion: " +
			"the first call returns a confirmation prompt, a second call with the " +
			"same id within 5 minutes performs the delete. An expired request " +
			"starts over.",
		Run: runForget,
	}

	cmd.Flags().String("id", "", "Memory id to request/confirm deletion for")
	cmd.Flags().IntP("limit", "l", 0, "Max candidates in query mode")
	cmd.Flags().Float64P("min-similarity", "m", 0, "Similarity floor in query mode")

	RootCmd.AddCommand(cmd)
}

func runForget(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetString("id")
	limit, _ := cmd.Flags().GetInt("limit")
	minSim, _ := cmd.Flags().GetFloat64("min-similarity")

	if id == "" && len(args) == 0 {
		exitErr("forget", fmt.Errorf("either --id or a query is required"))
	}

	eng, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	params := engine.ForgetParams{ID: id, Limit: limit, MinSimilarity: minSim}
	if id == "" {
		vec, err := embedText(cmd.Context(), cfg, strings.Join(args, " "))
		if err != nil {
			exitErr("forget", err)
		}
		params.Query = vec
	}

	result, err := eng.Forget(cmd.Context(), params)
	if err != nil {
		exitErr("forget", err)
	}

	for i := range result.Candidates {
		result.Candidates[i].Embedding = nil
	}
	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}

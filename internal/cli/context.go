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
		Use:   "context [query]",
		Short: "Assemble relevant memories into a bounded context block",
		Long:  "Search, rank, and greedily pack memories into a token budget. Entries that would overflow the budget are omitted whole, never truncated.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runContext,
	}

	cmd.Flags().IntP("budget", "b", 0, "Max tokens in output (default from config)")
	cmd.Flags().Float64P("min-similarity", "m", 0, "Similarity floor (default from config)")
	cmd.Flags().Bool("text", false, "Print only the assembled text, not the JSON envelope")

	RootCmd.AddCommand(cmd)
}

func runContext(cmd *cobra.Command, args []string) {
	budget, _ := cmd.Flags().GetInt("budget")
	minSim, _ := cmd.Flags().GetFloat64("min-similarity")
	textOnly, _ := cmd.Flags().GetBool("text")
	query := strings.Join(args, " ")

	eng, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	vec, err := embedText(cmd.Context(), cfg, query)
	if err != nil {
		exitErr("context", err)
	}

	result, err := eng.MemoryContext(cmd.Context(), engine.ContextParams{
		Embedding:     vec,
		TokenBudget:   budget,
		MinSimilarity: minSim,
	})
	if err != nil {
		exitErr("context", err)
	}

	if textOnly {
		fmt.Println(result.Text)
		return
	}
	b, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(b))
}

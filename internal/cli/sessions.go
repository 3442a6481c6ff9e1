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
		Use:   "sessions [query]",
		Short: "Search session summaries",
		Long:  "Embed the query and return ranked session summaries. Summaries are scored in their own embedding space, separate from individual memories.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSessions,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (default from config)")
	cmd.Flags().Float64P("min-similarity", "m", 0, "Similarity floor (default from config)")

	RootCmd.AddCommand(cmd)
}

func runSessions(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	minSim, _ := cmd.Flags().GetFloat64("min-similarity")
	query := strings.Join(args, " ")

	eng, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	vec, err := embedText(cmd.Context(), cfg, query)
	if err != nil {
		exitErr("sessions", err)
	}

	results, err := eng.SearchSessions(cmd.Context(), engine.SessionSearchParams{
		Embedding:     vec,
		Limit:         limit,
		MinSimilarity: minSim,
	})
	if err != nil {
		exitErr("sessions", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}
	for i := range results {
		results[i].Embedding = nil
	}
	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}

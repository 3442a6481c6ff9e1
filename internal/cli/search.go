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
		Use:   "search [query]",
		Short: "Search memories by semantic similarity",
		Long:  "Embed the query and return ranked, deduplicated memories above the similarity floor.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (default from config)")
	cmd.Flags().Float64P("min-similarity", "m", 0, "Similarity floor (default from config)")
	cmd.Flags().StringP("tag", "t", "", "Filter by tag")
	cmd.Flags().StringP("session", "s", "", "Filter by session id")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	minSim, _ := cmd.Flags().GetFloat64("min-similarity")
	tag, _ := cmd.Flags().GetString("tag")
	session, _ := cmd.Flags().GetString("session")
	query := strings.Join(args, " ")

	eng, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	vec, err := embedText(cmd.Context(), cfg, query)
	if err != nil {
		exitErr("search", err)
	}

	results, err := eng.SearchMemories(cmd.Context(), engine.SearchParams{
		Embedding:     vec,
		Limit:         limit,
		MinSimilarity: minSim,
		Tag:           tag,
		SessionID:     session,
	})
	if err != nil {
		exitErr("search", err)
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

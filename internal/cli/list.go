package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremysball/alfred-memory/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories, newest first",
		Run:   runList,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().StringP("session", "s", "", "Filter by session id")
	cmd.Flags().StringP("tag", "t", "", "Filter by tag")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	session, _ := cmd.Flags().GetString("session")
	tag, _ := cmd.Flags().GetString("tag")

	eng, _, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	entries, err := eng.ListMemories(cmd.Context(), engine.ListParams{
		Limit:     limit,
		SessionID: session,
		Tag:       tag,
	})
	if err != nil {
		exitErr("list", err)
	}

	if len(entries) == 0 {
		fmt.Println("[]")
		return
	}
	for i := range entries {
		entries[i].Embedding = nil
	}
	b, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Println(string(b))
}

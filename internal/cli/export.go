package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremysball/alfred-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump all records as JSON, without embeddings",
		Long:  "Export every memory and session summary for inspection or text backup. Embeddings are omitted; an export cannot be re-imported without recomputing them.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

type exportDump struct {
	Memories  []model.MemoryEntry    `json:"memories"`
	Summaries []model.SessionSummary `json:"summaries"`
}

func runExport(cmd *cobra.Command, args []string) {
	eng, _, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	entries, sums, err := eng.Export(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(exportDump{Memories: entries, Summaries: sums}, "", "  ")
	fmt.Println(string(b))
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show a single memory by id",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("with-embedding", false, "Include the embedding vector in output")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	withEmbedding, _ := cmd.Flags().GetBool("with-embedding")

	eng, _, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	mem, err := eng.GetMemory(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}

	if !withEmbedding {
		mem.Embedding = nil
	}
	b, _ := json.MarshalIndent(mem, "", "  ")
	fmt.Println(string(b))
}

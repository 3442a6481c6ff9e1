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
		Use:   "summary [session-id] [text]",
		Short: "Replace a session's summary",
		Long: "Install a new live summary for a session, bumping its version. " +
			"Intended for the external session summarizer; summary text can " +
			"also be piped via stdin.",
		Args: cobra.MinimumNArgs(1),
		Run:  runSummary,
	}

	RootCmd.AddCommand(cmd)
}

func runSummary(cmd *cobra.Command, args []string) {
	sessionID := args[0]
	text := readContent(args[1:])
	if strings.TrimSpace(text) == "" {
		exitErr("summary", fmt.Errorf("summary text is required (positional arg or stdin)"))
	}
	text = strings.TrimSpace(text)

	eng, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	vec, err := embedText(cmd.Context(), cfg, text)
	if err != nil {
		exitErr("summary", err)
	}

	sum, err := eng.ReplaceSummary(cmd.Context(), engine.ReplaceSummaryParams{
		SessionID: sessionID,
		Summary:   text,
		Embedding: vec,
	})
	if err != nil {
		exitErr("summary", err)
	}

	sum.Embedding = nil
	b, _ := json.Marshal(sum)
	fmt.Println(string(b))
}

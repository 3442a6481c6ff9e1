package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremysball/alfred-memory/internal/engine"
	"github.com/jeremysball/alfred-memory/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "remember [content]",
		Short: "Store a new memory",
		Long:  "Store a fact as a memory entry. Content can be a positional arg or piped via stdin; the embedding is computed by the configured provider before the engine is called.",
		Run:   runRemember,
	}

	cmd.Flags().Float64P("importance", "i", model.DefaultImportance, "Importance in [0.0, 1.0]")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	cmd.Flags().StringP("session", "s", "", "Session id to group under")
	cmd.Flags().StringP("role", "r", "user", "Origin role: user, assistant, system")

	RootCmd.AddCommand(cmd)
}

func runRemember(cmd *cobra.Command, args []string) {
	importance, _ := cmd.Flags().GetFloat64("importance")
	tagsStr, _ := cmd.Flags().GetString("tags")
	session, _ := cmd.Flags().GetString("session")
	role, _ := cmd.Flags().GetString("role")

	content := readContent(args)
	if strings.TrimSpace(content) == "" {
		exitErr("remember", fmt.Errorf("content is required (positional arg or stdin)"))
	}
	content = strings.TrimSpace(content)

	eng, cfg, err := openEngine()
	if err != nil {
		exitErr("open engine", err)
	}

	vec, err := embedText(cmd.Context(), cfg, content)
	if err != nil {
		exitErr("remember", err)
	}

	mem, err := eng.Remember(cmd.Context(), engine.RememberParams{
		Content:    content,
		Embedding:  vec,
		Role:       model.Role(role),
		Importance: &importance,
		Tags:       splitTags(tagsStr),
		SessionID:  session,
	})
	if err != nil {
		exitErr("remember", err)
	}

	mem.Embedding = nil // keep output readable
	b, _ := json.Marshal(mem)
	fmt.Println(string(b))
}

// readContent takes positional args first, then stdin when piped.
func readContent(args []string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}
	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		return string(b)
	}
	return ""
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

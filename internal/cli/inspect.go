package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietddude/mdreformat/internal/markup"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show how a description is normalized and classified",
	Long:  `Read text from a file, or stdin when no file is given, and print the normalized text with the markup cues it matches.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return writeInspection(cmd.OutOrStdout(), string(data))
}

func writeInspection(w io.Writer, text string) error {
	cues := markup.Cues(text)
	_, err := fmt.Fprintf(w, "markup: %t\nplaceholder: %t\ncues: %s\n--- normalized ---\n%s\n",
		len(cues) > 0,
		markup.HasPlaceholder(text),
		strings.Join(cues, ", "),
		markup.Normalize(text),
	)
	return err
}

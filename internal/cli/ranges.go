package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/hlsync/internal/renderer/core"
	"github.com/dshills/hlsync/internal/renderer/scan"
)

func newRangesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ranges FILE",
		Short: "Print the highlight and error ranges of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			s, ok := scan.DefaultRegistry().ForFile(path)
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}

			text := string(data)
			hl, errs := s.Scan(text)
			out := cmd.OutOrStdout()
			for _, r := range hl {
				printRange(out, text, r)
			}
			for _, r := range errs {
				printRange(out, text, r)
			}
			return nil
		},
	}
}

func printRange(w io.Writer, text string, r core.HighlightRange) {
	snippet := text[r.StartIndex:r.EndIndex]
	if len(snippet) > 40 {
		snippet = snippet[:40] + "..."
	}
	fmt.Fprintf(w, "%6d %6d  %-24s %s\n", r.StartIndex, r.EndIndex, r.Scope, strconv.Quote(snippet))
}

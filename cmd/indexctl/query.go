package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var flagQueryK int

var queryCmd = &cobra.Command{
	Use:   "query TEXT",
	Short: "Ask a question; prints the answer and the passages it was drawn from",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&flagQueryK, "k", "k", 0, "passages to retrieve (0 uses the server default)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	res, err := newClient().Query(cmd.Context(), strings.Join(args, " "), flagQueryK)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if res.SynthesisFailed {
		fmt.Fprintf(cmd.ErrOrStderr(), "answer unavailable: %s\n", res.SynthesisError)
	} else {
		fmt.Fprintln(out, res.Answer)
	}
	fmt.Fprintln(out)
	for i, src := range res.Sources {
		fmt.Fprintf(out, "[%d] %s (score %.3f, runes %d-%d)\n", i+1, src.DocId, src.Score, src.Start, src.End)
		fmt.Fprintf(out, "    %s\n", oneLine(src.Text, 160))
	}
	return nil
}

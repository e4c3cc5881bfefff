package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/akolanti/GoIndex/internal/api"
	"github.com/akolanti/GoIndex/internal/rag/ingest"
	"github.com/spf13/cobra"
)

var (
	flagFilenameAsId bool
	flagOverwrite    bool
)

var insertCmd = &cobra.Command{
	Use:   "insert FILE...",
	Short: "Extract text from local files (pdf, docx, odt, rtf, txt, md) and index them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInsert,
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete documents and all their passages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents in insertion order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	insertCmd.Flags().BoolVar(&flagFilenameAsId, "filename-as-id", false, "use the file name as the document id")
	insertCmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "replace documents that already exist")
	rootCmd.AddCommand(insertCmd, deleteCmd, listCmd)
}

func buildInsertRequests(paths []string) ([]api.InsertDocumentRequest, error) {
	docs := make([]api.InsertDocumentRequest, 0, len(paths))
	for _, path := range paths {
		text, err := ingest.ExtractFile(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		name := filepath.Base(path)
		doc := api.InsertDocumentRequest{
			Text:      text,
			Metadata:  map[string]string{"file_name": name},
			Overwrite: flagOverwrite,
		}
		if flagFilenameAsId {
			doc.Id = name
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func runInsert(cmd *cobra.Command, args []string) error {
	docs, err := buildInsertRequests(args)
	if err != nil {
		return err
	}

	res, err := newClient().InsertDocuments(cmd.Context(), docs)
	if err != nil && len(res.Items) == 0 {
		return err
	}
	failed := 0
	for i, item := range res.Items {
		if item.Error != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", args[i], item.Error.Kind, item.Error.Message)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", item.Id, args[i])
	}
	if res.Cancelled {
		fmt.Fprintf(cmd.ErrOrStderr(), "batch cut short after %d of %d files\n", len(res.Items), len(args))
	}
	if err != nil {
		return fmt.Errorf("files were indexed but the server could not persist them: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files were not indexed", failed, len(args))
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	client := newClient()
	var errs []error
	for _, id := range args {
		if err := client.DeleteDocument(cmd.Context(), id); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
	}
	return errors.Join(errs...)
}

func runList(cmd *cobra.Command, _ []string) error {
	docs, err := newClient().ListDocuments(cmd.Context())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPASSAGES\tINGESTED\tPREVIEW")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", d.Id, d.PassageCount, d.IngestedAt.Local().Format("2006-01-02 15:04"), oneLine(d.Preview, 60))
	}
	return w.Flush()
}

func oneLine(s string, max int) string {
	out := make([]rune, 0, max)
	for _, r := range s {
		if len(out) == max {
			break
		}
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/dalnet/topiclogger/internal/storage"
)

func newTailCmd(configPath *string) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tail <channel>",
		Short: "Print the most recent log records of a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), records, asJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "lines", "n", 20, "Number of records to print")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON lines")

	return cmd
}

func printRecords(w io.Writer, records []storage.Record, asJSON bool) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if asJSON {
			if err := enc.Encode(rec); err != nil {
				return err
			}
			continue
		}
		line := fmt.Sprintf("[%s] %-7s %s", rec.Timestamp.UTC().Format("2006-01-02 15:04:05"), rec.Kind, rec.Who)
		if rec.Body != "" {
			line += ": " + rec.Body
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

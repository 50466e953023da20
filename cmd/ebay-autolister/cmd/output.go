package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/donaldgifford/ebay-autolister/internal/ebay"
	domain "github.com/donaldgifford/ebay-autolister/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printSummary(s *domain.RunSummary) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Run ID:\t%s\n", s.RunID)
	if s.File != "" {
		tw.writef("File:\t%s\n", s.File)
	}
	if s.DryRun {
		tw.writef("Mode:\tdry-run (no API calls made)\n")
	}
	tw.writef("Duration:\t%s\n", s.CompletedAt.Sub(s.StartedAt).Round(1e6))
	tw.writef("Attempted:\t%d\n", s.Attempted)
	tw.writef("Inventory created:\t%d\n", s.InventoryCreated)
	tw.writef("Offers created:\t%d\n", s.OffersCreated)
	tw.writef("Published:\t%d\n", s.Published)
	tw.writef("Failed:\t%d\n", len(s.Failures))
	tw.writef("Validation errors:\t%d\n", len(s.ValidationErrors))
	if s.Aborted {
		tw.writef("Aborted:\t%s\n", s.AbortReason)
	}
	if err := tw.finish(); err != nil {
		return err
	}

	if len(s.ValidationErrors) > 0 {
		fmt.Println("\nValidation errors:")
		tw = newTabWriter(os.Stdout)
		tw.writef("ROW\tFIELD\tREASON\n")
		for _, e := range s.ValidationErrors {
			tw.writef("%d\t%s\t%s\n", e.Row, e.Field, e.Reason)
		}
		if err := tw.finish(); err != nil {
			return err
		}
	}

	if len(s.Failures) > 0 {
		fmt.Println("\nFailed items:")
		tw = newTabWriter(os.Stdout)
		tw.writef("SKU\tPHASE\tREASON\n")
		for _, f := range s.Failures {
			tw.writef("%s\t%s\t%s\n", f.SKU, f.Phase, truncate(f.Reason, 60))
		}
		return tw.finish()
	}

	return nil
}

func printRunsTable(runs []domain.RunSummary) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("RUN ID\tSTARTED\tATTEMPTED\tCREATED\tPUBLISHED\tFAILED\tABORTED\n")
	for i := range runs {
		r := &runs[i]
		tw.writef("%s\t%s\t%d\t%d\t%d\t%d\t%v\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Attempted,
			r.InventoryCreated,
			r.Published,
			len(r.Failures),
			r.Aborted,
		)
	}
	return tw.finish()
}

func printRunItemsTable(items []domain.ItemResult) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("SKU\tSTATUS\tPHASE\tREASON\tLISTING\n")
	for i := range items {
		it := &items[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\n",
			it.SKU,
			it.State.Status,
			it.State.FailedPhase,
			truncate(it.State.Reason, 50),
			it.ListingID,
		)
	}
	return tw.finish()
}

func printInventoryItem(item *ebay.InventoryItem) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("SKU:\t%s\n", item.SKU)
	tw.writef("Title:\t%s\n", item.Product.Title)
	tw.writef("Condition:\t%s\n", item.Condition)
	tw.writef("Quantity:\t%d\n", item.Availability.ShipToLocationAvailability.Quantity)
	tw.writef("Images:\t%d attached\n", len(item.Product.ImageUrls))
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

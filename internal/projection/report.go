package projection

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aevon-lab/loan-aggregator/internal/core/aggregation"
	"github.com/aevon-lab/loan-aggregator/internal/ingestion"
	"gopkg.in/yaml.v3"
)

// Querier is the read side of an ingestion run.
type Querier interface {
	Count(network, product, month string) int64
	Total(network, product, month string) int64
	Entries() []aggregation.Entry
}

// BuildReport snapshots every bucket in key order together with run stats.
func BuildReport(q Querier, stats ingestion.Stats) Report {
	return Report{
		Records: stats.Accumulated,
		Skipped: stats.Skipped,
		Buckets: toRows(q.Entries(), BucketQuery{}),
	}
}

func toRows(entries []aggregation.Entry, filter BucketQuery) []BucketRow {
	rows := make([]BucketRow, 0, len(entries))
	for _, e := range entries {
		if filter.Network != "" && e.Network != filter.Network {
			continue
		}
		if filter.Product != "" && e.Product != filter.Product {
			continue
		}
		if filter.Month != "" && e.Month != filter.Month {
			continue
		}
		rows = append(rows, BucketRow{
			Network: e.Network,
			Product: e.Product,
			Month:   e.Month,
			Count:   e.Count,
			Total:   e.Total,
		})
	}
	return rows
}

// WriteReport renders r to w as "text", "json" or "yaml".
func WriteReport(w io.Writer, r Report, format string) error {
	switch format {
	case "", "text":
		return writeText(w, r)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

func writeText(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NETWORK\tPRODUCT\tMONTH\tCOUNT\tTOTAL")
	for _, b := range r.Buckets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", b.Network, b.Product, b.Month, b.Count, b.Total)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d record(s), %d skipped, %d bucket(s)\n", r.Records, r.Skipped, len(r.Buckets))
	return err
}

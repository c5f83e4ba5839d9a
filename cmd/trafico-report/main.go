// Command trafico-report prints the dashboard reading for a selection
// without starting the server.
//
// Usage:
//
//	trafico-report [-anio 2023] [-mes 4] [-departamento META] [-estacion PIPIRAL] [-json]
//
// Facets are applied one at a time in that order, so a value that does not
// combine with the earlier ones resets the selection the same way the page
// does.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"trafico/internal/backend"
	"trafico/internal/cli"
	"trafico/internal/config"
	"trafico/internal/core"
	"trafico/internal/narrative"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	values := make(map[core.Facet]*string, len(core.Facets))
	for _, facet := range core.Facets {
		values[facet] = flag.String(string(facet), "", "filter by "+narrative.FacetLabel(facet))
	}
	asJSON := flag.Bool("json", false, "print the dashboard as JSON")
	top := flag.Int("top", 5, "ranking rows to print")
	flag.Parse()

	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(2)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	be, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer be.Close()

	rows, err := be.Reader.ReadRows(ctx)
	if err != nil {
		logger.Error("Failed to read dataset", "error", err)
		os.Exit(1)
	}
	store := core.NewRecordStore(rows)

	ctrl := core.NewController(store, core.Limits{
		TopStations:    cfg.TopStations,
		TopDepartments: cfg.TopDepartments,
		MapDepartments: cfg.MapDepartments,
	})
	for _, facet := range core.Facets {
		if *values[facet] == "" {
			continue
		}
		if _, err := ctrl.Select(facet, *values[facet]); err != nil {
			logger.Error("Invalid filter value", "facet", facet, "error", err)
			os.Exit(2)
		}
	}
	d := ctrl.Dashboard()

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			logger.Error("Failed to encode dashboard", "error", err)
			os.Exit(1)
		}
		return
	}

	if ignored := store.Dropped(); ignored > 0 {
		fmt.Fprintf(os.Stderr, "%d filas descartadas por año inválido\n", ignored)
	}
	writeReport(os.Stdout, d, *top)
}

func writeReport(w io.Writer, d core.Dashboard, top int) {
	fmt.Fprintf(w, "Filtro: %s\n\n", describeFilter(d.Filter))
	fmt.Fprintln(w, narrative.New(d).Text())

	writeRanking(w, "Top departamentos", d.TopDepartments, d.Total, top)
	writeRanking(w, "Top estaciones", d.TopStations, d.Total, top)
}

func writeRanking(w io.Writer, title string, entries []core.Entry, total float64, top int) {
	if len(entries) == 0 {
		return
	}
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	fmt.Fprintf(w, "\n%s\n", title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i, e := range entries {
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\t\n", i+1, e.Key,
			narrative.FormatNumber(e.Sum), narrative.FormatPercent(core.Share(e.Sum, total)))
	}
	_ = tw.Flush()
}

func describeFilter(f core.Filter) string {
	if f.IsEmpty() {
		return "(Todos)"
	}
	out := ""
	for _, facet := range core.Facets {
		if v := f.Value(facet); v != "" {
			if out != "" {
				out += ", "
			}
			out += narrative.FacetLabel(facet) + "=" + v
		}
	}
	return out
}

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fwojciec/sdsget"
	"github.com/fwojciec/sdsget/fetch"
	"github.com/fwojciec/sdsget/fs"
	sdsgoquery "github.com/fwojciec/sdsget/goquery"
	"github.com/fwojciec/sdsget/resty"
	"github.com/fwojciec/sdsget/rod"
	sdsslog "github.com/fwojciec/sdsget/slog"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable debug logging"`
	DB      string `env:"SDSGET_DB" help:"Path to the download ledger database (default: ~/.sdsget/ledger.db)"`

	Aldrich      AldrichCmd      `cmd:"" help:"Download SDS documents from Sigma-Aldrich"`
	Tci          TCICmd          `cmd:"" name:"tci" help:"Download SDS documents from TCI Chemicals"`
	Thermofisher ThermoFisherCmd `cmd:"" help:"Download SDS documents from Thermo Fisher APAC"`
	History      HistoryCmd      `cmd:"" help:"List previously downloaded documents"`
}

// AldrichCmd downloads documents from the direct-URL vendor.
type AldrichCmd struct {
	ProductURL string   `name:"product-url" xor:"product" required:"" help:"Product page URL"`
	SearchTerm string   `xor:"product" help:"Product name or CAS number to search for"`
	Languages  []string `short:"l" help:"Document languages to download (default: the product URL's language)"`
	OutputDir  string   `short:"o" default:"data/sds_aldrich" help:"Directory for downloaded PDFs"`
}

// Run executes the Sigma-Aldrich acquisition.
func (c *AldrichCmd) Run(deps *Dependencies) error {
	provider := resty.NewAldrichProvider(
		sdsgoquery.NewSearchResultExtractor(resty.AldrichResultLinkID),
		resty.WithLogger(deps.Logger),
	)

	req := &fetch.Request{
		SearchTerm: c.SearchTerm,
		Languages:  c.Languages,
	}
	if c.ProductURL != "" {
		req.ProductURLs = []string{c.ProductURL}
	}
	return runAcquisition(deps, provider, req, c.OutputDir)
}

// TCICmd downloads documents from the cookie-gated form-submission
// vendor.
type TCICmd struct {
	ProductURL         string   `name:"product-url" required:"" help:"Product page URL"`
	UseExistingSession bool     `help:"Reuse the cached session bundle instead of refreshing"`
	SessionFile        string   `default:"data/tci_session.json" help:"Path to the session bundle cache"`
	Languages          []string `short:"l" help:"Document languages to download (default: all the page offers)"`
	OutputDir          string   `short:"o" default:"data/sds_tci" help:"Directory for downloaded PDFs"`
}

// Run executes the TCI acquisition.
func (c *TCICmd) Run(deps *Dependencies) error {
	refresher := rod.NewRefresher()
	defer refresher.Close()

	provider := resty.NewTCIProvider(
		fs.NewSessionStore(c.SessionFile),
		refresher,
		sdsgoquery.NewMetadataExtractor(),
		resty.WithLogger(deps.Logger),
	)
	provider.ReuseSession = c.UseExistingSession

	req := &fetch.Request{
		ProductURLs: []string{c.ProductURL},
		Languages:   c.Languages,
	}
	return runAcquisition(deps, provider, req, c.OutputDir)
}

// ThermoFisherCmd downloads documents from the JSON API vendor, by
// product URL, search term, or category.
type ThermoFisherCmd struct {
	ProductURLs []string `name:"product-url" xor:"product" help:"Product page URLs (repeatable)"`
	SearchTerm  string   `xor:"product" help:"Product name or catalog number to search for"`
	CategoryURL string   `xor:"product" help:"Category page URL for bulk retrieval"`
	Languages   []string `short:"l" default:"ko,en" help:"Document languages to download"`
	PageSize    int      `default:"30" help:"Category page size"`
	MaxProducts int      `help:"Cap on products fetched from a category (0 = no cap)"`
	OutputDir   string   `short:"o" default:"data/sds_thermofisher" help:"Directory for downloaded PDFs"`
}

// Run executes the Thermo Fisher acquisition.
func (c *ThermoFisherCmd) Run(deps *Dependencies) error {
	provider := resty.NewThermoFisherProvider(resty.WithLogger(deps.Logger))

	req := &fetch.Request{
		ProductURLs: c.ProductURLs,
		SearchTerm:  c.SearchTerm,
		Languages:   c.Languages,
		PageSize:    c.PageSize,
		MaxProducts: c.MaxProducts,
	}
	if c.CategoryURL != "" {
		catalog, err := resty.NewThermoFisherCatalog(provider, c.CategoryURL, firstOr(c.Languages, "ko"))
		if err != nil {
			return err
		}
		req.Catalog = catalog
	}
	return runAcquisition(deps, provider, req, c.OutputDir)
}

// HistoryCmd lists ledger entries.
type HistoryCmd struct {
	Provider string `help:"Only show downloads from this provider"`
	Limit    int    `default:"20" help:"Maximum number of entries to show"`
}

// Run lists previously downloaded documents, newest first.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	ledger, closeLedger, err := deps.openLedger()
	if err != nil {
		return err
	}
	defer closeLedger()

	filter := sdsget.LedgerFilter{Limit: c.Limit}
	if c.Provider != "" {
		filter.Provider = &c.Provider
	}
	entries, err := ledger.ListDownloads(deps.Ctx, filter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(deps.Stdout, "No downloads recorded.")
		return nil
	}

	w := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FETCHED\tPROVIDER\tPRODUCT\tLANG\tPATH")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.FetchedAt.Local().Format(time.DateTime), e.Provider, e.ProductCode, e.Language, e.FilePath)
	}
	return w.Flush()
}

// runAcquisition wires the shared run machinery around a provider and
// reports the summary. The summary is printed for completed work even
// when the run aborts early.
func runAcquisition(deps *Dependencies, provider sdsget.Provider, req *fetch.Request, outputDir string) error {
	runner := &fetch.Runner{
		Provider: sdsslog.NewLoggingProvider(provider, deps.Logger),
		Writer:   fs.NewWriter(outputDir),
		Limiter:  fetch.NewRateLimiter(),
		Logger:   deps.Logger,
	}

	// The ledger is advisory: failure to open it downgrades to a warning.
	if ledger, closeLedger, err := deps.openLedger(); err != nil {
		deps.Logger.Warn("download ledger unavailable", "error", err)
	} else {
		runner.Ledger = ledger
		defer closeLedger()
	}

	summary, runErr := runner.Run(deps.Ctx, req)
	if summary != nil {
		if err := printSummary(deps, summary); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if len(summary.Downloads) == 0 {
		return sdsget.Errorf(sdsget.ENOTFOUND, "no documents were downloaded")
	}
	return nil
}

func printSummary(deps *Dependencies, summary *sdsget.RunSummary) error {
	fmt.Fprintln(deps.Stdout, "=== SDS Download Summary ===")
	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}

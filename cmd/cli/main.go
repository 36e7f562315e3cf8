package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"budget-impact/internal/analysis"
	"budget-impact/internal/config"
	"budget-impact/internal/data"
	"budget-impact/internal/logging"
	"budget-impact/internal/model"
	"budget-impact/internal/projection"
	"budget-impact/internal/report"
	"budget-impact/internal/sensitivity"

	"github.com/rs/zerolog/log"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch os.Args[1] {
	case "project":
		cmdProject(os.Args[2:])
	case "dsa":
		cmdDSA(ctx, os.Args[2:])
	case "psa":
		cmdPSA(ctx, os.Args[2:])
	case "report":
		cmdReport(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli project --config examples/cases/coexistence.yaml --out results/projection.csv [--save-case results/case.json]")
	fmt.Println("  cli dsa     --config examples/cases/switch.yaml [--order tornado]")
	fmt.Println("  cli psa     --config examples/cases/coexistence.yaml [--trials 2000 --seed 1 --out results/psa.xlsx]")
	fmt.Println("  cli report  --config examples/cases/coexistence.yaml --out results/report.html [--psa-trials 500]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - --config accepts a YAML case file or its JSON equivalent")
	fmt.Println("  - --model overrides the case's model label (model_1..model_4)")
	fmt.Println("  - report format follows the --out extension: .xlsx, .html or .md")
}

type caseFlags struct {
	cfgPath *string
	model   *string
	debug   *bool
}

func addCaseFlags(fs *flag.FlagSet) caseFlags {
	return caseFlags{
		cfgPath: fs.String("config", "", "Path to YAML or JSON case file"),
		model:   fs.String("model", "", "Optional: model label override"),
		debug:   fs.Bool("debug", false, "Verbose logging"),
	}
}

// load sets up logging and returns the validated case and its model label.
func (f caseFlags) load() (*config.Config, model.ModelID) {
	logging.Setup(*f.debug, true)
	if *f.cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}

	var cfg *config.Config
	var err error
	if strings.EqualFold(filepath.Ext(*f.cfgPath), ".json") {
		cfg, err = data.LoadCaseJSON(*f.cfgPath)
	} else {
		cfg, err = config.Load(*f.cfgPath)
	}
	if err != nil {
		log.Fatal().Err(err).Str("config", *f.cfgPath).Msg("Could not load case")
	}

	id, err := cfg.ModelID()
	if *f.model != "" {
		id, err = model.ParseModelID(*f.model)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid model")
	}
	return cfg, id
}

func cmdProject(args []string) {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	cf := addCaseFlags(fs)
	outPath := fs.String("out", "results/projection.csv", "Output CSV path")
	saveCase := fs.String("save-case", "", "Optional: write the resolved case (catalog merged) as JSON")
	_ = fs.Parse(args)

	cfg, id := cf.load()
	if *saveCase != "" {
		if err := os.MkdirAll(filepath.Dir(*saveCase), 0o755); err != nil {
			log.Fatal().Err(err).Msg("Could not create output directory")
		}
		if err := data.SaveCaseJSON(cfg, *saveCase); err != nil {
			log.Fatal().Err(err).Msg("Could not write case")
		}
		fmt.Printf("Wrote resolved case to %s\n", *saveCase)
	}
	res, err := projection.New().Run(id, cfg.ToInputs())
	if err != nil {
		log.Fatal().Err(err).Msg("Projection failed")
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("Could not create output directory")
	}
	if err := projection.WriteTableCSV(*outPath, res.Table); err != nil {
		log.Fatal().Err(err).Msg("Could not write CSV")
	}

	printTable(res)
	fmt.Printf("\nWrote %d rows to %s\n", len(res.Table), *outPath)
}

func cmdDSA(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("dsa", flag.ExitOnError)
	cf := addCaseFlags(fs)
	order := fs.String("order", "", "Row order: ascending or tornado (default: the case's dsa.order)")
	staffRange := fs.Float64("staff-cost-range", 0, "Optional: add ±fraction staff cost ranges for every strategy")
	_ = fs.Parse(args)

	cfg, id := cf.load()
	if *order != "" {
		cfg.DSA.Order = *order
	}
	if *staffRange > 0 {
		cfg.DSA.StaffCostRange = *staffRange
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid DSA settings")
	}

	in := cfg.ToInputs()
	rows, err := sensitivity.RunDSA(ctx, projection.New(), id, in, cfg.DSA.Perturbations(in))
	if err != nil {
		log.Fatal().Err(err).Msg("DSA failed")
	}
	if cfg.DSA.Tornado() {
		rows = analysis.TornadoOrder(rows)
	}
	printDSA(rows)
}

func cmdPSA(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("psa", flag.ExitOnError)
	cf := addCaseFlags(fs)
	trials := fs.Int("trials", 0, "Optional: number of trials (default: the case's psa.trials)")
	seed := fs.Uint64("seed", 0, "Optional: RNG seed (0 = the case's seed, or random)")
	workers := fs.Int("workers", 0, "Optional: parallel workers (0 = NumCPU)")
	outPath := fs.String("out", "", "Optional: write trials to an XLSX workbook")
	_ = fs.Parse(args)

	cfg, id := cf.load()
	in := cfg.ToInputs()
	opts := cfg.PSA.Options(in)
	if *trials > 0 {
		opts.Trials = *trials
	}
	if *seed != 0 {
		opts.Seed = *seed
	}
	if *workers > 0 {
		opts.Workers = *workers
	}

	res, err := sensitivity.RunPSA(ctx, projection.New(), id, in, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("PSA failed")
	}
	summary, err := analysis.SummarizePSA(res.Trials)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not summarize trials")
	}
	printPSA(res.Seed, summary)

	if *outPath != "" {
		base, err := projection.New().Run(id, in)
		if err != nil {
			log.Fatal().Err(err).Msg("Projection failed")
		}
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			log.Fatal().Err(err).Msg("Could not create output directory")
		}
		if err := report.SaveWorkbook(*outPath, base, nil, res.Trials); err != nil {
			log.Fatal().Err(err).Msg("Could not write workbook")
		}
		fmt.Printf("\nWrote %d trials to %s\n", len(res.Trials), *outPath)
	}
}

func cmdReport(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	cf := addCaseFlags(fs)
	outPath := fs.String("out", "results/report.html", "Output path (.xlsx, .html or .md)")
	title := fs.String("title", "", "Optional: report title (default: case name)")
	summaryText := fs.String("summary", "", "Optional: executive summary paragraph")
	psaTrials := fs.Int("psa-trials", 0, "Optional: include a PSA with this many trials (0 = skip)")
	_ = fs.Parse(args)

	cfg, id := cf.load()
	in := cfg.ToInputs()
	engine := projection.New()

	res, err := engine.Run(id, in)
	if err != nil {
		log.Fatal().Err(err).Msg("Projection failed")
	}

	var dsaRows []sensitivity.DSARow
	if perts := cfg.DSA.Perturbations(in); len(perts) > 0 {
		dsaRows, err = sensitivity.RunDSA(ctx, engine, id, in, perts)
		if err != nil {
			log.Fatal().Err(err).Msg("DSA failed")
		}
		if cfg.DSA.Tornado() {
			dsaRows = analysis.TornadoOrder(dsaRows)
		}
	}

	var trials []sensitivity.Trial
	var psaSummary *analysis.PSASummary
	if *psaTrials > 0 {
		opts := cfg.PSA.Options(in)
		opts.Trials = *psaTrials
		psa, err := sensitivity.RunPSA(ctx, engine, id, in, opts)
		if err != nil {
			log.Fatal().Err(err).Msg("PSA failed")
		}
		s, err := analysis.SummarizePSA(psa.Trials)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not summarize trials")
		}
		trials, psaSummary = psa.Trials, &s
	}

	meta := report.Meta{Title: *title, Summary: *summaryText, DSA: dsaRows, PSA: psaSummary}
	if meta.Title == "" {
		meta.Title = cfg.Name
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("Could not create output directory")
	}
	switch ext := strings.ToLower(filepath.Ext(*outPath)); ext {
	case ".xlsx":
		err = report.SaveWorkbook(*outPath, res, dsaRows, trials)
	case ".html":
		err = os.WriteFile(*outPath, report.HTML(meta, res), 0o644)
	case ".md":
		err = os.WriteFile(*outPath, []byte(report.Markdown(meta, res)), 0o644)
	default:
		err = fmt.Errorf("unsupported report extension %q", ext)
	}
	if err != nil {
		log.Fatal().Err(err).Str("out", *outPath).Msg("Could not write report")
	}
	fmt.Printf("Wrote report to %s\n", *outPath)
}

func printTable(res *projection.Result) {
	fmt.Printf("%s (%s)\n\n", res.CaseName, res.ModelID.Label())
	fmt.Printf("%-6s %-10s %-14s %-14s %-16s %-16s %-14s %-16s\n",
		"period", "population", "cost/pt cur", "cost/pt new", "aggregate cur", "aggregate new", "impact", "balance")
	for _, r := range res.Table {
		fmt.Printf("%-6d %-10.0f %-14.2f %-14.2f %-16.2f %-16.2f %-14.2f %-16.2f\n",
			r.Period, r.Population, r.CostPerPatientCurrent, r.CostPerPatientNew,
			r.AggregateCurrent, r.AggregateNew, r.Impact, r.Balance)
	}
	fmt.Printf("\nTotal impact=%s Final balance=%s\n", report.Money(res.TotalImpact), report.Money(res.FinalBalance))
}

func printDSA(rows []sensitivity.DSARow) {
	fmt.Printf("%-40s %-14s %-14s %-14s %-14s\n", "parameter", "base", "at min", "at max", "delta")
	for _, r := range rows {
		fmt.Printf("%-40s %-14.2f %-14.2f %-14.2f %-14.2f\n", r.Parameter, r.Base, r.ImpactAtMin, r.ImpactAtMax, r.Delta)
	}
}

func printPSA(seed uint64, s analysis.PSASummary) {
	fmt.Printf("trials=%d seed=%d\n\n", s.Trials, seed)
	fmt.Printf("%-14s %-14s %-14s %-14s %-14s %-14s\n", "output", "mean", "std", "p2.5", "p50", "p97.5")
	for _, d := range []struct {
		name string
		dist analysis.Distribution
	}{
		{"total impact", s.TotalImpact},
		{"final balance", s.FinalBalance},
	} {
		fmt.Printf("%-14s %-14.2f %-14.2f %-14.2f %-14.2f %-14.2f\n",
			d.name, d.dist.Mean, d.dist.StdDev, d.dist.P025, d.dist.P50, d.dist.P975)
	}
	fmt.Printf("\nP(impact > 0)=%.3f\n", s.ProbPositiveImpact)
}

package main

import (
	"context"
	"flag"
	"fmt"

	"budget-impact/internal/analysis"
	"budget-impact/internal/config"
	"budget-impact/internal/data"
	"budget-impact/internal/logging"
	"budget-impact/internal/projection"
	"budget-impact/internal/report"
	"budget-impact/internal/sensitivity"

	"github.com/rs/zerolog/log"
)

// Demo:
// - Build the built-in coexistence case (3 strategies, 2 cohorts, 5 years)
// - Project it, then run a staff cost DSA and a short PSA
// - Print how the pieces fit together
func main() {
	trials := flag.Int("trials", 500, "Number of PSA trials")
	seed := flag.Uint64("seed", 1, "PSA seed")
	outCSV := flag.String("out", "", "Optional path to write the projection CSV (e.g. results/demo.csv)")
	flag.Parse()

	logging.Setup(false, true)

	in := data.ExampleInputs()
	engine := projection.New()

	res, err := engine.Run(data.ExampleModel, in)
	if err != nil {
		log.Fatal().Err(err).Msg("Projection failed")
	}

	fmt.Printf("Case=%s  Model=%s  Horizon=%d years\n\n", in.CaseName, res.ModelID.Label(), in.Horizon)
	for _, r := range res.Table {
		fmt.Printf("year %d  N=%6.0f  cost/pt %8.2f → %8.2f  impact=%12s  balance=%14s\n",
			r.Period, r.Population, r.CostPerPatientCurrent, r.CostPerPatientNew,
			report.Money(r.Impact), report.Money(r.Balance))
	}
	fmt.Printf("\nTotal impact=%s  Final balance=%s\n", report.Money(res.TotalImpact), report.Money(res.FinalBalance))

	// ±10% on each strategy's staff cost, largest swing first.
	dsa := config.DSAConfig{StaffCostRange: 0.1}
	rows, err := sensitivity.RunDSA(context.Background(), engine, data.ExampleModel, in, dsa.Perturbations(in))
	if err != nil {
		log.Fatal().Err(err).Msg("DSA failed")
	}
	fmt.Println("\nStaff cost sensitivity (tornado order):")
	for _, r := range analysis.TornadoOrder(rows) {
		fmt.Printf("  %-36s %12s .. %12s  delta=%s\n", r.Parameter, report.Money(r.ImpactAtMin), report.Money(r.ImpactAtMax), report.Money(r.Delta))
	}

	psaSection := config.PSAConfig{
		Trials:               *trials,
		Seed:                 *seed,
		GammaShape:           50,
		DefaultConcentration: 10,
		RelativeRisk:         &config.RelativeRiskConfig{Sigma: 0.1, Target: "costs"},
	}
	psa, err := sensitivity.RunPSA(context.Background(), engine, data.ExampleModel, in, psaSection.Options(in))
	if err != nil {
		log.Fatal().Err(err).Msg("PSA failed")
	}
	s, err := analysis.SummarizePSA(psa.Trials)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not summarize trials")
	}
	fmt.Printf("\nPSA trials=%d seed=%d\n", s.Trials, psa.Seed)
	fmt.Printf("  total impact  mean=%s  95%% interval [%s, %s]\n",
		report.Money(s.TotalImpact.Mean), report.Money(s.TotalImpact.P025), report.Money(s.TotalImpact.P975))
	fmt.Printf("  P(impact > 0)=%.3f\n", s.ProbPositiveImpact)

	if *outCSV != "" {
		if err := projection.WriteTableCSV(*outCSV, res.Table); err != nil {
			log.Fatal().Err(err).Msg("Could not write CSV")
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}
}

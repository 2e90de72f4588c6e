package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"costwise/adapters/report"
	"costwise/adapters/rng"
	"costwise/adapters/storage"
	"costwise/adapters/tabular"
	"costwise/adapters/tree"
	"costwise/api"
	"costwise/app"
	"costwise/domain/costmodel"
	"costwise/domain/dataset"
	"costwise/domain/decision"
	"costwise/domain/run"
	"costwise/internal"
	"costwise/internal/config"
	"costwise/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

func main() {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "costwise",
		Short: "Cost-sensitive targeting: build loss matrices, search intervention budgets, audit operating points",
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newSearchCmd(),
		newEvaluateCmd(),
		newSweepCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the JSON API with the configured run ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := storage.Migrate(cmd.Context(), db); err != nil {
				return err
			}

			streams := rng.New()
			srv, err := api.NewServer(api.Config{
				Port:          cfg.Server.Port,
				TrainFraction: cfg.Search.TrainFraction,
				Seed:          cfg.Search.Seed,
				MaxIterations: cfg.Search.MaxIterations,
			}, api.Deps{
				Loader:   tabular.NewLoader(),
				Runs:     storage.NewRunRepository(db),
				RNG:      streams,
				Trainers: trainers(streams, cfg.Search.Seed),
				Logger:   internal.DefaultLogger,
			})
			if err != nil {
				return err
			}
			return srv.Start()
		},
	}
}

func newSearchCmd() *cobra.Command {
	var (
		outcome     string
		trainerName string
		econ        economicsFlags
		targetRate  float64
		tolerance   float64
		maxIter     int
		maxDepth    int
		minLeaf     int
		rounds      int
		asMarkdown  bool
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "search [dataset-file]",
		Short: "Search the FN/FP penalty ratio until the intervention rate hits a budget",
		Long: `Search retrains a cost-sensitive classifier under progressively adjusted
loss matrices until the flagged fraction of the training cohort lands within
tolerance of the target rate, then reports out-of-sample numbers.

Example: costwise search cohort.csv --outcome readmitted \
  --intervention-cost 1200 --outcome-cost 35000 --efficacy 0.75 \
  --target-rate 0.05 --tolerance 0.005`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			split, streams, err := loadSplit(cmd.Context(), cfg, args[0], outcome)
			if err != nil {
				return err
			}
			trainer, err := pickTrainer(trainerName, streams, cfg.Search.Seed)
			if err != nil {
				return err
			}
			if maxIter <= 0 {
				maxIter = cfg.Search.MaxIterations
			}

			search := app.NewSearchService(nil, internal.DefaultLogger)
			result, err := search.Search(cmd.Context(), split, trainer, app.SearchConfig{
				Economics:     econ.toEconomics(),
				TargetRate:    targetRate,
				Tolerance:     tolerance,
				MaxIterations: maxIter,
				Complexity: ports.Complexity{
					MaxDepth:    maxDepth,
					MinLeafSize: minLeaf,
					Rounds:      rounds,
				},
			})
			if err != nil {
				return err
			}

			rec := run.New(args[0], targetRate, tolerance)
			rec.Economics = econ.toEconomics()
			rec.CostModel = result.CostModel
			rec.Iterations = result.Iterations
			rec.Confusion = result.Confusion
			rec.Report = result.Report

			if save {
				if err := persistRun(cmd.Context(), cfg, rec); err != nil {
					return err
				}
				fmt.Printf("saved run %s\n", rec.ID.String())
			}

			if asMarkdown {
				fmt.Println(report.NewRenderer().Markdown(rec))
				return nil
			}
			return printJSON(rec)
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "", "Name of the binary outcome column (required)")
	cmd.Flags().StringVar(&trainerName, "trainer", "tree", "Trainer to use: tree or bagged")
	econ.register(cmd)
	cmd.Flags().Float64Var(&targetRate, "target-rate", 0.05, "Target fraction of the cohort to flag")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0.005, "Acceptable deviation from the target rate")
	cmd.Flags().IntVar(&maxIter, "max-iterations", 0, "Retrain budget for the search (0 = configured default)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Tree depth limit (0 = trainer default)")
	cmd.Flags().IntVar(&minLeaf, "min-leaf", 0, "Minimum examples per leaf (0 = trainer default)")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Bootstrap rounds for the bagged trainer (0 = default)")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "Print a markdown report instead of JSON")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the run to the configured ledger")
	cmd.MarkFlagRequired("outcome")

	return cmd
}

func newEvaluateCmd() *cobra.Command {
	var (
		outcome     string
		trainerName string
		econ        economicsFlags
		maxDepth    int
		minLeaf     int
		rounds      int
	)

	cmd := &cobra.Command{
		Use:   "evaluate [dataset-file]",
		Short: "Train once under the derived loss matrix and report out-of-sample costs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			split, streams, err := loadSplit(cmd.Context(), cfg, args[0], outcome)
			if err != nil {
				return err
			}
			trainer, err := pickTrainer(trainerName, streams, cfg.Search.Seed)
			if err != nil {
				return err
			}

			m, err := econ.toEconomics().Build()
			if err != nil {
				return err
			}
			clf, err := trainer.Train(cmd.Context(), split.Train.Examples, m, ports.Complexity{
				MaxDepth:    maxDepth,
				MinLeafSize: minLeaf,
				Rounds:      rounds,
			})
			if err != nil {
				return err
			}

			eval := app.NewEvaluationService(internal.DefaultLogger)
			cm, err := eval.Evaluate(cmd.Context(), clf, split.Test.Examples)
			if err != nil {
				return err
			}

			return printJSON(struct {
				CostModel costmodel.CostModel      `json:"cost_model"`
				Confusion decision.ConfusionMatrix `json:"confusion"`
				Report    decision.Report          `json:"report"`
			}{m, cm, decision.NewReport(cm, econ.toEconomics())})
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "", "Name of the binary outcome column (required)")
	cmd.Flags().StringVar(&trainerName, "trainer", "tree", "Trainer to use: tree or bagged")
	econ.register(cmd)
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Tree depth limit (0 = trainer default)")
	cmd.Flags().IntVar(&minLeaf, "min-leaf", 0, "Minimum examples per leaf (0 = trainer default)")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Bootstrap rounds for the bagged trainer (0 = default)")
	cmd.MarkFlagRequired("outcome")

	return cmd
}

func newSweepCmd() *cobra.Command {
	var (
		outcome           string
		trainerName       string
		outcomeCost       float64
		interventionCosts []float64
		efficacyRates     []float64
		maxDepth          int
		minLeaf           int
	)

	cmd := &cobra.Command{
		Use:   "sweep [dataset-file]",
		Short: "Evaluate a grid of cost assumptions to gauge sensitivity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			split, streams, err := loadSplit(cmd.Context(), cfg, args[0], outcome)
			if err != nil {
				return err
			}
			trainer, err := pickTrainer(trainerName, streams, cfg.Search.Seed)
			if err != nil {
				return err
			}

			sweep := app.NewSweepService(nil, internal.DefaultLogger)
			result, err := sweep.Sweep(cmd.Context(), split, trainer, app.SweepConfig{
				OutcomeCost:       outcomeCost,
				InterventionCosts: interventionCosts,
				EfficacyRates:     efficacyRates,
				Complexity: ports.Complexity{
					MaxDepth:    maxDepth,
					MinLeafSize: minLeaf,
				},
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&outcome, "outcome", "", "Name of the binary outcome column (required)")
	cmd.Flags().StringVar(&trainerName, "trainer", "tree", "Trainer to use: tree or bagged")
	cmd.Flags().Float64Var(&outcomeCost, "outcome-cost", 0, "Cost of one realized adverse outcome")
	cmd.Flags().Float64SliceVar(&interventionCosts, "intervention-costs", nil, "Intervention costs to sweep")
	cmd.Flags().Float64SliceVar(&efficacyRates, "efficacy-rates", nil, "Efficacy rates to sweep")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Tree depth limit (0 = trainer default)")
	cmd.Flags().IntVar(&minLeaf, "min-leaf", 0, "Minimum examples per leaf (0 = trainer default)")
	cmd.MarkFlagRequired("outcome")
	cmd.MarkFlagRequired("outcome-cost")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("costwise", version)
		},
	}
}

type economicsFlags struct {
	interventionCost float64
	outcomeCost      float64
	efficacyRate     float64
}

func (f *economicsFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.interventionCost, "intervention-cost", 0, "Cost of one intervention")
	cmd.Flags().Float64Var(&f.outcomeCost, "outcome-cost", 0, "Cost of one realized adverse outcome")
	cmd.Flags().Float64Var(&f.efficacyRate, "efficacy", 0, "Fraction of flagged outcomes the intervention prevents")
	cmd.MarkFlagRequired("intervention-cost")
	cmd.MarkFlagRequired("outcome-cost")
	cmd.MarkFlagRequired("efficacy")
}

func (f *economicsFlags) toEconomics() costmodel.Economics {
	return costmodel.Economics{
		InterventionCost: f.interventionCost,
		OutcomeCost:      f.outcomeCost,
		EfficacyRate:     f.efficacyRate,
	}
}

func trainers(streams ports.RNG, seed int64) map[string]ports.Trainer {
	return map[string]ports.Trainer{
		"tree":   tree.NewTrainer(),
		"bagged": tree.NewBaggingTrainer(streams, seed),
	}
}

func pickTrainer(name string, streams ports.RNG, seed int64) (ports.Trainer, error) {
	t, ok := trainers(streams, seed)[name]
	if !ok {
		return nil, fmt.Errorf("unknown trainer %q (want tree or bagged)", name)
	}
	return t, nil
}

func loadSplit(ctx context.Context, cfg *config.Config, path, outcome string) (dataset.Split, ports.RNG, error) {
	streams := rng.New()

	ds, err := tabular.NewLoader().Load(ctx, path, outcome)
	if err != nil {
		return dataset.Split{}, nil, err
	}
	r, err := streams.SeededStream(ctx, "partition/"+path, cfg.Search.Seed)
	if err != nil {
		return dataset.Split{}, nil, err
	}
	split, err := ds.Partition(cfg.Search.TrainFraction, r)
	if err != nil {
		return dataset.Split{}, nil, err
	}
	return split, streams, nil
}

func persistRun(ctx context.Context, cfg *config.Config, rec *run.Run) error {
	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}
	return storage.NewRunRepository(db).Create(ctx, rec)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"

	"github.com/moment-systems/gomoment/gomoment"
	"github.com/moment-systems/gomoment/libmoment"
	"github.com/moment-systems/gomoment/libmoment/catalog"
	"github.com/moment-systems/gomoment/solve"
)

type cmdOpts struct {
	scenarioPath string
	catalogPath  string
	scenario     Scenario
	rates        bool
}

func rootCmd() *cobra.Command {
	opts := &cmdOpts{}

	root := &cobra.Command{
		Use:           "gomoment",
		Short:         "derive and solve moment-closure equations for epidemics on contact networks",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.scenarioPath, "scenario", "", "YAML scenario file (overrides the flags below)")
	pf.StringVar(&opts.catalogPath, "catalog", "", "tuple catalog db path (empty runs without a catalog)")
	pf.StringVar(&opts.scenario.Graph.Expr, "graph", "", "contact network as an edge-run expression, e.g. \"0-1-2,2-0\"")
	pf.StringVar(&opts.scenario.Graph.Kind, "kind", "", "generated contact network: edge|triangle|toast|lollipop|bowtie|path|cycle|complete|star|wheel|random")
	pf.IntVar(&opts.scenario.Graph.Size, "size", 3, "location count for generated networks")
	pf.Float64Var(&opts.scenario.Graph.P, "p", 0.5, "edge probability for random networks")
	pf.Int64Var(&opts.scenario.Graph.Seed, "seed", 1, "seed for random networks")
	pf.StringVar(&opts.scenario.Model.Preset, "model", "sir", "model preset: sir|sis|sirp")
	pf.Float64Var(&opts.scenario.Model.Beta, "beta", 0.6, "transmission rate")
	pf.Float64Var(&opts.scenario.Model.Gamma, "gamma", 0.1, "recovery rate")
	pf.Float64Var(&opts.scenario.Model.Zeta, "zeta", 0.05, "protection rate (sirp)")
	pf.Float64Var(&opts.scenario.Model.Alpha, "alpha", 0.02, "waning rate (sirp)")
	pf.StringVar(&opts.scenario.Model.Transitions, "transitions", "", "transition overrides, e.g. \"S-I:0.6, I-R:0.1\"")
	pf.BoolVar(&opts.scenario.Closures, "closures", false, "admit all-susceptible accounting tuples")
	pf.IntVar(&opts.scenario.MaxOrder, "max-order", 0, "largest tuple size (0 means the graph order)")

	root.AddCommand(tuplesCmd(opts))
	root.AddCommand(equationsCmd(opts))
	root.AddCommand(solveCmd(opts))
	return root
}

func (opts *cmdOpts) load() (*Scenario, *catalog.Catalog, error) {
	sc := &opts.scenario
	if opts.scenarioPath != "" {
		loaded, err := LoadScenario(opts.scenarioPath)
		if err != nil {
			return nil, nil, err
		}
		sc = loaded
	}

	var cat *catalog.Catalog
	if opts.catalogPath != "" {
		var err error
		cat, err = catalog.OpenCatalog(gomoment.CatalogOpts{DbPathName: opts.catalogPath})
		if err != nil {
			return nil, nil, err
		}
	}
	return sc, cat, nil
}

func tuplesCmd(opts *cmdOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "tuples",
		Short: "enumerate the tuple family the model requires",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, cat, err := opts.load()
			if err != nil {
				return err
			}
			if cat != nil {
				defer cat.Close()
			}

			rt, err := sc.BuildTuples(cat)
			if err != nil {
				return err
			}
			klog.Infof("%s: %d tuples on %d locations", rt.Graph().Name(), rt.Len(), rt.Graph().NumVertices())

			fmt.Println(rt.String())
			for size, count := range rt.Counts() {
				if count > 0 {
					fmt.Printf("%d of size %d\n", count, size+1)
				}
			}
			return nil
		},
	}
}

func equationsCmd(opts *cmdOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equations",
		Short: "print the moment equations symbolically",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, cat, err := opts.load()
			if err != nil {
				return err
			}
			if cat != nil {
				defer cat.Close()
			}

			rt, err := sc.BuildTuples(cat)
			if err != nil {
				return err
			}
			sys, err := libmoment.NewODESystem(rt)
			if err != nil {
				return err
			}
			fmt.Println(sys.Equations(gomoment.PrintOpts{Counts: true, Rates: opts.rates}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.rates, "rates", false, "print numeric rates instead of symbols")
	return cmd
}

func solveCmd(opts *cmdOpts) *cobra.Command {
	var (
		tEnd    float64
		step    float64
		infect  []int
		pInfect float64
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "integrate the system and export the probabilities as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, cat, err := opts.load()
			if err != nil {
				return err
			}
			if cat != nil {
				defer cat.Close()
			}

			if opts.scenarioPath == "" {
				sc.Solve.End = tEnd
				sc.Solve.Step = step
				sc.Solve.Infect = infect
				sc.Solve.PInfect = pInfect
				sc.Output = outPath
			}
			if sc.Solve.Step <= 0 {
				sc.Solve.Step = 0.001
			}

			rt, err := sc.BuildTuples(cat)
			if err != nil {
				return err
			}
			sys, err := libmoment.NewODESystem(rt)
			if err != nil {
				return err
			}

			y0, err := libmoment.InitialState(sys.IndexMap(),
				sc.InitialProbabilities(rt.Graph().NumVertices()))
			if err != nil {
				return err
			}

			res, err := solve.RK4(sys, y0, solve.Config{End: sc.Solve.End, Step: sc.Solve.Step})
			if err != nil {
				return err
			}
			res.Labels = sys.IndexMap().Labels()
			klog.Infof("integrated %d equations over %d steps", sys.Dimension(), len(res.Times)-1)

			out := os.Stdout
			if sc.Output != "" {
				out, err = os.Create(sc.Output)
				if err != nil {
					return err
				}
				defer out.Close()
			}
			return res.WriteCSV(out)
		},
	}
	cmd.Flags().Float64Var(&tEnd, "t-max", 5, "integration end time")
	cmd.Flags().Float64Var(&step, "step", 0.001, "integration step")
	cmd.Flags().IntSliceVar(&infect, "infect", []int{0}, "initially infected locations")
	cmd.Flags().Float64Var(&pInfect, "p-infect", 1, "infection probability at seeded locations")
	cmd.Flags().StringVar(&outPath, "out", "", "CSV output path (default stdout)")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"energy-insights/internal/calc"
	"energy-insights/internal/dashboard"
)

type selectionFlags struct {
	mode       string
	machine    string
	day        string
	department string
	metric     string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "", "KWH/tonne projection: combined, IF1 or IF2")
	cmd.Flags().StringVar(&f.machine, "machine", "", "Machine filter for the KWH/part trend")
	cmd.Flags().StringVar(&f.day, "day", "", "Day of the daily consumption slice (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.department, "department", "", "Department of the daily consumption slice")
	cmd.Flags().StringVar(&f.metric, "metric", "", "Daily slice metric: consumption or F_F")
}

// selection converts the flags into overrides. Unset flags stay empty so the
// configured selection is kept.
func (f *selectionFlags) selection() (dashboard.Selection, error) {
	sel := dashboard.Selection{
		Machine:    f.machine,
		Day:        f.day,
		Department: f.department,
	}
	if f.mode != "" {
		mode, err := dashboard.ParseAvgMode(f.mode)
		if err != nil {
			return sel, err
		}
		sel.AvgMode = mode
	}
	if f.metric != "" {
		metric, err := calc.ParseMetric(f.metric)
		if err != nil {
			return sel, err
		}
		sel.Metric = metric
	}
	return sel, nil
}

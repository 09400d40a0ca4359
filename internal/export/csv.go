package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"lobster/internal/session"
)

// PrintFeaturesToCSV steps sess from start to end in interval
// increments, evaluating reg at each step and writing one CSV row per
// step (time column first, then one column per registered feature, in
// registration order), mirroring lobster_sim.py's
// print_features_to_csv. The stdlib encoding/csv writer is used
// because no CSV-writing library appears anywhere in the example
// pack (see DESIGN.md).
func PrintFeaturesToCSV(sess *session.Session, w io.Writer, start, end, interval float64, reg *FeatureRegistry) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{"time"}, reg.Names()...)
	if err := cw.Write(header); err != nil {
		return err
	}

	if err := sess.SimulateUntil(start); err != nil {
		return fmt.Errorf("export: simulating to start %v: %w", start, err)
	}

	for t := start; t <= end; t += interval {
		if err := sess.SimulateFromCurrentUntil(t); err != nil {
			return fmt.Errorf("export: simulating to %v: %w", t, err)
		}
		row := make([]string, 0, len(header))
		row = append(row, fmt.Sprintf("%f", t))
		for _, v := range reg.Eval(sess.Book()) {
			row = append(row, fmt.Sprintf("%f", v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

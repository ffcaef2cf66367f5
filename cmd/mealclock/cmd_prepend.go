package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/friendsincode/mealclock/internal/block"
	"github.com/friendsincode/mealclock/internal/planner"
	"github.com/friendsincode/mealclock/internal/timeofday"
)

var (
	prependStart    string
	prependEnd      string
	prependOccupant string
	prependFood     string
)

var prependCmd = &cobra.Command{
	Use:   "prepend",
	Short: "Fit a food at the start of a meal block",
	Long: `Place a catalog food at the start of a block, pushing any current
occupant back. Prints the resulting blocks, or fails when the block is too
short to hold both.`,
	Example: `  mealclock prepend --start 09:00 --end 10:00 --occupant pancakes --food oats`,
	RunE:    runPrepend,
}

func init() {
	prependCmd.Flags().StringVar(&prependStart, "start", "", "Block start time, HH:MM (required)")
	prependCmd.Flags().StringVar(&prependEnd, "end", "", "Block end time, HH:MM (required)")
	prependCmd.Flags().StringVar(&prependOccupant, "occupant", "", "Food currently in the block (ID or short code)")
	prependCmd.Flags().StringVar(&prependFood, "food", "", "Food to place first (ID or short code) (required)")
	prependCmd.MarkFlagRequired("start")
	prependCmd.MarkFlagRequired("end")
	prependCmd.MarkFlagRequired("food")

	rootCmd.AddCommand(prependCmd)
}

func runPrepend(cmd *cobra.Command, args []string) error {
	start, err := timeofday.Parse(prependStart)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	end, err := timeofday.Parse(prependEnd)
	if err != nil {
		return fmt.Errorf("--end: %w", err)
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	svc := planner.NewService(planner.CatalogResolver{Catalog: ws.catalog}, logger)
	outcome, err := svc.Prepend(cmd.Context(), planner.Request{
		Start:       start,
		End:         end,
		OccupantRef: prependOccupant,
		FoodRef:     prependFood,
	})
	if err != nil {
		return err
	}

	return printOutcome(cmd.OutOrStdout(), outcome)
}

// printOutcome writes the resulting blocks, one per line. A failure is
// returned as an error so the command exits non-zero.
func printOutcome(w io.Writer, outcome block.Outcome) error {
	if failure, ok := outcome.(block.Failure); ok {
		return failure.Err()
	}

	fmt.Fprintln(w, outcome.Kind())
	for _, b := range block.Blocks(outcome) {
		if b.IsEmpty() {
			continue
		}
		fmt.Fprintf(w, "  %s\n", b)
	}
	return nil
}

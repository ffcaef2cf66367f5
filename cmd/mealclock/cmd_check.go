package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/mealclock/internal/integrity"
	"github.com/friendsincode/mealclock/internal/models"
)

var checkRepair bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Scan the catalog and API keys for stored problems",
	Long: `Report foods that no longer decode, recipes with missing ingredients or
ingredient cycles, and expired API keys that were never revoked. Exits
non-zero while findings remain.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkRepair, "repair", false, "Repair findings that can be fixed automatically")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	ctx := cmd.Context()
	svc := integrity.NewService(ws.db, logger)
	out := cmd.OutOrStdout()

	report, err := svc.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	remaining := 0
	for _, f := range report.Findings {
		fmt.Fprintf(out, "%-6s %-20s %s  %s\n", f.Severity, f.Type, f.ResourceID, f.Summary)
		if !checkRepair || !f.Repairable {
			remaining++
			continue
		}

		res, err := svc.Repair(ctx, integrity.RepairInput{Type: f.Type, ResourceID: f.ResourceID})
		if err != nil {
			return fmt.Errorf("repair %s: %w", f.ID, err)
		}
		fmt.Fprintf(out, "       repaired: %s\n", res.Message)
		if err := ws.audit.Log(ctx, &models.AuditLog{
			Timestamp:    time.Now(),
			Actor:        cliActor,
			Action:       models.AuditActionIntegrityRepair,
			ResourceType: "integrity_finding",
			ResourceID:   f.ResourceID,
			Details: map[string]any{
				"type":    string(f.Type),
				"changed": res.Changed,
				"message": res.Message,
			},
		}); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log")
		}
	}

	if remaining > 0 {
		return fmt.Errorf("%d integrity findings", remaining)
	}
	fmt.Fprintln(out, "no findings")
	return nil
}

package tokenflight

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/The-Last-Byte-Bar/Token-Flight/internal/config"
	"github.com/The-Last-Byte-Bar/Token-Flight/internal/service"
)

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Run a single distribution and exit",
	Long: `Resolve the blocks mined since the pool's last outgoing transaction, fetch
miner participation for them, and compute an exact payout list.

Examples:
  # Preview the payout plan without recording it
  tokenflight distribute --dry-run

  # Distribute a fixed amount instead of the wallet balance
  tokenflight distribute --amount 1.211`,
	RunE: runDistribute,
}

func init() {
	rootCmd.AddCommand(distributeCmd)

	distributeCmd.Flags().Bool("dry-run", false, "compute the distribution without recording it as executed")
	distributeCmd.Flags().String("amount", "", "distributable amount (defaults to the wallet balance minus reserved fees)")
}

func runDistribute(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	amountFlag, _ := cmd.Flags().GetString("amount")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := setupLogger(cfg.LogLevel)

	opts := service.Options{DryRun: dryRun}
	if amountFlag != "" {
		amount, err := decimal.NewFromString(amountFlag)
		if err != nil {
			return fmt.Errorf("invalid --amount %q: %w", amountFlag, err)
		}
		opts.Amount = amount
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := svc.Run(ctx, opts)
	if err != nil {
		return err
	}

	switch res.Status {
	case service.StatusEmpty:
		fmt.Println("Nothing to distribute since the last outgoing transaction.")
	case service.StatusDryRun:
		fmt.Printf("Dry run: %d recipients over %d blocks, total %s %s\n",
			len(res.Distribution.Recipients), len(res.Blocks), res.Distribution.Total(), res.Distribution.TokenName)
	default:
		fmt.Printf("Distribution completed: %d recipients over %d blocks, total %s %s\n",
			len(res.Distribution.Recipients), len(res.Blocks), res.Distribution.Total(), res.Distribution.TokenName)
	}
	return nil
}

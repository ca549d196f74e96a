package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"QuantFuse/internal/di"
	"QuantFuse/pkg/util"

	"github.com/spf13/cobra"
)

var (
	insightSymbols string
	outputJSON     bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate fused insights for a list of symbols",
	RunE:  runInsights,
}

var signalCmd = &cobra.Command{
	Use:   "signal [symbol]",
	Short: "Generate a trading signal for one symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runSignal,
}

func init() {
	insightsCmd.Flags().StringVarP(&insightSymbols, "symbols", "s", "AAPL,TSLA,NVDA,MSFT,GOOGL", "comma separated symbols")
	insightsCmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON instead of a table")
	signalCmd.Flags().BoolVar(&outputJSON, "json", false, "print JSON instead of a table")

	rootCmd.AddCommand(insightsCmd, signalCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
	symbols := util.SplitSymbols(insightSymbols)
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols given")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, cleanup, err := di.InitializeServices(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	insights, err := svc.Insights.Batch(ctx, symbols)
	if outputJSON {
		if jerr := printJSON(insights); jerr != nil {
			return jerr
		}
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tACTION\tFUSED\tTECH\tSENT\tCONF\tRISK\tREASONING")
	for _, in := range insights {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
			in.Symbol, in.Action, in.FusedScore, in.TechnicalScore, in.SentimentScore,
			in.Confidence, in.RiskLevel, in.Reasoning)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return fmt.Errorf("batch stopped after %d of %d symbols: %w", len(insights), len(symbols), err)
	}
	return nil
}

func runSignal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, cleanup, err := di.InitializeServices(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sig, insight, err := svc.Signals.Generate(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if outputJSON {
		return printJSON(map[string]interface{}{"signal": sig, "insight": insight})
	}

	fmt.Printf("Signal:      %s %s\n", sig.Action, sig.Symbol)
	fmt.Printf("Entry:       %.2f\n", sig.EntryPrice)
	fmt.Printf("Stop loss:   %.2f\n", sig.StopLoss)
	fmt.Printf("Take profit: %.2f\n", sig.TakeProfit)
	fmt.Printf("Size:        %.0f%%\n", sig.PositionSizePct)
	fmt.Printf("Risk/reward: %.2f\n", sig.RiskRewardRatio)
	fmt.Printf("Confidence:  %.2f\n", sig.Confidence)
	if factors := slices.Concat(insight.TechnicalFactors, insight.SentimentFactors); len(factors) > 0 {
		fmt.Printf("Factors:     %s\n", strings.Join(factors, "; "))
	}
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/trade-journal/internal/engine"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/repository"
)

var (
	tradesFile string
	userFlag   string

	setupSymbol   string
	setupSide     string
	setupName     string
	setupStrategy string
	setupEntry    float64
	setupStop     float64
	setupTarget   float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an exported journal and print the dashboard as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, user, err := loadJournal(cmd)
		if err != nil {
			return err
		}
		dashboard, err := eng.Dashboard(cmd.Context(), user, uuid.Nil)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), dashboard)
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Estimate the outcome of a trade setup against an exported journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, user, err := loadJournal(cmd)
		if err != nil {
			return err
		}
		setup := models.TradeSetup{
			Symbol:     setupSymbol,
			Side:       models.TradeSide(setupSide),
			Setup:      setupName,
			Strategy:   setupStrategy,
			EntryPrice: setupEntry,
			StopLoss:   setupStop,
			Target:     setupTarget,
		}
		pred, err := eng.Predict(cmd.Context(), user, uuid.Nil, setup)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), pred)
	},
}

func init() {
	for _, c := range []*cobra.Command{analyzeCmd, predictCmd} {
		c.Flags().StringVarP(&tradesFile, "trades", "t", "", "JSON file holding an array of trade rows")
		c.Flags().StringVar(&userFlag, "user", "", "User ID the trades belong to (random when empty)")
		_ = c.MarkFlagRequired("trades")
	}

	predictCmd.Flags().StringVar(&setupSymbol, "symbol", "", "Symbol to trade")
	predictCmd.Flags().StringVar(&setupSide, "side", "long", "Trade direction (long or short)")
	predictCmd.Flags().StringVar(&setupName, "setup", "", "Setup name")
	predictCmd.Flags().StringVar(&setupStrategy, "strategy", "", "Strategy name")
	predictCmd.Flags().Float64Var(&setupEntry, "entry", 0, "Planned entry price")
	predictCmd.Flags().Float64Var(&setupStop, "stop", 0, "Planned stop loss")
	predictCmd.Flags().Float64Var(&setupTarget, "target", 0, "Planned target")
	_ = predictCmd.MarkFlagRequired("symbol")
}

// loadJournal reads the trades file into an in-memory engine
func loadJournal(cmd *cobra.Command) (*engine.Engine, uuid.UUID, error) {
	cfg, appLog, err := loadConfig(cmd)
	if err != nil {
		return nil, uuid.Nil, err
	}

	user := uuid.New()
	if userFlag != "" {
		if user, err = uuid.Parse(userFlag); err != nil {
			return nil, uuid.Nil, fmt.Errorf("invalid --user: %w", err)
		}
	}

	f, err := os.Open(tradesFile)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("failed to open trades file: %w", err)
	}
	defer f.Close()

	repos := repository.NewMemoryRepositories()
	count, err := importTrades(cmd.Context(), f, repos.Trade, user)
	if err != nil {
		return nil, uuid.Nil, err
	}
	appLog.WithField("trades", count).Debug("Journal imported")

	opts := engine.OptionsFromConfig(cfg)
	opts.PersistPatterns = false
	opts.PersistInsights = false
	eng := engine.New(engine.Dependencies{Repos: repos, Logger: appLog}, opts)
	return eng, user, nil
}

// importTrades decodes trade rows and stores them under user's default
// profile. Rows with malformed identifiers are rejected.
func importTrades(ctx context.Context, r io.Reader, repo repository.TradeRepository, user uuid.UUID) (int, error) {
	var rows []models.TradeRow
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return 0, fmt.Errorf("failed to decode trades: %w", err)
	}

	for i, row := range rows {
		trade, err := row.ToTrade()
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
		trade.UserID = user
		trade.ProfileID = uuid.Nil
		if err := repo.Create(ctx, &trade); err != nil {
			return 0, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return len(rows), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package main provides the CLI entrypoint for fxdash.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/fxdash/internal/app"
	"github.com/verte-zerg/fxdash/internal/config"
	"github.com/verte-zerg/fxdash/internal/dashboard"
	"github.com/verte-zerg/fxdash/internal/frankfurter"
	"github.com/verte-zerg/fxdash/internal/ledger"
	"github.com/verte-zerg/fxdash/internal/model"
	"github.com/verte-zerg/fxdash/internal/stats"
	"github.com/verte-zerg/fxdash/internal/store"
)

const (
	defaultFrom = "EUR"
	defaultTo   = "USD"
	defaultDays = dashboard.DefaultDays
)

var (
	apiURL     string
	apiTimeout time.Duration

	dashFrom    string
	dashTo      string
	dashDays    int
	dashRefresh time.Duration

	convertSwap     bool
	convertFavorite bool

	trendStart  string
	trendEnd    string
	trendDays   int
	trendSmooth int

	historyClearYes bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fxdash",
		Short:         "Terminal currency dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runDashboardCmd,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", frankfurter.DefaultBaseURL, "rate provider base URL")
	rootCmd.PersistentFlags().DurationVar(&apiTimeout, "timeout", frankfurter.DefaultTimeout, "rate provider request timeout")

	rootCmd.Flags().StringVar(&dashFrom, "from", defaultFrom, "trend source currency")
	rootCmd.Flags().StringVar(&dashTo, "to", defaultTo, "trend target currency")
	rootCmd.Flags().IntVar(&dashDays, "days", defaultDays, "trend range in days")
	rootCmd.Flags().DurationVar(&dashRefresh, "refresh", dashboard.DefaultRefresh, "favorites refresh interval")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCurrenciesCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newMultiCmd())
	rootCmd.AddCommand(newTrendCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newRatesCmd())
	rootCmd.AddCommand(newFavCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newThemeCmd())

	return rootCmd
}

// session bundles what every command needs and releases it on close.
type session struct {
	app   *app.App
	store *store.Store
}

func (s *session) close() {
	if cerr := s.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func openSession(cmd *cobra.Command, fileCfg config.FileConfig) (*session, error) {
	applyStringConfig(cmd, "api-url", &apiURL, fileCfg.API.URL)
	if err := applyDurationConfig(cmd, "timeout", &apiTimeout, fileCfg.API.Timeout); err != nil {
		return nil, err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a := app.New(frankfurter.New(apiURL, apiTimeout), st)
	if err := a.Load(cmd.Context()); err != nil {
		if errors.Is(err, ledger.ErrCorrupt) {
			logErrf("Ignoring saved data that could not be read: %v\n", err)
			return &session{app: a, store: st}, nil
		}
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
		return nil, fmt.Errorf("failed to load saved data: %w", err)
	}
	return &session{app: a, store: st}, nil
}

func loadFileConfig() (config.FileConfig, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		logErrf("%v\n", err)
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return config.ApplyEnv(fileCfg), nil
}

func withSession(run func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		fileCfg, err := loadFileConfig()
		if err != nil {
			return err
		}
		s, err := openSession(cmd, fileCfg)
		if err != nil {
			return err
		}
		defer s.close()
		return run(cmd, args, s)
	}
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "from", &dashFrom, fileCfg.Dashboard.From)
	applyStringConfig(cmd, "to", &dashTo, fileCfg.Dashboard.To)
	applyIntConfig(cmd, "days", &dashDays, fileCfg.Dashboard.Days)
	if err := applyDurationConfig(cmd, "refresh", &dashRefresh, fileCfg.Dashboard.Refresh); err != nil {
		return err
	}
	if dashDays <= 0 {
		return fmt.Errorf("--days must be > 0")
	}
	if dashRefresh <= 0 {
		return fmt.Errorf("--refresh must be > 0")
	}

	s, err := openSession(cmd, fileCfg)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	if _, err := s.app.LoadCurrencies(ctx); err != nil {
		logErrf("Failed to fetch currencies: %v\n", err)
	}

	m := dashboard.NewModel(s.app, dashboard.Options{
		Context: ctx,
		From:    dashFrom,
		To:      dashTo,
		Days:    dashDays,
		Refresh: dashRefresh,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newCurrenciesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List supported currencies",
		Args:  cobra.NoArgs,
		RunE:  withSession(runCurrenciesCmd),
	}
}

func runCurrenciesCmd(cmd *cobra.Command, _ []string, s *session) error {
	list, err := s.app.LoadCurrencies(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch currencies: %w", err)
	}
	return stats.RenderCurrencies(cmd.OutOrStdout(), list)
}

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert AMOUNT FROM TO",
		Short: "Convert an amount between two currencies",
		Args:  cobra.ExactArgs(3),
		RunE:  withSession(runConvertCmd),
	}
	cmd.Flags().BoolVar(&convertSwap, "swap", false, "swap FROM and TO")
	cmd.Flags().BoolVar(&convertFavorite, "favorite", false, "also add the pair to favorites")
	return cmd
}

func runConvertCmd(cmd *cobra.Command, args []string, s *session) error {
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	from, to := args[1], args[2]
	if convertSwap {
		from, to = to, from
	}
	ctx := cmd.Context()
	conv, err := s.app.Convert(ctx, app.ConversionRequest{Amount: amount, From: from, To: to})
	if err != nil && !isRecorded(conv) {
		return conversionError(err)
	}
	if rerr := stats.RenderConversions(cmd.OutOrStdout(), []model.Conversion{conv}, nil); rerr != nil {
		return rerr
	}
	if err != nil {
		logErrf("%v\n", err)
	}
	if convertFavorite {
		return addFavorite(cmd, s, from, to)
	}
	return nil
}

func newMultiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "multi AMOUNT FROM TO...",
		Short: "Convert an amount into several currencies",
		Args:  cobra.MinimumNArgs(2),
		RunE:  withSession(runMultiCmd),
	}
}

func runMultiCmd(cmd *cobra.Command, args []string, s *session) error {
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	req := app.MultiConversionRequest{Amount: amount, From: args[1], To: args[2:]}
	convs, err := s.app.ConvertMulti(ctx, req)
	if err != nil && len(convs) == 0 {
		return conversionError(err)
	}
	if _, lerr := s.app.LoadCurrencies(ctx); lerr != nil {
		logErrf("Failed to fetch currencies: %v\n", lerr)
	}
	if _, werr := fmt.Fprintf(cmd.OutOrStdout(), "%s %s converts to:\n", stats.FormatAmount(amount), req.From); werr != nil {
		return werr
	}
	if rerr := stats.RenderConversions(cmd.OutOrStdout(), convs, s.app.CurrencyName); rerr != nil {
		return rerr
	}
	if err != nil {
		logErrf("%v\n", err)
	}
	return nil
}

func newTrendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend FROM TO",
		Short: "Show historical rates with summary statistics",
		Args:  cobra.ExactArgs(2),
		RunE:  withSession(runTrendCmd),
	}
	cmd.Flags().StringVar(&trendStart, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&trendEnd, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&trendDays, "days", defaultDays, "range in days ending today, used without --start/--end")
	cmd.Flags().IntVar(&trendSmooth, "smooth", 0, "moving average window drawn next to the rate")
	return cmd
}

func runTrendCmd(cmd *cobra.Command, args []string, s *session) error {
	req := app.TrendRequest{From: args[0], To: args[1]}
	if cmd.Flags().Changed("start") || cmd.Flags().Changed("end") {
		start, err := parseOptionalDate("--start", trendStart)
		if err != nil {
			return err
		}
		end, err := parseOptionalDate("--end", trendEnd)
		if err != nil {
			return err
		}
		req.Start, req.End = start, end
	} else {
		if trendDays <= 0 {
			return fmt.Errorf("--days must be > 0")
		}
		req.Start, req.End = s.app.LastDays(trendDays)
	}
	if trendSmooth < 0 {
		return fmt.Errorf("--smooth must be >= 0")
	}

	trend, err := s.app.Trend(cmd.Context(), req)
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			return err
		}
		return fmt.Errorf("failed to fetch historical data: %w", err)
	}
	return stats.RenderTrend(cmd.OutOrStdout(), trend, trendSmooth, 0, false)
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare FROM TO DATE",
		Short: "Compare the rate on a date with the latest rate",
		Args:  cobra.ExactArgs(3),
		RunE:  withSession(runCompareCmd),
	}
}

func runCompareCmd(cmd *cobra.Command, args []string, s *session) error {
	date, err := parseOptionalDate("DATE", args[2])
	if err != nil {
		return err
	}
	cmp, err := s.app.CompareDate(cmd.Context(), app.CompareRequest{From: args[0], To: args[1], Date: date})
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			return err
		}
		return fmt.Errorf("failed to fetch data: %w", err)
	}
	return stats.RenderComparison(cmd.OutOrStdout(), cmp)
}

func newRatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates [BASE]",
		Short: "Show the latest rates against a base currency",
		Args:  cobra.MaximumNArgs(1),
		RunE:  withSession(runRatesCmd),
	}
}

func runRatesCmd(cmd *cobra.Command, args []string, s *session) error {
	base := defaultFrom
	if len(args) == 1 {
		base = args[0]
	}
	ctx := cmd.Context()
	if _, err := s.app.LoadCurrencies(ctx); err != nil {
		logErrf("Failed to fetch currencies: %v\n", err)
	}
	rates, err := s.app.AllRates(ctx, base)
	if err != nil {
		if errors.Is(err, app.ErrValidation) {
			return err
		}
		return fmt.Errorf("failed to fetch rates: %w", err)
	}
	return stats.RenderRates(cmd.OutOrStdout(), base, rates)
}

func newFavCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorite currency pairs",
		Args:  cobra.NoArgs,
		RunE:  withSession(runFavListCmd),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add FROM TO",
		Short: "Add a favorite pair",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			return addFavorite(cmd, s, args[0], args[1])
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "rm FROM TO",
		Aliases: []string{"remove"},
		Short:   "Remove a favorite pair",
		Args:    cobra.ExactArgs(2),
		RunE:    withSession(runFavRemoveCmd),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List favorite pairs with live rates",
		Args:  cobra.NoArgs,
		RunE:  withSession(runFavListCmd),
	})
	return cmd
}

func addFavorite(cmd *cobra.Command, s *session, from, to string) error {
	added, err := s.app.AddFavorite(cmd.Context(), from, to)
	if err != nil {
		return err
	}
	msg := "Currency pair added to favorites"
	if !added {
		msg = "This currency pair is already in your favorites"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s/%s\n", msg, from, to)
	return err
}

func runFavRemoveCmd(cmd *cobra.Command, args []string, s *session) error {
	if err := s.app.RemoveFavorite(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Currency pair removed from favorites: %s/%s\n", args[0], args[1])
	return err
}

func runFavListCmd(cmd *cobra.Command, _ []string, s *session) error {
	ctx := cmd.Context()
	if len(s.app.Favorites()) > 0 {
		if _, err := s.app.LoadCurrencies(ctx); err != nil {
			logErrf("Failed to fetch currencies: %v\n", err)
		}
	}
	quotes := s.app.FavoriteQuotes(ctx)
	for _, q := range quotes {
		if q.Err != nil {
			logErrf("Failed to fetch rate for %s to %s: %v\n", q.Pair.From, q.Pair.To, q.Err)
		}
	}
	return stats.RenderFavorites(cmd.OutOrStdout(), quotes, s.app.CurrencyName)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show conversion history",
		Args:  cobra.NoArgs,
		RunE:  withSession(runHistoryCmd),
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all conversion history",
		Args:  cobra.NoArgs,
		RunE:  withSession(runHistoryClearCmd),
	}
	clearCmd.Flags().BoolVar(&historyClearYes, "yes", false, "confirm deleting all history")
	cmd.AddCommand(clearCmd)
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string, s *session) error {
	entries := s.app.History()
	if err := stats.RenderHistory(cmd.OutOrStdout(), entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	at, ok, err := s.store.UpdatedAt(cmd.Context(), ledger.HistoryKey)
	if err != nil {
		logErrf("Failed to read history timestamp: %v\n", err)
		return nil
	}
	if !ok {
		return nil
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "\nLast saved: %s\n", at.Local().Format("2006-01-02 15:04:05"))
	return err
}

func runHistoryClearCmd(cmd *cobra.Command, _ []string, s *session) error {
	if !historyClearYes {
		return fmt.Errorf("refusing to clear %d history entries without --yes", len(s.app.History()))
	}
	if err := s.app.ClearHistory(cmd.Context()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), "Conversion history cleared")
	return err
}

func newThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or set the dashboard theme",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE:      withSession(runThemeCmd),
	}
}

func runThemeCmd(cmd *cobra.Command, args []string, s *session) error {
	ctx := cmd.Context()
	dark := s.app.DarkMode()
	if len(args) == 1 {
		var err error
		switch args[0] {
		case "dark":
			dark, err = true, s.app.SetDarkMode(ctx, true)
		case "light":
			dark, err = false, s.app.SetDarkMode(ctx, false)
		case "toggle":
			dark, err = s.app.ToggleDarkMode(ctx)
		}
		if err != nil {
			return err
		}
	}
	mode := "light"
	if dark {
		mode = "dark"
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", mode)
	return err
}

// parseAmount parses a decimal amount exactly before handing it to the float domain.
func parseAmount(raw string) (float64, error) {
	invalid := &app.ValidationError{Field: "Amount", Message: "Please enter a valid amount greater than 0"}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, invalid
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) {
		return 0, invalid
	}
	return f, nil
}

func parseOptionalDate(name, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s value (expected YYYY-MM-DD)", name)
	}
	return parsed, nil
}

func conversionError(err error) error {
	if errors.Is(err, app.ErrValidation) {
		return err
	}
	return fmt.Errorf("conversion failed: %w", err)
}

func isRecorded(conv model.Conversion) bool {
	return conv.From != ""
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if cmd.Flags().Changed(name) {
		return nil
	}
	d, ok, err := config.ParseDuration(name, value)
	if err != nil {
		return err
	}
	if ok {
		*target = d
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# fxdash configuration
# Uncomment a value to enable it. CLI flags and environment variables override config values.

[api]
# url = %q   # Rate provider base URL (env %s)
# timeout = %q                          # Request timeout (env %s)

[dashboard]
# from = %q        # Trend source currency
# to = %q          # Trend target currency
# days = %d          # Trend range in days
# refresh = %q     # Favorites refresh interval
`,
		frankfurter.DefaultBaseURL,
		config.EnvAPIURL,
		frankfurter.DefaultTimeout.String(),
		config.EnvAPITimeout,
		defaultFrom,
		defaultTo,
		defaultDays,
		dashboard.DefaultRefresh.String(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"

	"github.com/worawit/breaklog/internal/api"
	"github.com/worawit/breaklog/internal/config"
	"github.com/worawit/breaklog/internal/export"
	"github.com/worawit/breaklog/internal/ledger"
	"github.com/worawit/breaklog/internal/notify"
	"github.com/worawit/breaklog/internal/storage"
	"github.com/worawit/breaklog/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "breaklog",
	Short: "Employee break and activity time clock",
	Long:  "breaklog records who is on break, smoking, at the toilet or working, with one open activity per employee at a time.",
}

var startCmd = &cobra.Command{
	Use:   "start <employee-id> [activity]",
	Short: "Start an activity (ends the previous one automatically)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runStart,
}

var endCmd = &cobra.Command{
	Use:   "end <employee-id>",
	Short: "End the employee's current activity",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnd,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a log entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List log entries",
	RunE:  runLog,
}

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "List known employee IDs",
	RunE:  runEmployees,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export log entries as CSV or iCalendar",
	RunE:  runExport,
}

var kioskCmd = &cobra.Command{
	Use:   "kiosk",
	Short: "Run the interactive kiosk screen",
	RunE:  runKiosk,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	startCmd.Flags().String("at", "", "Override the wall-clock time (HH:MM:SS)")
	startCmd.Flags().String("name", "", "Display name to record for a first-seen employee ID")
	endCmd.Flags().String("at", "", "Override the wall-clock time (HH:MM:SS)")

	logCmd.Flags().String("from", "", "Start date (2006-01-02 or natural, e.g. \"yesterday\")")
	logCmd.Flags().String("to", "", "End date (2006-01-02 or natural)")
	logCmd.Flags().String("employee", "", "Only show entries for this employee ID")

	exportCmd.Flags().String("from", "", "Start date (2006-01-02 or natural)")
	exportCmd.Flags().String("to", "", "End date (2006-01-02 or natural)")
	exportCmd.Flags().String("employee", "", "Only export entries for this employee ID")
	exportCmd.Flags().String("format", "csv", "Output format: csv or ics")
	exportCmd.Flags().String("out", "", "Write to a file instead of stdout")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(endCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(employeesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(kioskCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openLedger(logger *slog.Logger) (*ledger.Ledger, ledger.Storage, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.Open(cfg, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening storage: %w", err)
	}

	return ledger.New(store), store, cfg, nil
}

// stampNow resolves the date and clock for an action, honoring an --at
// override of the time-of-day.
func stampNow(cfg *config.Config, at string) (date, clock string) {
	date, clock = ledger.Stamp(time.Now().In(cfg.Location()))
	if at != "" {
		clock = at
	}
	return date, clock
}

// parseDateFlag accepts a plain 2006-01-02 date or a natural phrase like
// "yesterday" or "last monday".
func parseDateFlag(s string, loc *time.Location) (string, error) {
	if s == "" {
		return "", nil
	}
	if t, err := time.ParseInLocation(ledger.DateLayout, s, loc); err == nil {
		return t.Format(ledger.DateLayout), nil
	}
	t, err := naturaldate.Parse(s, time.Now().In(loc), naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return "", fmt.Errorf("cannot parse date %q: %w", s, err)
	}
	return t.Format(ledger.DateLayout), nil
}

func buildFilter(cmd *cobra.Command, loc *time.Location) (ledger.Filter, error) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	employee, _ := cmd.Flags().GetString("employee")

	var filter ledger.Filter
	var err error
	if filter.DateFrom, err = parseDateFlag(from, loc); err != nil {
		return filter, err
	}
	if filter.DateTo, err = parseDateFlag(to, loc); err != nil {
		return filter, err
	}
	filter.EmployeeID = employee
	return filter, nil
}

func runStart(cmd *cobra.Command, args []string) error {
	employeeID := args[0]
	if employeeID == "" {
		return fmt.Errorf("employee ID must not be empty")
	}
	activity := ledger.ActivityWork
	if len(args) > 1 {
		activity = args[1]
	}
	at, _ := cmd.Flags().GetString("at")
	name, _ := cmd.Flags().GetString("name")

	ld, store, cfg, err := openLedger(newLogger(slog.LevelWarn))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if name != "" {
		if err := ld.RegisterEmployee(ctx, employeeID, name); err != nil {
			return err
		}
	}

	date, clock := stampNow(cfg, at)
	entry, err := ld.StartActivity(ctx, employeeID, activity, date, clock)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Started %s for %s at %s", entry.Activity, entry.EmployeeID, entry.StartTime)
	fmt.Println(message)
	if cfg.Notifications.Enabled {
		notify.Send("breaklog", message)
	}
	return nil
}

func runEnd(cmd *cobra.Command, args []string) error {
	employeeID := args[0]
	at, _ := cmd.Flags().GetString("at")

	ld, store, cfg, err := openLedger(newLogger(slog.LevelWarn))
	if err != nil {
		return err
	}
	defer store.Close()

	date, clock := stampNow(cfg, at)
	ended, err := ld.EndActivity(context.Background(), employeeID, date, clock)
	if err != nil {
		return err
	}
	if !ended {
		fmt.Printf("Warning: no open activity for %s on %s\n", employeeID, date)
		return nil
	}

	fmt.Printf("Ended activity for %s at %s\n", employeeID, clock)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	ld, store, _, err := openLedger(newLogger(slog.LevelWarn))
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := ld.DeleteEntry(context.Background(), id)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Printf("Warning: no entry with id %s\n", id)
		return nil
	}

	fmt.Printf("Deleted entry %s\n", id)
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	ld, store, cfg, err := openLedger(newLogger(slog.LevelWarn))
	if err != nil {
		return err
	}
	defer store.Close()

	filter, err := buildFilter(cmd, cfg.Location())
	if err != nil {
		return err
	}

	entries, err := ld.ListEntries(context.Background(), filter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return nil
	}

	var currentDate string
	for _, e := range entries {
		if e.Date != currentDate {
			fmt.Println(e.Date)
			currentDate = e.Date
		}

		end := "ongoing"
		if !e.Open() {
			end = ledger.FormatClock(e.EndTime)
		}
		fmt.Printf("  %s  %s-%s  %-10s  %s  %s\n",
			e.ID,
			ledger.FormatClock(e.StartTime),
			end,
			e.Activity,
			e.EmployeeID,
			ledger.FormatMinutes(e.DurationMinutes),
		)
	}
	return nil
}

func runEmployees(cmd *cobra.Command, args []string) error {
	ld, store, _, err := openLedger(newLogger(slog.LevelWarn))
	if err != nil {
		return err
	}
	defer store.Close()

	employees, err := ld.ListEmployees(context.Background())
	if err != nil {
		return err
	}
	if len(employees) == 0 {
		fmt.Println("No known employees yet.")
		return nil
	}

	for _, e := range employees {
		fmt.Printf("  %-16s %s\n", e.EmployeeID, e.DisplayName())
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	ld, store, cfg, err := openLedger(newLogger(slog.LevelWarn))
	if err != nil {
		return err
	}
	defer store.Close()

	filter, err := buildFilter(cmd, cfg.Location())
	if err != nil {
		return err
	}

	entries, err := ld.ListEntries(context.Background(), filter)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "csv":
		return export.WriteCSV(out, entries)
	case "ics":
		return export.WriteICS(out, entries, cfg.Location())
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func runKiosk(cmd *cobra.Command, args []string) error {
	ld, store, cfg, err := openLedger(newLogger(slog.LevelWarn))
	if err != nil {
		return err
	}
	defer store.Close()

	app := tui.NewApp(ld, cfg.Location(), cfg.Notifications.Enabled)
	p := tea.NewProgram(app)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running kiosk: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(slog.LevelInfo)

	ld, store, cfg, err := openLedger(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	server := api.New(ld, cfg.Location(), cfg.Server.Addr, logger)
	return server.Run()
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		data := fmt.Sprintf(`[storage]
backend = "%s"
path = ""

[sheets]
base_url = ""
token = ""
cache_ttl_minutes = %d

[server]
addr = "%s"

[clock]
timezone = "%s"

[notifications]
enabled = %t
`,
			cfg.Storage.Backend,
			cfg.Sheets.CacheTTLMinutes,
			cfg.Server.Addr,
			cfg.Clock.Timezone,
			cfg.Notifications.Enabled,
		)
		if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}

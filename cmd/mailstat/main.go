package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/nhle/mailstat/internal/credential"
	"github.com/nhle/mailstat/internal/model"
	"github.com/nhle/mailstat/internal/report"
	"github.com/nhle/mailstat/internal/snapshot"
	"github.com/nhle/mailstat/internal/source/email"
	"github.com/nhle/mailstat/internal/stats"
	"github.com/nhle/mailstat/internal/sync"
)

var (
	flagConfig = pflag.String(
		"config", model.DefaultConfigPath(), "path to the configuration file",
	)
	flagEmail = pflag.String(
		"email", "", "account address to synchronize",
	)
	flagPasswordCmd = pflag.String(
		"password-cmd", "", "shell command printing the account password",
	)
	flagDays = pflag.Int(
		"days", 14, "lookback window in days",
	)
	flagFolder = pflag.String(
		"folder", "INBOX", "mailbox folder to synchronize",
	)
	flagSnapshot = pflag.String(
		"snapshot", "", "snapshot file path",
	)
	flagSendReport = pflag.Bool(
		"send-report", false, "email the report after the run",
	)
	flagSetPassword = pflag.Bool(
		"set-password", false,
		"store the account password in the OS keyring and exit",
	)
	flagWriteConfig = pflag.Bool(
		"write-config", false,
		"write the effective configuration to the config path and exit",
	)
)

func main() {
	_ = godotenv.Load()
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	v := model.NewViper()
	for key, flag := range map[string]string{
		"account.email":        "email",
		"account.password_cmd": "password-cmd",
		"sync.lookback_days":   "days",
		"sync.snapshot":        "snapshot",
		"imap.folder":          "folder",
		"report.email":         "send-report",
	} {
		if err := v.BindPFlag(key, pflag.Lookup(flag)); err != nil {
			logger.Error("binding flag", "flag", flag, "error", err)
			os.Exit(1)
		}
	}

	cfg, err := model.LoadConfig(v, *flagConfig)
	if err != nil {
		logger.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	if *flagWriteConfig {
		if err := model.SaveConfig(*flagConfig, cfg); err != nil {
			logger.Error("writing configuration", "error", err)
			os.Exit(1)
		}
		logger.Info("configuration written", "path", *flagConfig)
		return
	}

	if cfg.Account.Email == "" {
		logger.Error(
			"no account configured; pass --email or set account.email",
		)
		os.Exit(1)
	}

	if *flagSetPassword {
		if err := storePassword(cfg.Account.Email); err != nil {
			logger.Error("storing password", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run executes one sync-and-report cycle: load snapshot, merge mailbox
// pages, persist, aggregate, emit.
func run(
	ctx context.Context, cfg *model.AppConfig, logger *log.Logger,
) error {
	password, err := credential.Resolve(
		ctx, cfg.Account.PasswordCmd, cfg.Account.Email,
	)
	if err != nil {
		return fmt.Errorf("resolving password: %w", err)
	}

	store := snapshot.New(cfg.Sync.Snapshot)

	entries, err := store.Load()
	if err != nil {
		switch {
		case snapshot.IsNotFound(err):
			logger.Info(
				"no snapshot yet, starting empty", "path", store.Path(),
			)
		case snapshot.IsParseError(err):
			logger.Warn(
				"snapshot unreadable, starting empty", "error", err,
			)
		default:
			return fmt.Errorf("loading snapshot: %w", err)
		}
		entries = nil
	} else {
		logger.Info(
			"snapshot loaded",
			"path", store.Path(),
			"entries", len(entries),
		)
	}

	cutoff := time.Now().AddDate(0, 0, -cfg.Sync.LookbackDays)

	imapClient := email.NewIMAPClient(
		cfg.IMAP.Host, cfg.IMAP.Port,
		cfg.Account.Email, password,
		cfg.IMAP.TLS,
	)
	mailbox := email.NewMailbox(imapClient, logger.WithPrefix("imap"))
	defer func() { _ = mailbox.Close() }()

	engine := sync.New(mailbox, sync.Config{
		Folder:    cfg.IMAP.Folder,
		PageSize:  cfg.Sync.PageSize,
		Cutoff:    cutoff,
		Erroneous: model.ErroneousDate,
		MaxPages:  cfg.Sync.MaxPages,
	}, logger.WithPrefix("sync"))

	merged, res, err := engine.Run(ctx, entries)
	if err != nil {
		return fmt.Errorf("synchronizing %s: %w", cfg.IMAP.Folder, err)
	}

	logger.Info(
		"sync finished",
		"state", res.State,
		"pages", res.Pages,
		"new", res.Added,
		"duplicate", res.Duplicates,
		"discarded", res.Discarded,
		"entries", len(merged),
	)

	if err := store.Save(merged); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	logger.Info(
		"snapshot saved",
		"path", store.Path(),
		"entries", len(merged),
	)

	return emit(ctx, cfg, logger.WithPrefix("report"), merged, cutoff, password)
}

// emit reports over both views: all-time aggregates as CSV on stdout
// plus the chart artifact, and this run's window in the emailed report.
// The snapshot is already saved; nothing here rolls it back.
func emit(
	ctx context.Context,
	cfg *model.AppConfig,
	logger *log.Logger,
	entries []model.Entry,
	cutoff time.Time,
	password string,
) error {
	dayRows := stats.SortedDays(
		stats.CountByDay(entries, model.ErroneousDate),
	)
	domainCounts, failures := stats.CountByDomain(
		entries, model.ErroneousDate,
	)
	domainRows := stats.SortedDomains(domainCounts)

	for _, failure := range failures {
		logger.Warn(
			"skipping unparseable sender address",
			"address", failure.Address,
			"error", failure.Err,
		)
	}

	if err := report.WriteDayCSV(os.Stdout, dayRows); err != nil {
		return err
	}
	fmt.Println()
	if err := report.WriteDomainCSV(os.Stdout, domainRows); err != nil {
		return err
	}

	if cfg.Report.Tables {
		fmt.Println(report.DayTable(dayRows))
		fmt.Println(report.DomainTable(domainRows))
	}

	if err := report.SaveDayChart(cfg.Report.Chart, dayRows); err != nil {
		if !errors.Is(err, report.ErrNoData) {
			return fmt.Errorf("saving chart: %w", err)
		}
		logger.Warn("no day counts to chart")
	} else {
		logger.Info("chart written", "path", cfg.Report.Chart)
	}

	if !cfg.Report.Email {
		return nil
	}

	window := stats.WithinWindow(entries, cutoff)
	winDays := stats.SortedDays(
		stats.CountByDay(window, model.ErroneousDate),
	)
	winDomainCounts, winFailures := stats.CountByDomain(
		window, model.ErroneousDate,
	)
	winDomains := stats.SortedDomains(winDomainCounts)

	var chartPNG []byte
	var chartBuf bytes.Buffer
	switch err := report.RenderDayChart(&chartBuf, winDays); {
	case err == nil:
		chartPNG = chartBuf.Bytes()
	case errors.Is(err, report.ErrNoData):
		logger.Warn("window has no day counts; sending report without chart")
	default:
		return fmt.Errorf("rendering report chart: %w", err)
	}

	msg, err := report.BuildEmail(report.EmailParams{
		From:       cfg.Account.Email,
		To:         cfg.Report.To,
		Account:    cfg.Account.Email,
		WindowDays: cfg.Sync.LookbackDays,
		Days:       winDays,
		Domains:    winDomains,
		Skipped:    len(winFailures),
		ChartPNG:   chartPNG,
	})
	if err != nil {
		return err
	}

	sender := email.NewSender(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.Account.Email,
		Password: password,
		TLS:      cfg.SMTP.TLS,
	})

	if err := sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending report: %w", err)
	}
	logger.Info("report sent", "to", cfg.Report.To)

	return nil
}

// storePassword prompts for the account password on the terminal and
// stores it in the OS keyring.
func storePassword(account string) error {
	fmt.Fprintf(os.Stderr, "password for %s: ", account)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	if len(secret) == 0 {
		return fmt.Errorf("empty password")
	}

	key := credential.KeyFor(account)
	if err := credential.Set(key, string(secret)); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "stored keyring credential %s\n", key)
	return nil
}

package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/template"
	"time"

	"github.com/macrat/cfmon/internal/cferr"
	"github.com/macrat/cfmon/internal/cloudflare"
	"github.com/macrat/cfmon/internal/config"
	"github.com/macrat/cfmon/internal/incidentio"
	"github.com/macrat/cfmon/internal/logger"
	"github.com/macrat/cfmon/internal/meta"
	"github.com/macrat/cfmon/internal/monitor"
	"github.com/macrat/cfmon/internal/schedule"
	"github.com/macrat/cfmon/internal/snapshot"
	"github.com/spf13/pflag"
)

const (
	DefaultStatePath = "cloudflare_state.json"
)

func init() {
	cloudflare.UserAgent = meta.UserAgent()
	incidentio.UserAgent = meta.UserAgent()
}

type CfmonCommand struct {
	OutStream io.Writer
	ErrStream io.Writer
	Getenv    func(string) string

	ServeMode    bool
	StatePath    string
	WebhookURL   string
	Token        string
	RegionsPath  string
	StatusURL    string
	Timeout      time.Duration
	DryRun       bool
	ForceJSON    bool
	ListenPort   int
	ScheduleSpec string
	ShowVersion  bool
	ShowHelp     bool

	Config   config.Config
	Schedule schedule.Schedule
}

var defaultCfmonCommand = &CfmonCommand{
	OutStream: os.Stdout,
	ErrStream: os.Stderr,
	Getenv:    os.Getenv,
}

//go:embed help.txt
var helpText string

func (cmd *CfmonCommand) PrintUsage(detail bool) {
	tmpl := template.Must(template.New("help.txt").Parse(helpText))
	tmpl.Execute(cmd.ErrStream, map[string]interface{}{
		"Version":          meta.Version,
		"Short":            !detail,
		"DefaultState":     DefaultStatePath,
		"DefaultStatusURL": config.DefaultStatusURL,
		"DefaultTimeout":   config.DefaultTimeout,
		"DefaultSchedule":  schedule.DefaultSchedule,
		"EnvWebhook":       config.EnvWebhookURL,
		"EnvToken":         config.EnvToken,
		"EnvStatusURL":     config.EnvStatusURL,
	})
}

func (cmd *CfmonCommand) ParseArgs(args []string) (exitCode int) {
	flags := pflag.NewFlagSet("cfmon", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringVarP(&cmd.StatePath, "state", "s", DefaultStatePath, "Path to snapshot file")
	flags.StringVarP(&cmd.WebhookURL, "webhook", "w", "", "incident.io alert source URL")
	flags.StringVarP(&cmd.Token, "token", "t", "", "Bearer token for the webhook")
	flags.StringVarP(&cmd.RegionsPath, "regions", "r", "", "YAML file of monitored regions")
	flags.StringVar(&cmd.StatusURL, "status-url", "", "Cloudflare components API URL")
	flags.DurationVar(&cmd.Timeout, "timeout", config.DefaultTimeout, "Timeout of each request")
	flags.BoolVarP(&cmd.DryRun, "dry-run", "n", false, "Log alerts instead of sending them")
	flags.BoolVar(&cmd.ForceJSON, "json", false, "Always write log in JSON lines")
	flags.IntVarP(&cmd.ListenPort, "port", "p", 9000, "HTTP listen port")
	flags.StringVarP(&cmd.ScheduleSpec, "schedule", "S", schedule.DefaultSchedule.String(), "Check schedule")
	flags.BoolVarP(&cmd.ShowVersion, "version", "v", false, "Show version")
	flags.BoolVarP(&cmd.ShowHelp, "help", "h", false, "Show help message")

	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintln(cmd.ErrStream, err)
		fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s -h` for more information.\n", args[0])
		return 2
	}

	if cmd.ShowVersion || cmd.ShowHelp {
		return 0
	}

	if flags.NArg() > 0 {
		fmt.Fprintf(cmd.ErrStream, "invalid argument: unexpected argument: %s\n", flags.Arg(0))
		fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s -h` for more information.\n", args[0])
		return 2
	}

	if !cmd.ServeMode {
		if flags.Changed("port") {
			fmt.Fprintln(cmd.ErrStream, "warning: port option will ignored in the check mode.")
		}
		if flags.Changed("schedule") {
			fmt.Fprintln(cmd.ErrStream, "warning: schedule option will ignored in the check mode.")
		}
	} else {
		s, err := schedule.Parse(cmd.ScheduleSpec)
		if err != nil {
			fmt.Fprintf(cmd.ErrStream, "invalid argument: %s\n", err)
			return 2
		}
		cmd.Schedule = s
	}

	if err := cmd.loadConfig(); err != nil {
		fmt.Fprintln(cmd.ErrStream, err)
		return 2
	}

	return 0
}

func (cmd *CfmonCommand) loadConfig() error {
	getenv := cmd.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cmd.Config = config.FromEnv(getenv)

	if cmd.WebhookURL != "" {
		cmd.Config.WebhookURL = cmd.WebhookURL
	}
	if cmd.Token != "" {
		cmd.Config.Token = cmd.Token
	}
	if cmd.StatusURL != "" {
		cmd.Config.StatusURL = cmd.StatusURL
	}
	if cmd.Timeout <= 0 {
		return cferr.New(cferr.ErrInvalidConfig, nil, "invalid argument: timeout must be positive: %s", cmd.Timeout)
	}
	cmd.Config.Timeout = cmd.Timeout

	if cmd.RegionsPath != "" {
		tbl, err := config.LoadRegions(cmd.RegionsPath)
		if err != nil {
			return err
		}
		cmd.Config.Regions = tbl
	}

	if cmd.Config.WebhookURL == "" && !cmd.DryRun {
		return cferr.New(cferr.ErrInvalidConfig, nil, "invalid argument: webhook URL is required. Please set $%s or use --webhook, or use --dry-run.", config.EnvWebhookURL)
	}

	return nil
}

func (cmd *CfmonCommand) PrintVersion() {
	fmt.Fprintf(cmd.OutStream, "cfmon version %s (%s)\n", meta.Version, meta.Commit)
}

// NewMonitor makes a monitor.Monitor from the parsed configuration.
func (cmd *CfmonCommand) NewMonitor(l *logger.Logger) *monitor.Monitor {
	c := cmd.Config

	var n monitor.Notifier
	if cmd.DryRun {
		n = monitor.LogNotifier{Logger: l, Severities: monitor.DefaultSeverities}
	} else {
		n = incidentio.New(c.WebhookURL, c.Token, c.Timeout, monitor.DefaultSeverities, l)
	}

	return &monitor.Monitor{
		Regions:    c.Regions,
		Severities: monitor.DefaultSeverities,
		Fetcher:    cloudflare.New(c.StatusURL, c.Timeout),
		Store:      snapshot.NewFileStore(cmd.StatePath),
		Notifier:   n,
		Logger:     l,
	}
}

func (cmd *CfmonCommand) RunCheck(ctx context.Context, l *logger.Logger) (exitCode int) {
	_, err := cmd.NewMonitor(l).Run(ctx)
	if err == nil {
		return 0
	}

	var ne *cferr.NotifyError
	if errors.As(err, &ne) {
		fmt.Fprintf(cmd.ErrStream, "error: failed to send alerts for %d region(s): %v\n", len(ne.Regions()), ne.Regions())
	} else {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
	}
	return 1
}

func (cmd *CfmonCommand) Run(args []string) (exitCode int) {
	if code := cmd.ParseArgs(args); code != 0 {
		return code
	}

	if cmd.ShowVersion {
		cmd.PrintVersion()
		return 0
	}

	if cmd.ShowHelp {
		cmd.PrintUsage(true)
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := logger.New(cmd.OutStream, cmd.ForceJSON)

	if cmd.ServeMode {
		return cmd.RunServer(ctx, l)
	}
	return cmd.RunCheck(ctx, l)
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "check":
			os.Args = append(os.Args[:1], os.Args[2:]...)
		case "serve":
			os.Args = append(os.Args[:1], os.Args[2:]...)
			defaultCfmonCommand.ServeMode = true
		case "summary":
			os.Args = append(os.Args[:1], os.Args[2:]...)
			os.Exit(defaultSummaryCommand.Run(os.Args))
		}
	}

	os.Exit(defaultCfmonCommand.Run(os.Args))
}

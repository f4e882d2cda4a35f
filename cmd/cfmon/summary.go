package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/macrat/cfmon/internal/cloudflare"
	"github.com/macrat/cfmon/internal/config"
	"github.com/macrat/cfmon/internal/logger"
	"github.com/macrat/cfmon/internal/slack"
	"github.com/spf13/pflag"
)

type SummaryCommand struct {
	OutStream io.Writer
	ErrStream io.Writer
	Getenv    func(string) string

	WebhookURL string
	StatusURL  string
	Groups     []string
	Timeout    time.Duration
	DryRun     bool
	ForceJSON  bool
}

var defaultSummaryCommand = &SummaryCommand{
	OutStream: os.Stdout,
	ErrStream: os.Stderr,
	Getenv:    os.Getenv,
}

const summaryHelp = `cfmon summary -- Post re-routed Cloudflare regions to Slack

Usage: cfmon summary [-g GROUP...] [-w URL] [-n]

Options:
  -g, --group GROUP    Region group to show. Can be given multiple times.
                       (default: Africa, Asia, Europe, Latin America & the Caribbean)
  -w, --webhook URL    Slack incoming webhook URL. (default: $SLACK_WEBHOOK_URL)
      --status-url URL Cloudflare components API.
      --timeout DUR    Timeout of each request. (default: 30s)
  -n, --dry-run        Print the message in JSON instead of posting it.
      --json           Always write the log in JSON lines.
  -h, --help           Show this help and exit.
`

func (cmd *SummaryCommand) Run(args []string) (exitCode int) {
	flags := pflag.NewFlagSet("cfmon summary", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringArrayVarP(&cmd.Groups, "group", "g", nil, "Region group to show")
	flags.StringVarP(&cmd.WebhookURL, "webhook", "w", "", "Slack incoming webhook URL")
	flags.StringVar(&cmd.StatusURL, "status-url", "", "Cloudflare components API URL")
	flags.DurationVar(&cmd.Timeout, "timeout", config.DefaultTimeout, "Timeout of each request")
	flags.BoolVarP(&cmd.DryRun, "dry-run", "n", false, "Print the message instead of posting")
	flags.BoolVar(&cmd.ForceJSON, "json", false, "Always write log in JSON lines")
	help := flags.BoolP("help", "h", false, "Show help message")

	if err := flags.Parse(args[1:]); err != nil {
		fmt.Fprintln(cmd.ErrStream, err)
		fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s summary -h` for more information.\n", args[0])
		return 2
	}

	if *help {
		io.WriteString(cmd.OutStream, summaryHelp)
		return 0
	}

	getenv := cmd.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	c := config.FromEnv(getenv)
	if cmd.WebhookURL != "" {
		c.SlackWebhookURL = cmd.WebhookURL
	}
	if cmd.StatusURL != "" {
		c.StatusURL = cmd.StatusURL
	}
	if cmd.Timeout <= 0 {
		fmt.Fprintf(cmd.ErrStream, "invalid argument: timeout must be positive: %s\n", cmd.Timeout)
		return 2
	}
	c.Timeout = cmd.Timeout
	if len(cmd.Groups) == 0 {
		cmd.Groups = slack.DefaultGroups
	}

	if c.SlackWebhookURL == "" && !cmd.DryRun {
		fmt.Fprintf(cmd.ErrStream, "invalid argument: Slack webhook URL is required. Please set $%s or use --webhook, or use --dry-run.\n", config.EnvSlackWebhookURL)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cmd.run(ctx, c, logger.New(cmd.ErrStream, cmd.ForceJSON))
}

func (cmd *SummaryCommand) run(ctx context.Context, c config.Config, l *logger.Logger) (exitCode int) {
	components, err := cloudflare.New(c.StatusURL, c.Timeout).Components(ctx)
	if err != nil {
		l.Failure("cloudflare", err.Error(), nil)
		return 1
	}

	issues := slack.Summarize(components, cmd.Groups)
	for _, gi := range issues {
		extra := map[string]interface{}{
			"re_routed":           gi.ReRouted,
			"partially_re_routed": gi.PartiallyReRouted,
		}
		if gi.Empty() {
			l.Healthy("cloudflare-group:"+gi.Group, "no re-routed regions", extra)
		} else {
			l.Degrade("cloudflare-group:"+gi.Group, fmt.Sprintf("%d re-routed, %d partially re-routed", len(gi.ReRouted), len(gi.PartiallyReRouted)), extra)
		}
	}

	msg := slack.BuildMessage(issues, time.Now())

	if cmd.DryRun {
		enc := json.NewEncoder(cmd.OutStream)
		enc.SetIndent("", "  ")
		if err := enc.Encode(msg); err != nil {
			fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
			return 1
		}
		return 0
	}

	if err := slack.New(c.SlackWebhookURL, c.Timeout).Post(ctx, msg); err != nil {
		l.Failure("slack", err.Error(), nil)
		return 1
	}
	l.Healthy("slack", "summary posted", nil)

	return 0
}

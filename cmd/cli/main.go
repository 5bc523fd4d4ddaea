package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/aryan0dhankhar/reviewdesk/internal/featureflags"
	"github.com/aryan0dhankhar/reviewdesk/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/reviewdesk/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := "warn"
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = v
	}
	log := logger.New(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stdout, log, appOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errSignInRequired) {
			fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		a.Close()
		os.Exit(1)
	}
}

// run dispatches a command line to its handler
func (a *app) run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		printUsage(a.out)
		return errors.New("missing command")
	}

	command, rest := args[0], args[1:]
	switch command {
	case "auth":
		return a.handleAuth(ctx, rest)
	case "open":
		return a.openRoute(rest)
	case "dashboard":
		return a.showDashboard(ctx)
	case "reviews":
		return a.handleReviews(ctx, rest)
	case "analytics":
		return a.showAnalytics(ctx)
	case "reports":
		return a.handleReports(ctx, rest)
	case "settings":
		return a.handleSettings(ctx, rest)
	case "watch":
		return a.watch(ctx, rest)
	case "help":
		printUsage(a.out)
		return nil
	default:
		printUsage(a.out)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) handleAuth(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: reviewdesk auth <login|logout|who>")
	}

	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		return a.logout(ctx)
	case "who":
		return a.whoAmI()
	default:
		return fmt.Errorf("unknown auth command: %s", args[0])
	}
}

func (a *app) handleReviews(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return a.listReviews(ctx, nil)
	}

	switch args[0] {
	case "list":
		return a.listReviews(ctx, args[1:])
	case "reply":
		return a.replyToReview(ctx, args[1:])
	default:
		return a.listReviews(ctx, args)
	}
}

func (a *app) handleReports(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return a.listSchedules(ctx)
	}

	switch args[0] {
	case "schedules":
		return a.listSchedules(ctx)
	case "download":
		return a.downloadReport(ctx, args[1:])
	default:
		return fmt.Errorf("unknown reports command: %s", args[0])
	}
}

func (a *app) handleSettings(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return a.showSettings(ctx)
	}

	switch args[0] {
	case "show":
		return a.showSettings(ctx)
	case "set":
		return a.setToggles(ctx, args[1:])
	case "add-rule":
		return a.addRule(ctx, args[1:])
	case "update-rule":
		return a.updateRule(ctx, args[1:])
	case "remove-rule":
		return a.removeRule(ctx, args[1:])
	default:
		return fmt.Errorf("unknown settings command: %s", args[0])
	}
}

func printUsage(out io.Writer) {
	fmt.Fprint(out, `ReviewDesk CLI

Usage:
  reviewdesk <command> [options]

Commands:
  auth       Session management (login, logout, who)
  open       Resolve a route through the guard, e.g. open /analytics
  dashboard  KPI overview, NSS trend and top stores
  reviews    Review inbox (list [-search -status -source], reply <id> <text>)
  analytics  Channel performance, store comparison and heatmap
  reports    Report schedules and downloads (schedules, download <csv|pdf|xlsx>)
  settings   Toggles and auto-reply rules (show, set, add-rule, update-rule, remove-rule)
  watch      Refresh the dashboard until interrupted or the session expires
  help       Show this help message

Environment Variables:
  API_BASE_URL      Backend endpoint (default: http://localhost:8080)
  MOCK_API          Answer API calls in-process (default: true)
  STORAGE_BACKEND   Session storage: memory, file, redis, postgres (default: file)
  STORAGE_PATH      File storage location

Examples:
  reviewdesk auth login -email admin@example.com -password secret
  reviewdesk reviews list -status pending -source google
  reviewdesk reviews reply rev-001 "Thanks for the feedback!"
  reviewdesk reports download -o /tmp csv
  reviewdesk settings set -dark-mode=true

Feature Flags:
`)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range featureflags.All() {
		fmt.Fprintf(w, "  %s\t%s\n", featureflags.EnvVar(f.Name), f.Description)
	}
	w.Flush()
}

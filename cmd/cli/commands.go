package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/router"
	"github.com/aryan0dhankhar/reviewdesk/internal/view"
	"github.com/aryan0dhankhar/reviewdesk/internal/worker"
)

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// printToast writes the toast left by the last view action
func (a *app) printToast() {
	t, ok := a.toasts.Current()
	if !ok {
		return
	}
	mark := "•"
	switch t.Kind {
	case view.ToastSuccess:
		mark = "✓"
	case view.ToastError:
		mark = "✗"
	}
	fmt.Fprintf(a.out, "%s %s\n", mark, t.Message)
}

// Auth commands
func (a *app) login(ctx context.Context, args []string) error {
	fs := a.newFlagSet("login")
	email := fs.String("email", "", "user email")
	password := fs.String("password", "", "password")
	returnTo := fs.String("return", "", "route to open after signing in")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *returnTo != "" {
		a.nav.Navigate(router.LoginRedirect(*returnTo))
	}

	page := view.NewLoginPage(a.auth, a.nav, a.toasts)
	loc, err := page.Submit(ctx, view.LoginForm{Email: *email, Password: *password})
	if err != nil {
		if view.IsValidation(err) {
			fs.PrintDefaults()
			return err
		}
		a.printToast()
		return err
	}

	user, _ := a.session.CurrentUser()
	fmt.Fprintf(a.out, "✓ Logged in as: %s <%s>\n", user.Name, user.Email)
	fmt.Fprintf(a.out, "Opened %s (%s)\n", loc.Route.Title, loc.Route.Path)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "✓ Logged out")
	return nil
}

func (a *app) whoAmI() error {
	snap := a.session.Snapshot()
	if !snap.Authenticated || snap.User == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\t%s\n", snap.User.Name)
	fmt.Fprintf(w, "EMAIL\t%s\n", snap.User.Email)
	fmt.Fprintf(w, "ROLE\t%s\n", snap.User.Role)
	if exp, ok := a.session.ExpiresAt(); ok {
		fmt.Fprintf(w, "EXPIRES\t%s\n", exp.Local().Format(time.RFC1123))
	}
	return w.Flush()
}

func (a *app) openRoute(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: reviewdesk open <route>")
	}

	loc := a.nav.Navigate(args[0])
	fmt.Fprintf(a.out, "%s (%s)\n", loc.Route.Title, loc.Route.Path)
	if loc.ReturnURL != "" {
		fmt.Fprintf(a.out, "Sign in to continue to %s\n", loc.ReturnURL)
	}
	return nil
}

// Dashboard
func (a *app) showDashboard(ctx context.Context) error {
	if err := a.enter(router.PathDashboard); err != nil {
		return err
	}

	dash := view.NewDashboard(a.client, a.toasts, a.log)
	if err := dash.Load(ctx); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}
	stats, _ := dash.Stats()

	k := stats.KPIs
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NSS\tSLA\tRATING\tPENDING\tVOLUME")
	fmt.Fprintf(w, "%.1f\t%.1f%%\t%.1f\t%d\t%d\n", k.NSS, k.SLA, k.Rating, k.Pending, k.Volume)
	w.Flush()

	fmt.Fprintf(a.out, "\nNSS trend (avg %.1f)\n", view.AverageNSS(stats.Charts.NSSTrend))
	w = tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, p := range stats.Charts.NSSTrend {
		fmt.Fprintf(w, "%s\t%.1f\n", p.Label, p.Value)
	}
	w.Flush()

	fmt.Fprintln(a.out, "\nTop stores")
	w = tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for i, s := range stats.Charts.TopStores {
		fmt.Fprintf(w, "%d.\t%s\t%.1f\n", i+1, s.Name, s.Score)
	}
	return w.Flush()
}

// Reviews
func (a *app) listReviews(ctx context.Context, args []string) error {
	fs := a.newFlagSet("reviews")
	search := fs.String("search", "", "match review text or store name")
	status := fs.String("status", "", "comma separated statuses (pending,replied,resolved)")
	source := fs.String("source", "", "comma separated sources (google,facebook,in-person)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.enter(router.PathReviews); err != nil {
		return err
	}

	reviews := view.NewReviews(a.client, a.toasts, a.cfg.ReplyCollapseDelay, a.log)
	if err := reviews.Load(ctx); err != nil {
		return fmt.Errorf("failed to load reviews: %w", err)
	}

	filter := view.Filter{Search: *search}
	for _, s := range splitList(*status) {
		filter.Statuses = append(filter.Statuses, domain.ReviewStatus(s))
	}
	for _, s := range splitList(*source) {
		filter.Sources = append(filter.Sources, domain.ReviewSource(s))
	}
	reviews.SetFilter(filter)

	visible := reviews.Visible()
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSOURCE\tSTORE\tRATING\tSTATUS\tTEXT")
	for _, r := range visible {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.Date, r.Source, r.StoreName, r.Rating, r.Status, truncate(r.Text, 48))
	}
	w.Flush()

	all := reviews.All()
	fmt.Fprintf(a.out, "\nShowing %d of %d reviews (%d pending)\n", len(visible), len(all), view.PendingCount(all))
	return nil
}

func (a *app) replyToReview(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: reviewdesk reviews reply <review-id> <text>")
	}
	id, text := args[0], strings.Join(args[1:], " ")

	if err := a.enter(router.PathReviews); err != nil {
		return err
	}

	reviews := view.NewReviews(a.client, a.toasts, a.cfg.ReplyCollapseDelay, a.log)
	if err := reviews.Load(ctx); err != nil {
		return fmt.Errorf("failed to load reviews: %w", err)
	}

	found := false
	for _, r := range reviews.All() {
		if r.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("review %s not found", id)
	}

	reviews.Expand(id)
	err := reviews.SubmitReply(ctx, id, text)
	if view.IsValidation(err) {
		return err
	}
	a.printToast()
	return err
}

// Analytics
func (a *app) showAnalytics(ctx context.Context) error {
	if err := a.enter(router.PathAnalytics); err != nil {
		return err
	}

	an := view.NewAnalytics(a.client, a.toasts, a.log)
	if err := an.Load(ctx); err != nil {
		return fmt.Errorf("failed to load analytics: %w", err)
	}

	perf := an.ChannelPerf()
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tSPEED (h)\tSENTIMENT")
	for _, p := range perf {
		fmt.Fprintf(w, "%s\t%.1f\t%.0f\n", p.Channel, p.Speed, p.Sentiment)
	}
	fmt.Fprintf(w, "average\t%.1f\t%.0f\n", view.AverageSpeed(perf), view.AverageSentiment(perf))
	w.Flush()

	stores := an.Stores()
	fmt.Fprintln(a.out)
	w = tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STORE\tCITY\tRATING\tREVIEWS\tNSS\tRESPONSE")
	for _, s := range stores {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%d\t%.1f\t%.0f%%\n", s.Name, s.City, s.Rating, s.ReviewCount, s.NSS, s.ResponseRate)
	}
	w.Flush()
	fmt.Fprintf(a.out, "Average rating: %.2f\n", view.AverageStoreRating(stores))

	heatmap, ok := an.Heatmap()
	if !ok {
		return nil
	}
	fmt.Fprintln(a.out)
	w = tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DAY\t%s\n", strings.ToUpper(strings.Join(heatmap.TimeSlots, "\t")))
	for _, day := range heatmap.Days {
		cells := make([]string, 0, len(heatmap.TimeSlots))
		for _, slot := range heatmap.TimeSlots {
			v, found := view.HeatmapValue(heatmap, day, slot)
			if !found {
				cells = append(cells, "-")
				continue
			}
			cells = append(cells, fmt.Sprintf("%.0f", v))
		}
		fmt.Fprintf(w, "%s\t%s\n", day, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

// Reports
func (a *app) listSchedules(ctx context.Context) error {
	if err := a.enter(router.PathReports); err != nil {
		return err
	}

	reports := view.NewReports(a.client, a.toasts, a.log)
	if err := reports.Load(ctx); err != nil {
		return fmt.Errorf("failed to load report schedules: %w", err)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFREQUENCY\tFORMAT\tNEXT RUN\tRECIPIENTS")
	for _, s := range reports.Schedules() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Name, s.Frequency, s.Format, s.NextRun, strings.Join(s.Recipients, ", "))
	}
	return w.Flush()
}

func (a *app) downloadReport(ctx context.Context, args []string) error {
	fs := a.newFlagSet("download")
	dir := fs.String("o", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: reviewdesk reports download [-o dir] <csv|pdf|xlsx>")
	}

	if err := a.enter(router.PathReports); err != nil {
		return err
	}

	reports := view.NewReports(a.client, a.toasts, a.log)
	file, err := reports.Download(ctx, domain.ReportFormat(fs.Arg(0)))
	if err != nil {
		if !view.IsValidation(err) {
			a.printToast()
		}
		return err
	}

	path := filepath.Join(*dir, filepath.Base(file.Name))
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	a.printToast()
	fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", path, len(file.Data))
	return nil
}

// Settings
func (a *app) loadSettings(ctx context.Context) (*view.Settings, error) {
	if err := a.enter(router.PathSettings); err != nil {
		return nil, err
	}
	settings := view.NewSettings(a.client, a.toasts, a.log)
	if err := settings.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func (a *app) saveSettings(ctx context.Context, settings *view.Settings) error {
	err := settings.Save(ctx)
	a.printToast()
	if err != nil {
		return err
	}
	current, _ := settings.Current()
	a.printSettings(current)
	return nil
}

func (a *app) showSettings(ctx context.Context) error {
	settings, err := a.loadSettings(ctx)
	if err != nil {
		return err
	}
	current, _ := settings.Current()
	a.printSettings(current)
	return nil
}

func (a *app) printSettings(s domain.AppSettings) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Sentiment analysis\t%s\n", onOff(s.SentimentAnalysisEnabled))
	fmt.Fprintf(w, "Dark mode\t%s\n", onOff(s.DarkModeEnabled))
	w.Flush()

	fmt.Fprintln(a.out, "\nAuto-reply rules")
	w = tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRIGGER\tMESSAGE")
	for _, r := range s.AutoReplyRules {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, r.Trigger, r.Message)
	}
	w.Flush()
}

func (a *app) setToggles(ctx context.Context, args []string) error {
	fs := a.newFlagSet("set")
	sentiment := fs.Bool("sentiment-analysis", false, "enable sentiment analysis")
	dark := fs.Bool("dark-mode", false, "enable dark mode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if len(set) == 0 {
		fs.PrintDefaults()
		return errors.New("nothing to change")
	}

	settings, err := a.loadSettings(ctx)
	if err != nil {
		return err
	}
	if set["sentiment-analysis"] {
		settings.SetSentimentAnalysis(*sentiment)
	}
	if set["dark-mode"] {
		settings.SetDarkMode(*dark)
	}
	return a.saveSettings(ctx, settings)
}

func (a *app) addRule(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: reviewdesk settings add-rule <positive|neutral|negative> <message>")
	}

	trigger, err := parseTrigger(args[0])
	if err != nil {
		return err
	}

	settings, err := a.loadSettings(ctx)
	if err != nil {
		return err
	}
	settings.AddRule(trigger, strings.Join(args[1:], " "))
	return a.saveSettings(ctx, settings)
}

func (a *app) updateRule(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: reviewdesk settings update-rule <rule-id> <positive|neutral|negative> <message>")
	}

	trigger, err := parseTrigger(args[1])
	if err != nil {
		return err
	}

	settings, err := a.loadSettings(ctx)
	if err != nil {
		return err
	}
	if err := settings.UpdateRule(args[0], trigger, strings.Join(args[2:], " ")); err != nil {
		return err
	}
	return a.saveSettings(ctx, settings)
}

func (a *app) removeRule(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: reviewdesk settings remove-rule <rule-id>")
	}

	settings, err := a.loadSettings(ctx)
	if err != nil {
		return err
	}
	if err := settings.RemoveRule(args[0]); err != nil {
		return err
	}
	return a.saveSettings(ctx, settings)
}

// watch refreshes the dashboard on an interval while the session watcher
// runs alongside it. It returns when ctx ends or the session expires.
func (a *app) watch(ctx context.Context, args []string) error {
	fs := a.newFlagSet("watch")
	interval := fs.Duration("interval", 30*time.Second, "dashboard refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return errors.New("interval must be positive")
	}

	if err := a.enter(router.PathDashboard); err != nil {
		return err
	}

	authCh, unsubscribe := a.session.Subscribe()
	defer unsubscribe()

	watcher := worker.NewSessionWatcher(a.session, a.nav, a.log, a.cfg.SessionCheckInterval)
	dash := view.NewDashboard(a.client, a.toasts, a.log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		watcher.Start(gctx)
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ok := <-authCh:
				if !ok {
					return fmt.Errorf("%w: session expired", errSignInRequired)
				}
			}
		}
	})
	g.Go(func() error {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for {
			a.refreshLine(gctx, dash)
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
	return g.Wait()
}

func (a *app) refreshLine(ctx context.Context, dash *view.Dashboard) {
	err := dash.Load(ctx)
	if errors.Is(err, view.ErrSuperseded) || ctx.Err() != nil {
		return
	}
	if err != nil {
		fmt.Fprintf(a.out, "%s  ✗ %v\n", time.Now().Format(time.TimeOnly), err)
		return
	}
	stats, _ := dash.Stats()
	k := stats.KPIs
	fmt.Fprintf(a.out, "%s  NSS %.1f  SLA %.1f%%  rating %.1f  pending %d  volume %d\n",
		time.Now().Format(time.TimeOnly), k.NSS, k.SLA, k.Rating, k.Pending, k.Volume)
}

func parseTrigger(s string) (domain.Sentiment, error) {
	trigger, err := domain.ParseSentiment(s)
	if err != nil {
		return "", &view.ValidationError{Field: "trigger", Message: err.Error()}
	}
	return trigger, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(strings.ToLower(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

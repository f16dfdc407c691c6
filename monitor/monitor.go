package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/boardwatch/boardwatch/extract"
	"github.com/boardwatch/boardwatch/idgen"
	"github.com/boardwatch/boardwatch/monitor/internal/dateinfer"
	"github.com/boardwatch/boardwatch/monitor/internal/discover"
	"github.com/boardwatch/boardwatch/monitor/internal/fetch"
	"github.com/boardwatch/boardwatch/monitor/internal/store"
	"github.com/boardwatch/boardwatch/report"
)

// Service runs the monitoring pipeline.
type Service struct {
	cfg      Config
	logger   *slog.Logger
	newID    idgen.Generator
	selector *dateinfer.Selector
	runlog   *store.Store
	renderer *fetch.Renderer

	// Collaborators, replaceable in tests.
	discoverDocs func(ctx context.Context) []discover.Doc
	fetchDoc     func(ctx context.Context, url string) (*fetch.Result, error)
	sendMail     func(ctx context.Context, r *report.Report, html []byte) error
	now          func() time.Time
}

// New creates a Service from config. The run log opens lazily-tolerantly:
// if it cannot be opened the service still runs, without a log.
func New(cfg Config) (*Service, error) {
	cfg.defaults()
	if len(cfg.DistrictURLs) == 0 && cfg.BoardDocsURL == "" {
		return nil, ErrNoSources
	}

	s := &Service{
		cfg:      cfg,
		logger:   cfg.Logger,
		newID:    idgen.Default,
		selector: dateinfer.NewSelector(dateinfer.SelectorConfig{}),
		now:      time.Now,
	}

	var robots *fetch.Robots
	if cfg.RespectRobots {
		robots = fetch.NewRobots(cfg.UserAgent, cfg.Logger)
	}
	fetcher := fetch.New(fetch.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		MaxBytes:  cfg.MaxFetchBytes,
		Delay:     cfg.FetchDelay,
		Robots:    robots,
		Logger:    cfg.Logger,
	})
	s.fetchDoc = fetcher.Fetch

	if cfg.UseBrowser {
		s.renderer = fetch.NewRenderer(cfg.Logger)
	}

	s.discoverDocs = s.defaultDiscover
	mailer := report.NewMailer(cfg.Mail)
	s.sendMail = mailer.Send

	if cfg.RunLogPath != "off" {
		runlog, err := store.Open(cfg.RunLogPath)
		if err != nil {
			cfg.Logger.Warn("monitor: run log unavailable", "path", cfg.RunLogPath, "error", err)
		} else {
			s.runlog = runlog
		}
	}

	return s, nil
}

// Close releases the run log and the headless browser if started.
func (s *Service) Close() error {
	if s.renderer != nil {
		s.renderer.Close()
	}
	if s.runlog != nil {
		return s.runlog.Close()
	}
	return nil
}

// defaultDiscover collects document references from the configured
// district pages and the portal. Page-level failures are warnings; a run
// with zero discovered documents is still a valid (empty) run.
func (s *Service) defaultDiscover(ctx context.Context) []discover.Doc {
	var docs []discover.Doc

	for _, pageURL := range s.cfg.DistrictURLs {
		res, err := s.fetchDoc(ctx, pageURL)
		if err != nil {
			s.logger.Warn("monitor: district page fetch failed", "url", pageURL, "error", err)
			continue
		}
		found, err := discover.District(res.Body, pageURL)
		if err != nil {
			s.logger.Warn("monitor: district page parse failed", "url", pageURL, "error", err)
			continue
		}
		docs = append(docs, found...)
	}

	if s.cfg.BoardDocsURL != "" {
		bd := &discover.BoardDocs{
			Fetch:    s.fetchPortalPage,
			MaxPages: s.cfg.MaxBoardDocsPages,
			MaxFiles: s.cfg.MaxBoardDocsFiles,
			Logger:   s.logger,
		}
		found, err := bd.Crawl(ctx, s.cfg.BoardDocsURL)
		if err != nil {
			s.logger.Warn("monitor: portal crawl failed", "url", s.cfg.BoardDocsURL, "error", err)
		} else {
			docs = append(docs, found...)
		}
	}

	return docs
}

// fetchPortalPage retrieves portal HTML, through the headless browser when
// configured (the hosted portal serves an empty shell to plain HTTP).
func (s *Service) fetchPortalPage(ctx context.Context, url string) ([]byte, error) {
	if s.renderer != nil {
		html, err := s.renderer.Render(ctx, url, 2*time.Second)
		if err == nil {
			return []byte(html), nil
		}
		s.logger.Warn("monitor: browser render failed, falling back to http", "url", url, "error", err)
	}
	res, err := s.fetchDoc(ctx, url)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// workItem is one queued document; depth 1 items came from inside an HTML
// wrapper page and are not expanded further.
type workItem struct {
	ref   DocumentRef
	depth int
}

// Run executes one full pipeline pass: discover, process each document,
// assemble the report, persist artifacts, deliver, and save state. Fatal
// errors are limited to artifact/state persistence and mandatory-delivery
// failures; everything else degrades to logged outcomes.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	started := s.now()
	runID := s.newID()
	log := s.logger.With("run_id", runID)

	st := LoadState(s.cfg.StatePath, log)
	win := ComputeWindow(st, started, s.cfg.BackfillStart)
	log.Info("monitor: run starting",
		"window_start", win.Start.Format("2006-01-02"),
		"window_end", win.End.Format("2006-01-02"),
		"backfill", win.Backfill,
		"seen", st.Size())

	storeRun := &store.Run{
		ID:          runID,
		StartedAt:   started.UnixMilli(),
		WindowStart: win.Start.Format("2006-01-02"),
		WindowEnd:   win.End.Format("2006-01-02"),
		Backfill:    win.Backfill,
	}
	s.logRun(ctx, func() error { return s.runlog.BeginRun(ctx, storeRun) })

	queue := make([]workItem, 0, 64)
	enqueued := make(map[string]struct{})
	for _, d := range s.discoverDocs(ctx) {
		s.enqueue(&queue, enqueued, DocumentRef{Title: d.Title, URL: d.URL, Source: d.Source}, 0)
	}
	log.Info("monitor: discovery complete", "documents", len(queue))

	result := &RunResult{RunID: runID, Window: win, StartedAt: started}
	var rows []report.Row
	var newFPs []string

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		result.DocsTotal++

		outcome := s.processDocument(ctx, item, &queue, enqueued, win, st, &rows, &newFPs)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Outcome == OutcomeMatched {
			result.DocsMatched++
			result.NewMentions += outcome.NewMentions
		}
		s.logDocument(ctx, runID, outcome)
	}

	sortRows(rows)

	rep := &report.Report{
		Rows:        rows,
		WindowStart: win.Start,
		WindowEnd:   win.End,
		Backfill:    win.Backfill,
		GeneratedAt: started,
	}

	html, err := report.SaveArtifacts(s.cfg.OutputDir, rep)
	if err != nil {
		s.finishRun(ctx, storeRun, result, "failed", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrArtifacts, err)
	}

	delivered, err := s.deliver(ctx, rep, html, log)
	if err != nil {
		s.finishRun(ctx, storeRun, result, "failed", err.Error())
		return nil, err
	}
	result.Delivered = delivered

	// An ignore-dedupe run reports everything but must not poison the
	// seen set, or the next normal run would silently drop it all.
	if !s.cfg.DisableDedupe {
		for _, fp := range newFPs {
			st.MarkSeen(fp)
		}
	}
	st.BackfillDone = true
	st.LastRunEnd = win.End.Format("2006-01-02")
	if err := st.Save(s.cfg.StatePath); err != nil {
		s.finishRun(ctx, storeRun, result, "failed", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStatePersist, err)
	}

	result.FinishedAt = s.now()
	s.finishRun(ctx, storeRun, result, "ok", "")
	log.Info("monitor: run complete",
		"documents", result.DocsTotal,
		"matched", result.DocsMatched,
		"new_mentions", result.NewMentions,
		"delivered", result.Delivered)
	return result, nil
}

func (s *Service) enqueue(queue *[]workItem, enqueued map[string]struct{}, ref DocumentRef, depth int) {
	if _, dup := enqueued[ref.URL]; dup {
		return
	}
	enqueued[ref.URL] = struct{}{}
	if ref.Source == "" {
		ref.Source = SourceUnknown
	}
	*queue = append(*queue, workItem{ref: ref, depth: depth})
}

// processDocument runs the per-document state machine and returns its
// outcome. rows and newFPs accumulate reportable mentions.
func (s *Service) processDocument(ctx context.Context, item workItem, queue *[]workItem, enqueued map[string]struct{}, win Window, st *State, rows *[]report.Row, newFPs *[]string) DocOutcome {
	ref := item.ref
	out := DocOutcome{Ref: ref}
	log := s.logger.With("url", ref.URL)

	res, err := s.fetchDoc(ctx, ref.URL)
	if err != nil {
		log.Warn("monitor: fetch failed", "error", err)
		out.Outcome = OutcomeError
		out.Error = err.Error()
		return out
	}

	format := extract.Detect(res.ContentType, ref.URL)
	ex, err := extract.FromBytes(res.Body, format)
	if err != nil {
		log.Warn("monitor: extraction failed", "format", format, "error", err)
		out.Outcome = OutcomeError
		out.Error = err.Error()
		return out
	}

	// An HTML page can be a wrapper around the real document; pull its
	// links into the queue, one level deep.
	if format == extract.FormatHTML && item.depth == 0 {
		if inner, err := discover.District(res.Body, ref.URL); err == nil {
			for _, d := range inner {
				s.enqueue(queue, enqueued, DocumentRef{Title: d.Title, URL: d.URL, Source: ref.Source}, 1)
			}
		}
	}

	title := ref.Title
	if title == "" {
		title = ex.Title
	}
	out.Ref.Title = title

	if strings.TrimSpace(ex.Text) == "" {
		out.Outcome = OutcomeSkippedNoText
		return out
	}

	scan := s.ScanText(title, ref.URL, ex.Text)

	if scan.HasDate {
		out.MeetingDate = scan.Date.Format("2006-01-02")
	}

	if scan.HasDate && s.cfg.MinYear > 0 && scan.Date.Year() < s.cfg.MinYear {
		out.Outcome = OutcomeSkippedMinYear
		return out
	}

	// No inferred date means no evidence either way; absence must not
	// suppress a real match, so undated documents are always in range.
	if scan.HasDate && !win.Contains(scan.Date) {
		out.Outcome = OutcomeSkippedOutOfRange
		return out
	}

	if len(scan.Mentions) == 0 {
		out.Outcome = OutcomeNoMentions
		return out
	}

	for _, m := range scan.Mentions {
		if !s.cfg.DisableDedupe && st.Seen(m.Fingerprint) {
			continue
		}
		*newFPs = append(*newFPs, m.Fingerprint)
		*rows = append(*rows, report.Row{
			Date:    out.MeetingDate,
			Source:  ref.Source,
			Title:   title,
			URL:     ref.URL,
			Keyword: m.Keyword,
			Snippet: m.Snippet,
		})
		out.NewMentions++
	}

	if out.NewMentions == 0 {
		out.Outcome = OutcomeDuplicatesOnly
		return out
	}
	out.Outcome = OutcomeMatched
	return out
}

// deliver handles the configured mail mode. It returns whether the report
// went out, and an error only when delivery is mandatory.
func (s *Service) deliver(ctx context.Context, rep *report.Report, html []byte, log *slog.Logger) (bool, error) {
	switch s.cfg.MailMode {
	case MailOff:
		return false, nil
	case MailAuto, MailRequired:
	default:
		log.Warn("monitor: unknown mail mode, treating as auto", "mode", s.cfg.MailMode)
	}

	if !s.cfg.Mail.Complete() {
		if s.cfg.MailMode == MailRequired {
			return false, fmt.Errorf("%w: mail config incomplete", ErrMailRequired)
		}
		log.Warn("monitor: mail config incomplete, keeping artifacts only")
		return false, nil
	}

	if err := s.sendMail(ctx, rep, html); err != nil {
		if s.cfg.MailMode == MailRequired {
			return false, fmt.Errorf("%w: %v", ErrMailRequired, err)
		}
		log.Warn("monitor: mail delivery failed, keeping artifacts", "error", err)
		return false, nil
	}
	return true, nil
}

// sortRows orders newest meeting first, then by title; undated rows sink
// to the end.
func sortRows(rows []report.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].Title < rows[j].Title
	})
}

// logRun and logDocument downgrade run-log failures to warnings; the run
// log is observability, never a reason to fail a run.
func (s *Service) logRun(ctx context.Context, fn func() error) {
	if s.runlog == nil {
		return
	}
	if err := fn(); err != nil {
		s.logger.Warn("monitor: run log write failed", "error", err)
	}
}

func (s *Service) logDocument(ctx context.Context, runID string, out DocOutcome) {
	if s.runlog == nil {
		return
	}
	err := s.runlog.InsertDocument(ctx, &store.Document{
		ID:          s.newID(),
		RunID:       runID,
		URL:         out.Ref.URL,
		Title:       out.Ref.Title,
		Source:      out.Ref.Source,
		Outcome:     string(out.Outcome),
		MeetingDate: out.MeetingDate,
		MentionsNew: out.NewMentions,
		Error:       out.Error,
		ProcessedAt: s.now().UnixMilli(),
	})
	if err != nil {
		s.logger.Warn("monitor: run log write failed", "error", err)
	}
}

func (s *Service) finishRun(ctx context.Context, run *store.Run, result *RunResult, status, errMsg string) {
	if s.runlog == nil {
		return
	}
	run.DocsTotal = result.DocsTotal
	run.DocsMatched = result.DocsMatched
	run.MentionsNew = result.NewMentions
	run.Status = status
	run.Error = errMsg
	if err := s.runlog.FinishRun(ctx, run); err != nil {
		s.logger.Warn("monitor: run log write failed", "error", err)
	}
}

// Runs exposes recent run records for the status server.
func (s *Service) Runs(ctx context.Context, limit int) ([]*store.Run, error) {
	if s.runlog == nil {
		return nil, nil
	}
	return s.runlog.RecentRuns(ctx, limit)
}

// StateSummary reports the persisted dedupe state for the status server.
func (s *Service) StateSummary() map[string]any {
	st := LoadState(s.cfg.StatePath, s.logger)
	return map[string]any{
		"seen_hashes":   st.Size(),
		"backfill_done": st.BackfillDone,
		"last_run_end":  st.LastRunEnd,
	}
}

// OutputDir exposes the artifact directory for the status server.
func (s *Service) OutputDir() string {
	return s.cfg.OutputDir
}

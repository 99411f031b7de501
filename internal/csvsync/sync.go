package csvsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"portfolio/internal/catalog"
)

// Options configures a sync run.
type Options struct {
	CSVPath   string
	JSONPath  string
	Delimiter rune         // DefaultDelimiter when zero
	Logger    *slog.Logger // slog.Default() when nil
}

// Stats counts the non-fatal problems found during a run.
type Stats struct {
	MalformedQuotes int
	DuplicateIDs    int
	EmptyIDs        int
	InvalidVideos   int
	TaxonomyReset   bool
}

// Result reports a completed run.
type Result struct {
	RunID    uuid.UUID
	CSVPath  string
	JSONPath string
	Projects int
	Stats    Stats
}

// Summary is the line printed for editors after a run.
func (r Result) Summary() string {
	return fmt.Sprintf("Updated %s with %d projects from CSV.", r.JSONPath, r.Projects)
}

// Run regenerates the catalog document at opts.JSONPath from the spreadsheet
// at opts.CSVPath, keeping the taxonomy of the existing document.
//
// An unreadable CSV is the only fatal error; nothing is written in that case.
// A missing or corrupt previous document starts from an empty taxonomy.
func Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = DefaultDelimiter
	}
	runID := uuid.New()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", runID.String())

	res := Result{RunID: runID, CSVPath: opts.CSVPath, JSONPath: opts.JSONPath}

	text, err := ReadFile(opts.CSVPath)
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	for _, issue := range Lint(text, opts.Delimiter) {
		res.Stats.MalformedQuotes++
		logger.Warn("malformed csv field", "row", issue.Row, "field", issue.Column, "error", issue.Err)
	}

	rows := ToObjects(Parse(text, opts.Delimiter))
	projects := make([]catalog.Project, 0, len(rows))
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		p := MapRow(row)
		line := i + 2 // header is line 1

		switch {
		case p.ID == "":
			res.Stats.EmptyIDs++
			logger.Warn("project without id", "line", line)
		case seen[p.ID] > 0:
			res.Stats.DuplicateIDs++
			logger.Warn("duplicate project id", "id", p.ID, "line", line, "first_line", seen[p.ID])
		default:
			seen[p.ID] = line
		}

		if p.Video != nil {
			if _, err := p.Video.Embed(); err != nil {
				res.Stats.InvalidVideos++
				logger.Warn("video cannot be embedded", "id", p.ID, "line", line, "error", err)
			}
		}
		projects = append(projects, p)
	}

	tax, err := ReadTaxonomy(opts.JSONPath)
	if err != nil {
		res.Stats.TaxonomyReset = true
		if errors.Is(err, catalog.ErrNotFound) {
			logger.Warn("could not read existing JSON, starting fresh", "path", opts.JSONPath)
		} else {
			logger.Warn("could not read existing JSON, starting fresh", "path", opts.JSONPath, "error", err)
		}
		tax = Taxonomy{}
	}

	data, err := Encode(Merge(tax, projects))
	if err != nil {
		return res, err
	}
	if err := WriteFileAtomic(opts.JSONPath, data, 0o644); err != nil {
		return res, err
	}

	res.Projects = len(projects)
	logger.Info("catalog regenerated",
		"csv", opts.CSVPath,
		"json", opts.JSONPath,
		"projects", res.Projects,
	)
	return res, nil
}

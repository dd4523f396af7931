package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"scout/internal/formatter"
	"scout/internal/models"
	"scout/internal/repositories"
	"scout/internal/shared"
)

// HistoryList lists recent searches from the local history database.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	history := repositories.NewHistoryRepository(db)
	records, err := history.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(records, true)
	}

	if len(records) == 0 {
		return r.writePlain("No searches recorded yet.\n")
	}

	r.writePlainHeader(fmt.Sprintf("Search History (%d)", len(records)))
	for _, record := range records {
		marker := statusMarker(record.Status)
		r.writePlain("%s %s  %q (%s)\n", marker, record.SessionID, record.UserInput, record.InputType)
		r.writePlain("    %s • %s", record.CreatedAt.Format("2006-01-02 15:04"), record.Status)
		if record.Status == models.SearchCompleted {
			r.writePlain(" • %d results", record.ResultCount)
		}
		if record.ErrorMessage != "" {
			r.writePlain(" • %s", record.ErrorMessage)
		}
		r.writePlain("\n")
	}
	return nil
}

// HistoryShow displays one recorded search with its cached results.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	record, history, db, err := r.lookupSearch(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := history.ResultsFor(record.ID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"search": record, "results": results}, true)
	}

	r.writePlainHeader(fmt.Sprintf("%q (%s)", record.UserInput, record.SessionID))
	r.writePlain("Status: %s\n", record.Status)
	if record.ErrorMessage != "" {
		r.writePlain("Error: %s\n", record.ErrorMessage)
	}
	r.writePlain("Started: %s\n\n", record.CreatedAt.Format("2006-01-02 15:04:05"))

	export := &formatter.SearchExport{
		SessionID: record.SessionID,
		Query:     record.UserInput,
		InputType: record.InputType,
		Results:   results,
	}
	return r.writePlain("%s", formatter.RenderResultCards(export))
}

// HistoryExport writes a recorded search's results to a file.
func (r *Runner) HistoryExport(ctx context.Context, cmd *cli.Command) error {
	record, history, db, err := r.lookupSearch(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	results, err := history.ResultsFor(record.ID)
	if err != nil {
		return err
	}

	export := &formatter.SearchExport{
		SessionID: record.SessionID,
		Query:     record.UserInput,
		InputType: record.InputType,
		Results:   results,
	}

	output := cmd.String("output")
	switch strings.ToLower(cmd.String("format")) {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", result.ResultsFile)
		r.writePlain("Metadata: %s\n", result.MetadataFile)
		return nil

	case "markdown", "md":
		path, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", path)

	case "text", "txt":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", path)

	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, cmd.String("format"))
	}
}

// HistoryDelete removes a search from local history.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	record, history, db, err := r.lookupSearch(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := history.Delete(record.ID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted search %s\n", record.SessionID)
}

// Results fetches the final results of a completed session from the backend.
func (r *Runner) Results(ctx context.Context, cmd *cli.Command) error {
	sessionID := strings.TrimSpace(cmd.StringArg("session"))
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", shared.ErrMissingArgument)
	}

	resp, err := r.discovery.Results(ctx, sessionID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(resp, true)
	}

	export := &formatter.SearchExport{SessionID: resp.SessionID, Results: resp.Results}
	r.writePlainHeader(fmt.Sprintf("Results (%d)", resp.TotalResults))
	return r.writePlain("%s", formatter.RenderResultCards(export))
}

// lookupSearch opens the database and resolves the session argument to a record.
// The caller owns the returned db handle.
func (r *Runner) lookupSearch(cmd *cli.Command) (*models.SearchRecord, *repositories.HistoryRepository, interface{ Close() error }, error) {
	sessionID := strings.TrimSpace(cmd.StringArg("session"))
	if sessionID == "" {
		return nil, nil, nil, fmt.Errorf("%w: session id is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return nil, nil, nil, err
	}

	history := repositories.NewHistoryRepository(db)
	record, err := history.GetBySessionID(sessionID)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, sessionID)
	}

	return record, history, db, nil
}

func statusMarker(status string) string {
	switch status {
	case models.SearchCompleted:
		return "✓"
	case models.SearchFailed:
		return "✗"
	case models.SearchRejected:
		return "−"
	default:
		return "…"
	}
}

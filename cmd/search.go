package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"scout/internal/formatter"
	"scout/internal/models"
	"scout/internal/repositories"
	"scout/internal/shared"
	"scout/internal/workflow"
)

// Search runs the full discovery workflow interactively: start a session,
// stream progress, answer confirmation prompts, and print ranked results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}

	inputType := models.InputKeyword
	if cmd.Bool("url") {
		inputType = models.InputURL
	}

	if limit, err := r.auth.CheckSessionLimit(ctx); err != nil {
		r.logger.Warn("failed to check session limit", "error", err)
	} else if !limit.CanSearch {
		msg := limit.Message
		if msg == "" {
			msg = "session limit reached"
		}
		return fmt.Errorf("%w: %s", shared.ErrSessionLimit, msg)
	}

	controller := workflow.NewController(workflow.ControllerOpts{
		API:     r.discovery,
		Streams: r.discovery,
		Tracker: r.auth,
		Logger:  r.logger,
	})

	events, err := controller.Start(ctx, inputType, query)
	if err != nil {
		return fmt.Errorf("failed to start search: %w", err)
	}
	sessionID := controller.SessionID()

	r.logger.Info("session started", "session_id", sessionID)

	var history *repositories.HistoryRepository
	var searchID string
	if !cmd.Bool("no-history") {
		db, err := r.openDatabase()
		if err != nil {
			r.logger.Warn("history disabled", "error", err)
		} else {
			defer db.Close()
			history = repositories.NewHistoryRepository(db)

			record := &models.SearchRecord{SessionID: sessionID, InputType: inputType, UserInput: query}
			if err := history.Create(record); err != nil {
				r.logger.Warn("failed to record search", "error", err)
				history = nil
			} else {
				searchID = record.ID
			}
		}
	}

	reader := bufio.NewReader(r.input)

	for ev := range events {
		if err := controller.HandleEvent(ctx, ev); err != nil {
			r.logger.Warn("failed to apply progress event", "kind", ev.Kind, "error", err)
			continue
		}

		if ev.Kind == models.EventLog && ev.Log != nil {
			r.writePlain("  [%s] %s\n", ev.Log.Stage, ev.Log.Message)
		}

		for controller.Phase().Awaiting() {
			if err := r.promptConfirmation(ctx, controller, reader); err != nil {
				return err
			}
		}
	}

	if !controller.Phase().Terminal() {
		controller.StreamClosed()
	}

	return r.finishSearch(cmd, controller, history, searchID)
}

// promptConfirmation renders the pending confirmation for the current phase
// and submits the user's answer. Failed submissions re-prompt.
func (r *Runner) promptConfirmation(ctx context.Context, controller *workflow.Controller, reader *bufio.Reader) error {
	snap := controller.Snapshot()

	switch snap.Phase {
	case workflow.AwaitingProduct:
		r.writePlainln("Which product did you mean?")
		for i, candidate := range snap.Products {
			r.writePlain("  %d. %s\n", i+1, candidate.Name)
			if candidate.Description != "" {
				r.writePlain("     %s\n", candidate.Description)
			}
		}
		index, err := r.promptIndex(reader, len(snap.Products))
		if err != nil {
			return err
		}
		if err := controller.Select(workflow.KindProduct, index); err != nil {
			return err
		}
		if err := controller.Confirm(ctx, workflow.KindProduct); err != nil {
			r.writePlain("✗ %v\n", err)
		}

	case workflow.AwaitingVariant:
		r.writePlainln("Which variant?")
		for i, variant := range snap.Variants {
			label := variant.Value
			if variant.Type != "" {
				label = fmt.Sprintf("%s (%s)", variant.Value, variant.Type)
			}
			r.writePlain("  %d. %s\n", i+1, label)
		}
		index, err := r.promptIndex(reader, len(snap.Variants))
		if err != nil {
			return err
		}
		if err := controller.Select(workflow.KindVariant, index); err != nil {
			return err
		}
		if err := controller.Confirm(ctx, workflow.KindVariant); err != nil {
			r.writePlain("✗ %v\n", err)
		}

	case workflow.AwaitingExtraction:
		r.writePlainln("Is this the product you meant?")
		if snap.Extracted != nil {
			r.writePlain("  Brand:   %s\n", snap.Extracted.Brand)
			r.writePlain("  Product: %s\n", snap.Extracted.Product)
			r.writePlain("  Variant: %s\n", snap.Extracted.Variant)
		}
		confirmed, err := r.promptYesNo(reader)
		if err != nil {
			return err
		}
		if err := controller.ConfirmExtraction(ctx, confirmed); err != nil {
			r.writePlain("✗ %v\n", err)
		}
	}

	return nil
}

// promptIndex reads a 1-based selection and returns the 0-based index.
func (r *Runner) promptIndex(reader *bufio.Reader, count int) (int, error) {
	for {
		r.writePlain("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("failed to read selection: %w", err)
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || choice < 1 || choice > count {
			r.writePlain("Enter a number between 1 and %d\n", count)
			continue
		}
		return choice - 1, nil
	}
}

func (r *Runner) promptYesNo(reader *bufio.Reader) (bool, error) {
	for {
		r.writePlain("[y/n] > ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("failed to read answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		r.writePlain("Answer y or n\n")
	}
}

// finishSearch records the outcome in history and prints the final state.
func (r *Runner) finishSearch(cmd *cli.Command, controller *workflow.Controller, history *repositories.HistoryRepository, searchID string) error {
	snap := controller.Snapshot()

	switch snap.Phase {
	case workflow.Completed:
		if history != nil {
			if err := history.MarkCompleted(snap.SessionID, len(snap.Results)); err != nil {
				r.logger.Warn("failed to update history", "error", err)
			} else if err := history.SaveResults(searchID, snap.Results); err != nil {
				r.logger.Warn("failed to cache results", "error", err)
			}
		}

		if cmd.Bool("json") {
			return r.writeJSON(snap.Results, true)
		}

		export := &formatter.SearchExport{SessionID: snap.SessionID, Results: snap.Results}
		r.writePlainHeader(fmt.Sprintf("Results (%d)", len(snap.Results)))
		return r.writePlain("%s", formatter.RenderResultCards(export))

	case workflow.ExtractionRejected:
		if history != nil {
			if err := history.MarkRejected(snap.SessionID); err != nil {
				r.logger.Warn("failed to update history", "error", err)
			}
		}
		return r.writePlain("Extraction rejected. Try a different URL or a keyword search.\n")

	default:
		msg := snap.ErrorMessage
		if msg == "" {
			msg = "search did not complete"
		}
		if history != nil {
			if err := history.MarkFailed(snap.SessionID, msg); err != nil {
				r.logger.Warn("failed to update history", "error", err)
			}
		}
		return fmt.Errorf("search failed: %s", msg)
	}
}

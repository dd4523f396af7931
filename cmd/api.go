package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"scout/internal/shared"
)

// APIGet performs a direct GET against the backend and prints the response.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
	}

	return r.writePlain("%s\n", string(resp.Body))
}

// APIPost performs a direct POST with a JSON body and prints the response.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	data := []byte(cmd.String("data"))
	if !json.Valid(data) {
		return fmt.Errorf("%w: --data must be valid JSON", shared.ErrInvalidArgument)
	}

	resp, err := r.api.Post(ctx, path, data)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.writePlain("Status: %d\n", resp.StatusCode)
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	return r.writePlain("%s\n", string(resp.Body))
}

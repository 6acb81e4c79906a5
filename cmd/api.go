package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wpx/internal/services"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIGet makes a raw GET request against the REST API root.
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	r.logger.Info("GET request", "path", path)

	resp, err := r.apiFor(cmd).Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeAPIResponse(resp, cmd.Bool("pretty"))
}

// APIPost makes a raw POST request with a JSON body.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")

	if data == "" {
		return fmt.Errorf("%w: --data flag is required", shared.ErrMissingArgument)
	}
	if err := shared.ValidateJSON([]byte(data)); err != nil {
		return err
	}

	r.logger.Info("POST request", "path", path)

	resp, err := r.apiFor(cmd).Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeAPIResponse(resp, true)
}

// APIDelete makes a raw DELETE request.
func (r *Runner) APIDelete(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	r.logger.Info("DELETE request", "path", path)

	resp, err := r.apiFor(cmd).Delete(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeAPIResponse(resp, true)
}

// apiFor returns the authenticated client, or a bare one with --anonymous.
func (r *Runner) apiFor(cmd *cli.Command) *services.APIService {
	if cmd.Bool("anonymous") {
		return services.NewAPIService(r.wp.BaseURL(), r.httpClient)
	}
	return r.api
}

func (r *Runner) writeAPIResponse(resp *services.APIResponse, pretty bool) error {
	if !resp.OK() {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, shared.Truncate(string(resp.Body), 500))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}

	if err := r.writeBytes(resp.Body); err != nil {
		return err
	}
	return r.writePlain("\n")
}

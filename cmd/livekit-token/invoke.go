package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/longregen/livekit-token/internal/function"
	"github.com/spf13/cobra"
)

// invokeCmd runs the function once, the way a serverless platform would
func invokeCmd() *cobra.Command {
	var payload string
	var raw bool

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Handle one invocation on stdin/stdout",
		Long: `Read an invocation event from stdin, run the token function and write
the response as {"statusCode": ..., "body": ...} to stdout.

The event has the form {"payload": "<JSON-encoded request>"}. With --raw,
stdin is taken as the payload itself. --payload skips stdin entirely.

Example:
  echo '{"roomName":"studio-1","userId":"alice"}' | livekit-token invoke --raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			shutdownTracing := initTracing("livekit-token", os.Stderr)
			defer shutdownTracing(context.Background())

			fn, _ := newFunction()

			var req function.Request
			if cmd.Flags().Changed("payload") {
				req.Payload = payload
			} else {
				var err error
				req, err = readInvocation(cmd.InOrStdin(), raw)
				if err != nil {
					return err
				}
			}

			return runInvoke(cmd.Context(), fn, req, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&payload, "payload", "", "request payload, instead of reading stdin")
	cmd.Flags().BoolVar(&raw, "raw", false, "treat stdin as the payload rather than an event")

	return cmd
}

// readInvocation decodes the event envelope. A broken envelope is the host's
// fault, not the caller's, so it fails the command instead of producing a 400.
func readInvocation(in io.Reader, raw bool) (function.Request, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return function.Request{}, fmt.Errorf("failed to read stdin: %w", err)
	}

	if raw {
		return function.Request{Payload: string(data)}, nil
	}

	var req function.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return function.Request{}, fmt.Errorf("invalid invocation event: %w", err)
	}
	return req, nil
}

func runInvoke(ctx context.Context, fn *function.Handler, req function.Request, out io.Writer) error {
	resp := fn.Handle(ctx, req)

	encoder := json.NewEncoder(out)
	if err := encoder.Encode(resp); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

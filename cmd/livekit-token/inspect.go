package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/longregen/livekit-token/internal/adapters/livekit"
	"github.com/spf13/cobra"
)

// inspectCmd verifies a token with the configured secret and prints its claims
func inspectCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "inspect [token]",
		Short: "Verify a token and show its claims",
		Long: `Verify an access token's signature and expiry against the LiveKit API
secret and print the identity, room grant and validity window.

The token is read from stdin when no argument is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := tokenArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if secret == "" {
				secret = cfg.LiveKit.APISecret
			}
			return runInspect(cmd.OutOrStdout(), token, secret)
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "API secret (defaults to the configured secret)")

	return cmd
}

func tokenArg(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runInspect(out io.Writer, token, secret string) error {
	claims, err := livekit.VerifyToken(token, secret)
	if err != nil {
		if livekit.IsInvalidToken(err) {
			return fmt.Errorf("token rejected: %w", err)
		}
		return err
	}

	fmt.Fprintln(out, "Token is valid")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Identity:      %s\n", claims.Identity)
	if claims.Name != "" {
		fmt.Fprintf(out, "  Name:          %s\n", claims.Name)
	}
	fmt.Fprintf(out, "  Issuer:        %s\n", claims.Issuer)
	fmt.Fprintf(out, "  Room:          %s\n", claims.Grant.Room)
	fmt.Fprintf(out, "  Room Join:     %t\n", claims.Grant.RoomJoin)
	fmt.Fprintf(out, "  Can Publish:   %t\n", claims.Grant.CanPublish)
	fmt.Fprintf(out, "  Can Subscribe: %t\n", claims.Grant.CanSubscribe)
	fmt.Fprintf(out, "  Not Before:    %s\n", claims.NotBefore.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "  Expires At:    %s\n", claims.ExpiresAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "  Valid For:     %s\n", claims.TTL())
	fmt.Fprintf(out, "  Remaining:     %s\n", time.Until(claims.ExpiresAt).Truncate(time.Second))

	return nil
}

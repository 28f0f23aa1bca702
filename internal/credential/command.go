package credential

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FromCommand runs a shell command line and returns its stdout,
// trimmed of surrounding whitespace, as the secret. This matches
// password manager conventions: "pass show mailstat/me@example.com"
// prints the secret followed by a newline.
func FromCommand(ctx context.Context, cmdline string) (string, error) {
	if strings.TrimSpace(cmdline) == "" {
		return "", fmt.Errorf("empty password command")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf(
				"running password command: %w: %s", err, msg,
			)
		}
		return "", fmt.Errorf("running password command: %w", err)
	}

	secret := strings.TrimSpace(stdout.String())
	if secret == "" {
		return "", fmt.Errorf("password command produced no output")
	}

	return secret, nil
}

// KeyFor returns the keyring key holding an account's IMAP password.
func KeyFor(email string) string {
	return "imap:" + email
}

// Resolve returns the account password: from the configured command
// when one is set, otherwise from the OS keyring.
func Resolve(
	ctx context.Context, passwordCmd, email string,
) (string, error) {
	if strings.TrimSpace(passwordCmd) != "" {
		return FromCommand(ctx, passwordCmd)
	}

	secret, err := Get(KeyFor(email))
	if err != nil {
		return "", fmt.Errorf(
			"no password_cmd configured and keyring lookup failed: %w",
			err,
		)
	}

	return secret, nil
}

package credential

import (
	"context"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestFromCommand(t *testing.T) {
	out, err := FromCommand(context.Background(), "echo secret123")
	be.Err(t, err, nil)
	be.Equal(t, out, "secret123")
}

func TestFromCommandTrimsWhitespace(t *testing.T) {
	out, err := FromCommand(context.Background(), "printf 'hunter2\n\n'")
	be.Err(t, err, nil)
	be.Equal(t, out, "hunter2")
}

func TestFromCommandFailure(t *testing.T) {
	_, err := FromCommand(context.Background(), "exit 3")
	be.Err(t, err)
}

func TestFromCommandReportsStderr(t *testing.T) {
	_, err := FromCommand(
		context.Background(), "echo vault is sealed >&2; exit 1",
	)
	be.Err(t, err)
	be.True(t, strings.Contains(err.Error(), "vault is sealed"))
}

func TestFromCommandEmptyOutput(t *testing.T) {
	_, err := FromCommand(context.Background(), "true")
	be.Err(t, err)
}

func TestKeyFor(t *testing.T) {
	be.Equal(t, KeyFor("me@example.com"), "imap:me@example.com")
}

func TestResolvePrefersCommand(t *testing.T) {
	out, err := Resolve(context.Background(), "echo from-command", "me@example.com")
	be.Err(t, err, nil)
	be.Equal(t, out, "from-command")
}

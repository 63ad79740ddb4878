// Package registry reads and writes Windows registry values inside a wine
// prefix by driving the reg.exe tool through the wine runner.
package registry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/winevat/winevat/internal/events"
	"github.com/winevat/winevat/internal/logging"
)

// ValueType identifies a registry value type as reg.exe names it.
type ValueType string

const (
	TypeString ValueType = "REG_SZ"
	TypeDWord  ValueType = "REG_DWORD"
	TypeQWord  ValueType = "REG_QWORD"
	TypeBinary ValueType = "REG_BINARY"
)

// runner runs a wine invocation to completion and returns its output.
// Satisfied by *wine.Runner.
type runner interface {
	RunCollected(ctx context.Context, args []string, env map[string]string) (string, error)
}

// Client drives reg.exe for query and add operations.
type Client struct {
	runner runner
	logger logging.Logger
	bus    *events.Bus
}

// NewClient creates a registry client. Bus is optional.
func NewClient(runner runner, logger logging.Logger, bus *events.Bus) *Client {
	return &Client{runner: runner, logger: logger, bus: bus}
}

// Query reads a named value under a key. The second return is false when the
// value is absent or the query fails; callers cannot distinguish the two.
func (c *Client) Query(ctx context.Context, key, name string, typ ValueType) (string, bool) {
	out, err := c.runner.RunCollected(ctx, []string{"reg", "query", key, "-v", name}, nil)
	if err != nil {
		c.logger.Warn("Registry query failed", "key", key, "name", name, "error", err)
		c.publish("query", typ, false)
		return "", false
	}

	value, ok := parseQueryOutput(out, typ)
	if !ok {
		c.logger.Debug("Registry value not found", "key", key, "name", name, "type", string(typ))
	}
	c.publish("query", typ, ok)
	return value, ok
}

// Add writes a named value under a key, creating or overwriting it.
func (c *Client) Add(ctx context.Context, key, name string, typ ValueType, value string) error {
	args := []string{"reg", "add", key, "-v", name, "-t", string(typ), "-d", value, "-f"}
	if _, err := c.runner.RunCollected(ctx, args, nil); err != nil {
		c.publish("add", typ, false)
		return fmt.Errorf("failed to add registry value %s\\%s: %w", key, name, err)
	}
	c.publish("add", typ, true)
	return nil
}

// parseQueryOutput extracts the data field from reg.exe query output. The
// tool prints one tabular line per matching value; the line carrying the
// requested type token holds the data in its last whitespace-separated
// field.
func parseQueryOutput(out string, typ ValueType) (string, bool) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, string(typ)) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		return fields[len(fields)-1], true
	}
	return "", false
}

// ParseDWord converts a REG_DWORD data field to its numeric value. reg.exe
// prints dwords in hex with a 0x prefix, but plain decimal is accepted too.
func ParseDWord(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid REG_DWORD data %q: %w", s, err)
	}
	return uint32(v), nil
}

func (c *Client) publish(op string, typ ValueType, ok bool) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(events.RegistryOpEvent{
		Op:        op,
		ValueType: string(typ),
		OK:        ok,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

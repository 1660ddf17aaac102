// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"shipctl/internal/deploy"
)

// Render produces dotenv text for ctx plus extra user-supplied entries.
// Context fields come first in a fixed order, skipping empty ones; extras
// follow sorted by key. Values needing it are double-quoted.
func Render(ctx *deploy.Context, extra map[string]string) string {
	var b strings.Builder

	fields := []struct {
		key   string
		value string
	}{
		{"DEPLOY_NAME", ctx.Name},
		{"DEPLOY_ENV", ctx.Environment},
		{"DEPLOY_HOST", ctx.Host},
		{"DEPLOY_AUTH_USER", ctx.AuthUser},
		{"DEPLOY_WORK_USER", ctx.WorkUser},
		{"DEPLOY_DIR", ctx.RemoteDir},
		{"DEPLOY_DOMAIN", ctx.Domain},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		writeEntry(&b, f.key, f.value)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeEntry(&b, k, extra[k])
	}

	return b.String()
}

// WriteFile renders and writes the env file at path.
func WriteFile(path string, ctx *deploy.Context, extra map[string]string) error {
	if err := os.WriteFile(path, []byte(Render(ctx, extra)), 0o644); err != nil {
		return fmt.Errorf("write env file %q: %w", path, err)
	}
	return nil
}

func writeEntry(b *strings.Builder, key, value string) {
	if needsQuoting(value) {
		value = strconv.Quote(value)
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteByte('\n')
}

func needsQuoting(value string) bool {
	if value == "" {
		return false
	}
	return strings.ContainsAny(value, " \t\n\"'#\\$`")
}

// Parse reads dotenv content into env, later keys overriding earlier ones.
// Supported lines: comments (#), blank lines, KEY=value, quoted values
// (double quotes process \n, \t, \\ and \" escapes; single quotes are
// literal), and an optional export prefix. filename only labels errors.
func Parse(env map[string]string, content []byte, filename string) error {
	for i, line := range strings.Split(string(content), "\n") {
		lineNum := i + 1

		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%s:%d: invalid format (missing '=')", filename, lineNum)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%s:%d: empty variable name", filename, lineNum)
		}

		parsed, err := parseValue(value)
		if err != nil {
			return fmt.Errorf("%s:%d: %w", filename, lineNum, err)
		}
		env[key] = parsed
	}
	return nil
}

func parseValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	switch value[0] {
	case '"':
		if len(value) < 2 || value[len(value)-1] != '"' {
			return "", fmt.Errorf("unterminated double quote")
		}
		return unescape(value[1 : len(value)-1])
	case '\'':
		if len(value) < 2 || value[len(value)-1] != '\'' {
			return "", fmt.Errorf("unterminated single quote")
		}
		return value[1 : len(value)-1], nil
	default:
		return value, nil
	}
}

func unescape(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape")
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			return "", fmt.Errorf("unsupported escape \\%c", s[i])
		}
	}
	return b.String(), nil
}

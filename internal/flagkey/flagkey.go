// Package flagkey validates feature-flag keys and loads flag lists from disk.
package flagkey

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/FlagScan-cli/internal/apperr"
)

const (
	MinLength = 3
	MaxLength = 100
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Words that show up as string literals everywhere and are never worth a
// repository-wide search.
var commonWords = map[string]struct{}{
	"true": {}, "false": {}, "null": {}, "undefined": {}, "none": {},
	"yes": {}, "no": {}, "on": {}, "off": {},
	"enabled": {}, "disabled": {}, "active": {}, "inactive": {},
	"id": {}, "key": {}, "name": {}, "type": {}, "value": {}, "data": {},
	"error": {}, "success": {},
}

// Validate reports whether key is plausible as a flag key.
func Validate(key string) error {
	switch {
	case len(key) < MinLength || len(key) > MaxLength:
		return apperr.Userf("invalid flag key %q: length must be between %d and %d", key, MinLength, MaxLength)
	case !keyPattern.MatchString(key):
		return apperr.Userf("invalid flag key %q: only letters, digits, '.', '_' and '-' are allowed", key)
	}
	if _, common := commonWords[strings.ToLower(key)]; common {
		return apperr.Userf("invalid flag key %q: too common to search for", key)
	}
	return nil
}

// listDoc is the provider export shape: {"flags": [{"key": "..."}]}.
type listDoc struct {
	Flags []struct {
		Key string `json:"key" yaml:"key"`
	} `json:"flags" yaml:"flags"`
}

// LoadList reads flag keys from a .yaml/.yml, .json or plain-text file.
// YAML and JSON accept either a list of strings or a provider export with a
// top-level "flags" list; text files hold one key per line with # comments.
// Keys are deduplicated in first-seen order and validated together.
func LoadList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = decodeYAML(data)
	case ".json":
		raw, err = decodeJSON(data)
	case ".txt", "":
		raw, err = decodeText(data)
	default:
		return nil, apperr.Userf("unsupported flag list format %q (expected .yaml, .yml, .json or .txt)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse flag list %s: %w", path, err)
	}

	keys := dedupe(raw)
	var invalid []string
	for _, k := range keys {
		if err := Validate(k); err != nil {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		return nil, apperr.Userf("flag list %s contains %d invalid key(s): %s", path, len(invalid), strings.Join(invalid, ", "))
	}
	if len(keys) == 0 {
		return nil, apperr.Userf("flag list %s contains no keys", path)
	}
	return keys, nil
}

func decodeYAML(data []byte) ([]string, error) {
	var list []string
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc listDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.keys(), nil
}

func decodeJSON(data []byte) ([]string, error) {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc listDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.keys(), nil
}

func decodeText(data []byte) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

func (d listDoc) keys() []string {
	out := make([]string, 0, len(d.Flags))
	for _, f := range d.Flags {
		out = append(out, f.Key)
	}
	return out
}

func dedupe(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// Package resultio reads and writes scan results and audit reports.
package resultio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/audit"
	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/scanner"
)

const (
	FormatAuto  = "auto"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatSARIF = "sarif"
)

// Formats lists the formats accepted by Write.
var Formats = []string{FormatAuto, FormatJSON, FormatYAML, FormatSARIF}

// ResolveFormat turns a requested format and an output path into a concrete
// format. "auto" (or empty) picks by extension and defaults to JSON.
func ResolveFormat(path, format string) (string, error) {
	actual := strings.ToLower(strings.TrimSpace(format))
	switch actual {
	case "", FormatAuto:
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			return FormatYAML, nil
		case ".sarif":
			return FormatSARIF, nil
		default:
			return FormatJSON, nil
		}
	case FormatJSON, FormatYAML, FormatSARIF:
		return actual, nil
	default:
		return "", fmt.Errorf("unsupported result format: %q", format)
	}
}

// checkExtension rejects an output path whose extension contradicts format.
func checkExtension(path, format string) error {
	ext := strings.ToLower(filepath.Ext(path))
	ok := false
	switch format {
	case FormatJSON:
		ok = ext == ".json"
	case FormatYAML:
		ok = ext == ".yaml" || ext == ".yml"
	case FormatSARIF:
		ok = ext == ".sarif" || ext == ".json"
	}
	if !ok {
		return fmt.Errorf("output path extension %q does not match format %q", filepath.Ext(path), format)
	}
	return nil
}

// ResolveOutput resolves format for an output path and rejects a path whose
// extension contradicts it. Callers use it to fail before any work is done.
func ResolveOutput(path, format string) (string, error) {
	actual, err := ResolveFormat(path, format)
	if err != nil {
		return "", err
	}
	if err := checkExtension(path, actual); err != nil {
		return "", err
	}
	return actual, nil
}

// Write writes res to path. The parent directory is created when missing.
func Write(res *scanner.Result, path, format string) error {
	actual, err := ResolveOutput(path, format)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error { return WriteTo(w, res, actual) })
}

// WriteTo encodes res to w. "auto" means JSON here since there is no path.
func WriteTo(w io.Writer, res *scanner.Result, format string) error {
	if res == nil {
		return fmt.Errorf("nil scan result")
	}
	actual, err := ResolveFormat("", format)
	if err != nil {
		return err
	}
	switch actual {
	case FormatYAML:
		return encodeYAML(w, res)
	case FormatSARIF:
		report, err := sarifReport(res)
		if err != nil {
			return err
		}
		return report.PrettyWrite(w)
	default:
		return encodeJSON(w, res)
	}
}

// Read loads a result previously written as JSON or YAML.
func Read(path, format string) (*scanner.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	actual, err := ResolveFormat(path, format)
	if err != nil {
		return nil, err
	}

	res := new(scanner.Result)
	switch actual {
	case FormatYAML:
		err = yaml.Unmarshal(data, res)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(res)
	default:
		return nil, fmt.Errorf("reading %s results is not supported", actual)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if res.FlagKey == "" {
		return nil, fmt.Errorf("decode %s: missing flagKey", path)
	}
	if res.Matches == nil {
		res.Matches = []scanner.Match{}
	}
	logf(res.FlagKey, "read %d matches from %s", len(res.Matches), path)
	return res, nil
}

// WriteAudit writes an audit report. In SARIF every flag becomes one run.
func WriteAudit(rep *audit.Report, path, format string) error {
	if rep == nil {
		return fmt.Errorf("nil audit report")
	}
	actual, err := ResolveOutput(path, format)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		switch actual {
		case FormatYAML:
			return encodeYAML(w, rep)
		case FormatSARIF:
			report, err := sarifReport(rep.Results...)
			if err != nil {
				return err
			}
			return report.PrettyWrite(w)
		default:
			return encodeJSON(w, rep)
		}
	})
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeFile(path string, encode func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logf("", "wrote %s", path)
	return nil
}

package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/autotrans/internal/analyzer"
)

// Format selects how proposed transitions are printed.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want table, json or yaml)", name)
}

// WriteCandidates prints candidates to w in the requested format. The
// structured formats always emit a list, empty when nothing was proposed.
func WriteCandidates(w io.Writer, format Format, candidates []*analyzer.Candidate) error {
	if candidates == nil {
		candidates = []*analyzer.Candidate{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(candidates); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(candidates); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
	default:
		if _, err := io.WriteString(w, RenderCandidateTable(candidates)); err != nil {
			return err
		}
	}

	return nil
}

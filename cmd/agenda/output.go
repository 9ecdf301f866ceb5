package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

type outputOptions struct {
	Format string
	Query  string
}

func addOutputFlags(fs *pflag.FlagSet) *outputOptions {
	opts := &outputOptions{}
	fs.StringVarP(&opts.Format, "output", "o", outputTable, "Output format: table, json or yaml")
	fs.StringVarP(&opts.Query, "query", "q", "", "JMESPath expression applied to the result (implies json unless -o yaml)")
	return opts
}

func (o *outputOptions) validate() error {
	o.Format = strings.ToLower(strings.TrimSpace(o.Format))
	switch o.Format {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q", o.Format)
	}
	o.Query = strings.TrimSpace(o.Query)
	if o.Query != "" {
		if _, err := jmespath.Compile(o.Query); err != nil {
			return fmt.Errorf("invalid query: %w", err)
		}
	}
	return nil
}

// tableFn writes rows for the table format. The writer is flushed by render.
type tableFn func(tw *tabwriter.Writer) error

// render writes v in the selected format. A query always produces structured
// output because its result no longer matches the table layout.
func render(w io.Writer, opts *outputOptions, v any, table tableFn) error {
	if opts.Query != "" {
		data, err := toGeneric(v)
		if err != nil {
			return err
		}
		result, err := jmespath.Search(opts.Query, data)
		if err != nil {
			return fmt.Errorf("evaluate query: %w", err)
		}
		if opts.Format == outputYAML {
			return writeYAML(w, result)
		}
		return writeJSON(w, result)
	}

	switch opts.Format {
	case outputJSON:
		return writeJSON(w, v)
	case outputYAML:
		data, err := toGeneric(v)
		if err != nil {
			return err
		}
		return writeYAML(w, data)
	default:
		if table == nil {
			return writeJSON(w, v)
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if err := table(tw); err != nil {
			return err
		}
		return tw.Flush()
	}
}

// toGeneric converts v to maps and slices keyed by its JSON names, which is the
// shape both JMESPath and YAML output expect.
func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) (err error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() {
		if closeErr := enc.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return enc.Encode(v)
}

func row(tw *tabwriter.Writer, cols ...any) error {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	_, err := fmt.Fprintln(tw, strings.Join(parts, "\t"))
	return err
}

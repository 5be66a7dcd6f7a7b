package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type commandSchema struct {
	Command     string         `json:"command"`
	Description string         `json:"description,omitempty"`
	Args        string         `json:"args,omitempty"`
	Flags       map[string]any `json:"flags"`
	Required    []string       `json:"required,omitempty"`
}

// NewSchemaCmd lists every runnable command with its flags, for scripts that
// drive coinwatch.
func NewSchemaCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Describe commands and their flags as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []commandSchema
			collectCommandSchemas(root, &out)

			type resp struct {
				Commands []commandSchema `json:"commands"`
			}
			return printSuccess(cmd, resp{Commands: out})
		},
	}
}

func collectCommandSchemas(cmd *cobra.Command, out *[]commandSchema) {
	if cmd.HasParent() && cmd.Runnable() && cmd.Name() != "schema" && !cmd.Hidden {
		*out = append(*out, buildCommandSchema(cmd))
	}
	for _, child := range cmd.Commands() {
		collectCommandSchemas(child, out)
	}
}

func buildCommandSchema(cmd *cobra.Command) commandSchema {
	s := commandSchema{
		Command:     cmd.CommandPath(),
		Description: cmd.Short,
		Flags:       map[string]any{},
	}
	if _, rest, ok := strings.Cut(cmd.Use, " "); ok {
		s.Args = rest
	}

	addFlag := func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		if _, seen := s.Flags[f.Name]; seen {
			return
		}

		fs := map[string]any{
			"type":        normalizeFlagType(f.Value.Type()),
			"description": f.Usage,
		}
		if f.DefValue != "" && f.DefValue != "[]" {
			fs["default"] = typedFlagDefault(f.Value.Type(), f.DefValue)
		}
		if values := parseEnumValues(f.Usage); len(values) > 0 {
			fs["enum"] = values
		}
		s.Flags[f.Name] = fs

		if isRequiredFlag(f) {
			s.Required = append(s.Required, f.Name)
		}
	}

	cmd.InheritedFlags().VisitAll(addFlag)
	cmd.NonInheritedFlags().VisitAll(addFlag)
	return s
}

func normalizeFlagType(flagType string) string {
	switch flagType {
	case "int", "int64", "int32", "uint", "uint64", "uint32":
		return "integer"
	case "float64", "float32":
		return "number"
	case "bool":
		return "boolean"
	case "stringSlice":
		return "array"
	default:
		return "string"
	}
}

func typedFlagDefault(flagType, raw string) any {
	switch normalizeFlagType(flagType) {
	case "boolean":
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	case "integer":
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	case "number":
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return raw
}

func isRequiredFlag(f *pflag.Flag) bool {
	if vals, ok := f.Annotations[cobra.BashCompOneRequiredFlag]; ok && len(vals) > 0 && vals[0] == "true" {
		return true
	}
	return strings.Contains(strings.ToLower(f.Usage), "(required)")
}

// parseEnumValues reads "one of: a|b|c" from a flag's usage text.
func parseEnumValues(usage string) []string {
	_, cand, ok := strings.Cut(usage, "one of:")
	if !ok || !strings.Contains(cand, "|") {
		return nil
	}

	var values []string
	for _, p := range strings.Split(cand, "|") {
		p = strings.TrimSpace(p)
		if p == "" || strings.Contains(p, " ") {
			continue
		}
		values = append(values, p)
	}
	if len(values) < 2 {
		return nil
	}
	return values
}

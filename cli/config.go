package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"slices"
	"text/tabwriter"

	"github.com/compozy/defaultdesk/pkg/config"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redactedValue = "[REDACTED]"

func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration with secrets redacted",
		RunE:  runConfigShow,
	}
	show.Flags().StringP("format", "f", "yaml", "Output format (yaml, json, table)")
	show.Flags().Bool("sources", false, "Include the source of each value (table format)")
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			if err := config.ManagerFromContext(cmd.Context()).Service.Validate(cfg); err != nil {
				return fmt.Errorf("configuration is invalid: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
	cmd.AddCommand(show, validate)
	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	withSources, err := cmd.Flags().GetBool("sources")
	if err != nil {
		return err
	}
	manager := config.ManagerFromContext(cmd.Context())
	flat, err := flattenConfig(manager.Get())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(flat)
	case "yaml":
		return yaml.NewEncoder(out).Encode(flat)
	case "table":
		return writeTable(out, flat, manager.Service, withSources)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// flattenConfig returns dotted keys mapped to printable values. Secrets and
// credentials embedded in connection URLs are redacted.
func flattenConfig(cfg *config.Config) (map[string]any, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to flatten configuration: %w", err)
	}
	flat := k.All()
	for key, value := range flat {
		switch {
		case config.IsSensitiveConfigPath(key):
			if fmt.Sprint(value) != "" {
				flat[key] = redactedValue
			} else {
				flat[key] = ""
			}
		case key == "database.conn_string" || key == "redis.url":
			flat[key] = redactURL(fmt.Sprint(value))
		default:
			if s, ok := value.(fmt.Stringer); ok {
				flat[key] = s.String()
			}
		}
	}
	return flat, nil
}

func redactURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return redactedValue
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	return u.String()
}

func writeTable(out io.Writer, flat map[string]any, svc config.Service, withSources bool) error {
	keys := lo.Keys(flat)
	slices.Sort(keys)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, key := range keys {
		if withSources {
			fmt.Fprintf(w, "%s\t%v\t%s\n", key, flat[key], svc.GetSource(key))
			continue
		}
		fmt.Fprintf(w, "%s\t%v\n", key, flat[key])
	}
	return w.Flush()
}

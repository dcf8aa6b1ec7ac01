package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cottand/pixl/internal/config"
	"github.com/cottand/pixl/pixl"
	"github.com/cottand/pixl/util"
)

const (
	configFlag        = "config"
	logLevelFlag      = "log-level"
	maxScopeDepthFlag = "max-scope-depth"
)

// RegisterGlobalFlags adds the flags every subcommand understands.
func RegisterGlobalFlags(flags *pflag.FlagSet) {
	flags.String(configFlag, "", "path to a TOML config file (default ./"+config.FileName+" if it exists)")
	flags.StringP(logLevelFlag, "l", "", "log level: debug, info, warn or error")
	flags.Int(maxScopeDepthFlag, 0, "how deeply scopes may nest before compilation is aborted")
}

// loadConfig reads the config file and applies the global flags over it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString(configFlag)
	var cfg config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadDefaultFile()
	}
	if err != nil {
		return config.Config{}, err
	}
	if flags.Changed(logLevelFlag) {
		cfg.LogLevel, _ = flags.GetString(logLevelFlag)
	}
	if flags.Changed(maxScopeDepthFlag) {
		cfg.MaxScopeDepth, _ = flags.GetInt(maxScopeDepthFlag)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, cfg.ApplyLogging()
}

// readProgram returns the source given with -e, or else the contents of the
// file named by the only argument.
func readProgram(expr string, args []string) (src []byte, filename string, err error) {
	switch {
	case expr != "" && len(args) > 0:
		return nil, "", fmt.Errorf("expected either a file or -e, not both")
	case expr != "":
		return []byte(expr), "<expr>", nil
	case len(args) != 1:
		return nil, "", fmt.Errorf("expected a single program file")
	}
	src, err = os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("could not read program: %w", err)
	}
	return src, args[0], nil
}

func compileOptions(cmd *cobra.Command, filename string) (pixl.Options, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return pixl.Options{}, err
	}
	return pixl.Options{Config: cfg, Filename: filename}, nil
}

// parseAssignment reads name=value, where value is an integer, true or false.
func parseAssignment(s string) (name string, value int64, err error) {
	name, raw := util.StringTakeUntil(s, '=')
	name, raw = strings.TrimSpace(name), strings.TrimSpace(raw)
	if name == "" || raw == "" {
		return "", 0, fmt.Errorf("expected name=value, got '%s'", s)
	}
	switch raw {
	case "true":
		return name, 1, nil
	case "false":
		return name, 0, nil
	}
	value, err = strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return name, value, nil
}

func parseAssignments(assignments []string) (map[string]int64, error) {
	values := make(map[string]int64, len(assignments))
	for _, a := range assignments {
		name, value, err := parseAssignment(a)
		if err != nil {
			return nil, err
		}
		values[name] = value
	}
	return values, nil
}

// Command kdump parses, validates, and summarizes Kafka broker offline
// log-segment dump files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/twmb/kdump/commands/dump"
	"github.com/twmb/kdump/config"
)

var (
	cfgPath      string
	noCfgFile    bool
	cfgOverrides []string

	cfg config.Cfg

	root = cobra.Command{
		Use:   "kdump",
		Short: "Parse and validate Kafka log segment dump files",
	}
)

func init() {
	root.PersistentFlags().StringVar(&cfgPath, "config-path", config.DefaultPath(), "path to config file (lowest priority)")
	root.PersistentFlags().BoolVarP(&noCfgFile, "no-config", "Z", false, "do not load any config file")
	root.PersistentFlags().StringArrayVarP(&cfgOverrides, "config-opt", "X", nil, "flag provided config option (highest priority)")
}

func main() {
	cobra.OnInitialize(func() {
		var err error
		cfg, err = config.Load(cfgPath, noCfgFile, cfgOverrides)
		if err != nil {
			fmt.Printf("unable to load config: %v\n", err)
			os.Exit(1)
		}
	})

	root.AddCommand(dump.Command(&cfg))
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Interact with kdump's configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Dump the effective configuration, toml encoded, to stdout",
		Args:  cobra.ExactArgs(0),
		Run: func(_ *cobra.Command, _ []string) {
			if err := config.Dump(cfg); err != nil {
				fmt.Printf("unable to dump config: %v\n", err)
				os.Exit(1)
			}
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Interactively create a new configuration file",
		Args:  cobra.ExactArgs(0),
		Run: func(_ *cobra.Command, _ []string) {
			config.Wizard(os.Getenv("KDUMP_NO_HELP") != "")
		},
	})
	return cmd
}

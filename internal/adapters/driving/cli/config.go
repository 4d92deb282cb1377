package cli

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
	Long:  `Commands for inspecting and validating ravensource.toml.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the loaded configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for errors",
	RunE:  runConfigValidate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	data, err := toml.Marshal(configStore.Config())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	cmd.Printf("# %s\n", configStore.Path())
	cmd.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	if err := validateConfig(); err != nil {
		return err
	}

	cfg := configStore.Config()
	cmd.Printf("Configuration is valid: %d collections.\n", len(cfg.Collections))
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}

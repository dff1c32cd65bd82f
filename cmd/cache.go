package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the parse cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show parse cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		c, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		stats, err := c.GetStats()
		if err != nil {
			return err
		}
		fmt.Printf("Cache: %s\n", c.Path())
		fmt.Printf("  Indexed files: %d\n", stats.FileCount)
		fmt.Printf("  Cached models: %d\n", stats.ModelCount)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached parse results",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		c, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Clear(); err != nil {
			return err
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

func init() {
	cacheStatsCmd.Flags().StringP("config", "c", "", "Path to config.yaml")
	cacheClearCmd.Flags().StringP("config", "c", "", "Path to config.yaml")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ocr-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ocr-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ and the environment at
// startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when non-empty, otherwise the loaded secret
// for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the ocr-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "ocr-engine",
	Short: "OCR handwritten notes with vision language models",
	Long: `ocr-engine transcribes images and PDFs of handwritten notes into clean
Markdown using vision language models (Anthropic or OpenAI).

Transcriptions are normalized for Obsidian: LaTeX math is rewritten to
dollar-sign delimiters and detected hashtags land in YAML frontmatter.
Responses are cached locally so re-running on the same input is free.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env feeds the same environment variables the secrets loader reads.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ocr-engine.yaml or ~/.config/ocr-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ocr-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ocr-engine"))
		}
	}

	viper.SetEnvPrefix("OCR_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

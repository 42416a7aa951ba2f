package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ocr-engine/internal/cache"
	"github.com/pdiddy/ocr-engine/internal/httputil"
	"github.com/pdiddy/ocr-engine/internal/ocr"
	"github.com/pdiddy/ocr-engine/internal/provider"
	"github.com/pdiddy/ocr-engine/internal/rasterize"
	"github.com/pdiddy/ocr-engine/internal/secrets"
	"github.com/pdiddy/ocr-engine/pkg/types"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr <input>",
	Short: "Transcribe an image or PDF of handwritten notes",
	Long: `Ocr sends an image (PNG, JPEG, WebP, GIF) or PDF to a vision language
model and writes the transcription to stdout or a file. PDFs are
rasterized one image per page and sent in a single request with page
markers.

Markdown output is normalized for Obsidian: LaTeX bracket delimiters
become dollar signs, consecutive display blocks merge, and detected
hashtags move into YAML frontmatter. Responses are cached by content,
so repeated runs on the same input skip the API call.`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	ocrCmd.Flags().StringP("provider", "p", "", "vision provider: anthropic or openai (default anthropic)")
	ocrCmd.Flags().StringP("model", "m", "", "model identifier (default: provider's vision model)")
	ocrCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	ocrCmd.Flags().StringP("format", "f", "", "output format: markdown or text (default markdown)")
	ocrCmd.Flags().Int("dpi", 0, "PDF render resolution (default 150)")
	ocrCmd.Flags().String("api-key", "", "API key (default: .secrets/<provider>-api-key or environment)")
	ocrCmd.Flags().Bool("preprocess", true, "auto-contrast and sharpen images before upload")
	ocrCmd.Flags().Bool("no-cache", false, "bypass the response cache")

	rootCmd.AddCommand(ocrCmd)
}

// ocrConfig merges defaults, the config file, and command-line flags, in
// ascending precedence.
func ocrConfig(cmd *cobra.Command) (types.Config, error) {
	cfg := types.DefaultConfig()

	if v := viper.GetString("ai.provider"); v != "" {
		cfg.AI.Provider = types.ProviderName(v)
	}
	if v := viper.GetString("ai.model"); v != "" {
		cfg.AI.Model = v
	}
	if v := viper.GetInt("ai.max_retries"); v > 0 {
		cfg.AI.MaxRetries = v
	}
	if v := viper.GetDuration("ai.timeout"); v > 0 {
		cfg.AI.Timeout = v
	}
	if v := viper.GetInt("render.dpi"); v > 0 {
		cfg.Render.DPI = v
	}
	if viper.IsSet("preprocess.enabled") {
		cfg.Preprocess.Enabled = viper.GetBool("preprocess.enabled")
	}
	if v := viper.GetFloat64("preprocess.contrast_cutoff"); v > 0 {
		cfg.Preprocess.ContrastCutoff = v
	}
	if v := viper.GetFloat64("preprocess.sharpen_sigma"); v > 0 {
		cfg.Preprocess.SharpenSigma = v
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := viper.GetString("format"); v != "" {
		cfg.Format = types.OutputFormat(v)
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("provider"); v != "" {
		cfg.AI.Provider = types.ProviderName(v)
	}
	if v, _ := flags.GetString("model"); v != "" {
		cfg.AI.Model = v
	}
	if v, _ := flags.GetInt("dpi"); v > 0 {
		cfg.Render.DPI = v
	}
	if v, _ := flags.GetString("format"); v != "" {
		cfg.Format = types.OutputFormat(v)
	}
	if flags.Changed("preprocess") {
		cfg.Preprocess.Enabled, _ = flags.GetBool("preprocess")
	}
	if v, _ := flags.GetBool("no-cache"); v {
		cfg.Cache.Enabled = false
	}

	p, err := types.ParseProvider(string(cfg.AI.Provider))
	if err != nil {
		return types.Config{}, err
	}
	cfg.AI.Provider = p

	f, err := types.ParseFormat(string(cfg.Format))
	if err != nil {
		return types.Config{}, err
	}
	cfg.Format = f

	apiKey, _ := flags.GetString("api-key")
	cfg.AI.APIKey = secretDefault(secrets.KeyName(string(p)), apiKey)
	if cfg.AI.APIKey == "" {
		return types.Config{}, fmt.Errorf("no API key for %s: pass --api-key, set %s, or create .secrets/%s",
			p, envVarName(p), secrets.KeyName(string(p)))
	}

	return cfg, nil
}

func envVarName(p types.ProviderName) string {
	if p == types.ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

func runOCR(cmd *cobra.Command, args []string) error {
	cfg, err := ocrConfig(cmd)
	if err != nil {
		return err
	}

	client := httputil.NewClient(cfg.AI.Timeout, cfg.AI.MaxRetries)
	backend, err := provider.New(cfg.AI, client)
	if err != nil {
		return err
	}

	var store *cache.Cache
	if cfg.Cache.Enabled {
		store, err = cache.Open(cfg.Cache.Dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache disabled: %v\n", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return ocr.Run(cmd.Context(), backend, rasterize.FitzRenderer{}, store, cfg, args[0], out, os.Stderr)
}

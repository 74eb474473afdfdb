package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaguanLabs/tlunit"
	"github.com/ZaguanLabs/tlunit/blacklist"
	"github.com/ZaguanLabs/tlunit/cache"
	"github.com/ZaguanLabs/tlunit/internal/config"
	"github.com/ZaguanLabs/tlunit/processor"
	"github.com/ZaguanLabs/tlunit/provider"
	"github.com/spf13/cobra"
)

// parallelLookupThreshold switches translation memory lookups to the
// concurrent path for files with many segments.
const parallelLookupThreshold = 64

type translateOptions struct {
	lang      string
	source    string
	outDir    string
	bilingual bool
	workers   int
	dryRun    bool
	tmFile    string
	model     string
	provider  string
}

func (a *app) translateCmd() *cobra.Command {
	var opts translateOptions

	cmd := &cobra.Command{
		Use:   "translate FILE|DIR...",
		Short: "Translate scripts and data documents into a target language",
		Long: `Scans every script (.js .mjs .cjs .jsx .ts .mts .cts .tsx) and data document
(.json .yaml .yml) given, directories recursively, fills each string from
translation memory or the AI provider, and writes the localized copies to the
output directory under the same relative paths.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("lang") {
				cfg.TargetLang = opts.lang
			}
			if flags.Changed("source") {
				cfg.SourceLang = opts.source
			}
			if flags.Changed("workers") {
				cfg.Workers = opts.workers
			}
			if flags.Changed("model") {
				cfg.Model = opts.model
			}
			if flags.Changed("provider") {
				cfg.Provider = opts.provider
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if opts.outDir == "" {
				opts.outDir = filepath.Join("translated", tlunit.NormalizeLocale(cfg.TargetLang))
			}
			return a.translate(cmd.Context(), cfg, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.lang, "lang", "l", "", "Target language (default from config, zh_CN)")
	f.StringVar(&opts.source, "source", "", "Source language (default en)")
	f.StringVarP(&opts.outDir, "output", "o", "", "Output directory (default translated/<lang>)")
	f.BoolVar(&opts.bilingual, "bilingual", false, "Show short originals next to their translations in data documents")
	f.IntVarP(&opts.workers, "workers", "w", 0, "Files processed concurrently")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Count segments and memory hits without calling the provider or writing files")
	f.StringVar(&opts.tmFile, "tm", "", "Translation memory export to load before and save after the run")
	f.StringVar(&opts.model, "model", "", "Model name")
	f.StringVar(&opts.provider, "provider", "", "openai or deepseek")
	return cmd
}

func (a *app) translate(ctx context.Context, cfg *config.Config, opts translateOptions, args []string) error {
	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no supported files found")
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if opts.tmFile != "" {
		if err := a.loadMemory(store, opts.tmFile); err != nil {
			return err
		}
	}

	loc, err := a.newLocalizer(cfg, store, opts)
	if err != nil {
		return err
	}

	fn := func(ctx context.Context, path string) (*tlunit.Result, error) {
		ct, err := tlunit.DetectContentType(path)
		if err != nil {
			return nil, err
		}
		if !tlunit.IsScript(ct) {
			if data, err := os.ReadFile(path); err == nil { // #nosec G304 - paths come from the command line
				if doc, err := processor.ParseDocument(data, ct); err == nil {
					a.warnCollisions(path, doc)
				}
			}
		}

		res, err := loc.ProcessFile(ctx, path)
		if err != nil || opts.dryRun {
			return res, err
		}

		dst := outputPath(opts.outDir, path)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(dst, []byte(res.Content), 0o644); err != nil {
			return nil, err
		}
		return res, nil
	}

	a.logger.Info().
		Int("files", len(paths)).
		Str("lang", cfg.TargetLang).
		Int("workers", cfg.Workers).
		Bool("dry_run", opts.dryRun).
		Msg("translating")

	results := tlunit.RunBatch(ctx, paths, cfg.Workers, fn, a.logger)

	if s, ok := store.(interface{ Stats() cache.Stats }); ok {
		stats := s.Stats()
		a.logger.Debug().Int64("hits", stats.Hits).Int64("misses", stats.Misses).Float64("hit_rate", stats.HitRate()).Msg("translation memory")
	}

	if opts.tmFile != "" && !opts.dryRun {
		meta := map[string]string{"target_lang": cfg.TargetLang, "source_lang": cfg.SourceLang}
		if err := cache.NewExporter(store).ExportToFile(opts.tmFile, meta); err != nil {
			a.logger.Warn().Err(err).Str("file", opts.tmFile).Msg("translation memory not saved")
		}
	}

	if err := a.report(results); err != nil {
		return err
	}
	if failed := tlunit.Failed(results); len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), len(results))
	}
	return nil
}

func (a *app) newLocalizer(cfg *config.Config, store tlunit.TranslationCache, opts translateOptions) (*tlunit.Localizer, error) {
	var ai tlunit.AIProvider
	if !opts.dryRun {
		if cfg.APIKey == "" {
			return nil, errors.New("API key required (TLUNIT_API_KEY, OPENAI_API_KEY or DEEPSEEK_API_KEY)")
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = provider.BaseURLFor(strings.ToLower(cfg.Provider))
		}
		ai = tlunit.NewRetryableProvider(provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:       cfg.APIKey,
			Model:        cfg.Model,
			BaseURL:      baseURL,
			SystemPrompt: cfg.SystemPrompt,
		}), tlunit.DefaultRetryConfig()).WithLogger(a.logger)
		if cfg.RequestsPerMinute > 0 {
			ai = tlunit.NewRateLimitedProvider(ai, tlunit.RateLimitConfig{RequestsPerMinute: cfg.RequestsPerMinute})
		}
	}

	var bl blacklist.Provider = blacklist.List(nil)
	if cfg.BlacklistFile != "" {
		patterns, err := blacklist.Open(cfg.BlacklistFile)
		if err != nil {
			return nil, err
		}
		bl = patterns
	}

	docOpts := []processor.DocumentOption{processor.WithBlacklist(bl)}
	if opts.bilingual {
		docOpts = append(docOpts, processor.WithBilingual(cfg.BilingualThreshold))
	}

	locOpts := []tlunit.LocalizerOption{
		tlunit.WithSourceLang(cfg.SourceLang),
		tlunit.WithCache(store),
		tlunit.WithExcludedTerms(cfg.ExcludedTerms),
		tlunit.WithContext(cfg.Context),
		tlunit.WithStyle(tlunit.TranslationStyle(cfg.Style)),
		tlunit.WithLogger(a.logger),
		tlunit.WithParallelLookup(parallelLookupThreshold),
	}

	if cfg.GlossaryFile != "" {
		glossary, err := config.LoadGlossary(cfg.GlossaryFile)
		if err != nil {
			return nil, err
		}
		locOpts = append(locOpts, tlunit.WithGlossary(glossary))
	}

	for _, ct := range []string{tlunit.ContentJavaScript, tlunit.ContentTypeScript, tlunit.ContentTSX} {
		p, err := processor.NewScriptProcessorFor(ct)
		if err != nil {
			return nil, err
		}
		locOpts = append(locOpts, tlunit.WithProcessor(p))
	}
	for _, ct := range []string{tlunit.ContentJSON, tlunit.ContentYAML} {
		p, err := processor.NewDocumentProcessor(ct, docOpts...)
		if err != nil {
			return nil, err
		}
		locOpts = append(locOpts, tlunit.WithProcessor(p))
	}

	return tlunit.NewLocalizer(cfg.TargetLang, ai, locOpts...), nil
}

func (a *app) loadMemory(store tlunit.TranslationCache, path string) error {
	res, err := cache.NewImporter(store).ImportFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	a.logger.Info().Str("file", path).Int("imported", res.Imported).Int("skipped", res.Skipped).Msg("translation memory loaded")
	return nil
}

func (a *app) report(results []tlunit.BatchResult) error {
	type fileReport struct {
		File       string `json:"file"`
		Segments   int    `json:"segments"`
		Cached     int    `json:"cached"`
		Translated int    `json:"translated"`
		Applied    int    `json:"applied"`
		Error      string `json:"error,omitempty"`
	}

	out := make([]fileReport, len(results))
	for i, r := range results {
		out[i].File = r.Path
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			continue
		}
		out[i].Segments = r.Result.TotalSegments
		out[i].Cached = r.Result.CachedCount
		out[i].Translated = r.Result.TranslatedCount
		out[i].Applied = r.Result.AppliedCount
	}

	if a.jsonOut {
		return a.writeJSON(out)
	}
	for _, r := range out {
		if r.Error != "" {
			fmt.Fprintf(a.stdout, "FAIL  %s: %s\n", r.File, r.Error)
			continue
		}
		fmt.Fprintf(a.stdout, "ok    %s  segments=%d cached=%d translated=%d applied=%d\n",
			r.File, r.Segments, r.Cached, r.Translated, r.Applied)
	}
	return nil
}

// openStore picks the translation memory backend: Redis, then PostgreSQL,
// then an in-process store.
func openStore(ctx context.Context, cfg *config.Config) (tlunit.TranslationCache, func(), error) {
	switch {
	case cfg.RedisURL != "":
		c, err := cache.NewRedisCache(cache.RedisConfig{URL: cfg.RedisURL, TTL: cfg.CacheTTL})
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	case cfg.DatabaseURL != "":
		c, err := cache.NewPostgresCache(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	default:
		return cache.NewInMemoryCache(cfg.CacheTTL), func() {}, nil
	}
}

// expandPaths replaces directories with the supported files below them.
// Hidden directories and node_modules are skipped.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != arg && (strings.HasPrefix(name, ".") || name == "node_modules") {
					return filepath.SkipDir
				}
				return nil
			}
			if _, err := tlunit.DetectContentType(path); err == nil {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return paths, nil
}

// outputPath mirrors a relative input path under dir. Absolute or escaping
// paths keep only their base name.
func outputPath(dir, path string) string {
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return filepath.Join(dir, filepath.Base(clean))
	}
	return filepath.Join(dir, clean)
}

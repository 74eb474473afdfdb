package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ZaguanLabs/tlunit"
	"github.com/ZaguanLabs/tlunit/blacklist"
	"github.com/ZaguanLabs/tlunit/processor"
	"github.com/spf13/cobra"
)

func scriptProcessor(path string) (*processor.ScriptProcessor, error) {
	ct, err := tlunit.DetectContentType(path)
	if err != nil {
		return nil, err
	}
	if !tlunit.IsScript(ct) {
		return nil, fmt.Errorf("%s is not a script", path)
	}
	return processor.NewScriptProcessorFor(ct)
}

func documentType(path string) (string, error) {
	ct, err := tlunit.DetectContentType(path)
	if err != nil {
		return "", err
	}
	if tlunit.IsScript(ct) {
		return "", fmt.Errorf("%s is not a data document", path)
	}
	return ct, nil
}

func withPath(err error, path string) error {
	var perr *tlunit.ParseError
	if errors.As(err, &perr) && perr.Path == "" {
		perr.Path = path
	}
	return err
}

func (a *app) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan FILE",
		Short: "List the translatable string literals of a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := scriptProcessor(args[0])
			if err != nil {
				return err
			}
			src, err := readInput(args[0])
			if err != nil {
				return err
			}

			units, err := p.Scan(string(src))
			if err != nil {
				return withPath(err, args[0])
			}
			a.logger.Debug().Str("file", args[0]).Int("units", len(units)).Msg("scanned")

			if a.jsonOut {
				if units == nil {
					units = []tlunit.Unit{}
				}
				return a.writeJSON(units)
			}
			for _, u := range units {
				fmt.Fprintf(a.stdout, "%-12s %4d:%-3d %q\n", u.ID, u.Loc.Start.Line, u.Loc.Start.Column, u.Original)
			}
			return nil
		},
	}
}

func (a *app) patchCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "patch FILE MAP.json",
		Short: "Write translations keyed by unit id back into a script",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			p, err := scriptProcessor(args[0])
			if err != nil {
				return err
			}
			src, err := readInput(args[0])
			if err != nil {
				return err
			}
			mapData, err := readInput(args[1])
			if err != nil {
				return err
			}
			var translations map[string]string
			if err := json.Unmarshal(mapData, &translations); err != nil {
				return fmt.Errorf("parsing %s: %w", args[1], err)
			}

			out, report, err := p.PatchWithReport(string(src), translations)
			if err != nil {
				return withPath(err, args[0])
			}

			a.logger.Info().
				Str("file", args[0]).
				Int("applied", len(report.Applied)).
				Int("unmatched", len(report.Unmatched)).
				Int("skipped", len(report.Skipped)).
				Msg("patched")
			if len(report.Unmatched) > 0 {
				a.logger.Warn().Strs("ids", report.Unmatched).Msg("ids not found in the current scan")
			}
			if len(report.Skipped) > 0 {
				a.logger.Warn().Strs("ids", report.Skipped).Msg("translations that cannot be encoded in the literal were not written")
			}

			if a.jsonOut && output == "" {
				return a.writeJSON(struct {
					Content string `json:"content"`
					*tlunit.PatchReport
				}{out, report})
			}
			return a.writeOutput(output, []byte(out))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func (a *app) patterns(file string) ([]string, error) {
	if file == "" {
		return nil, nil
	}
	store, err := blacklist.Open(file)
	if err != nil {
		return nil, err
	}
	return store.Blacklist(), nil
}

// warnCollisions reports keys that would collide with a nested path once
// shown with the public separator.
func (a *app) warnCollisions(path string, doc any) {
	if err := processor.CheckKeys(doc); err != nil {
		a.logger.Warn().Err(err).Str("file", path).Msg("ambiguous key path")
	}
}

func (a *app) flattenCmd() *cobra.Command {
	var blacklistFile string

	cmd := &cobra.Command{
		Use:   "flatten FILE",
		Short: "Flatten a JSON or YAML document into key paths and string values",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ct, err := documentType(args[0])
			if err != nil {
				return err
			}
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			patterns, err := a.patterns(blacklistFile)
			if err != nil {
				return err
			}

			flat := processor.NewObject()
			doc, err := processor.ParseDocument(data, ct)
			if err != nil {
				a.logger.Warn().Err(err).Str("file", args[0]).Msg("nothing to flatten")
			} else {
				a.warnCollisions(args[0], doc)
				if processor.IsBabele(doc) {
					a.logger.Debug().Str("file", args[0]).Msg("Babele translation file")
				}
				entries, err := processor.FlattenData(data, ct, patterns)
				if err != nil {
					return err
				}
				for _, e := range entries {
					flat.Set(e.Key, e.Value)
				}
			}

			out, err := processor.EncodeDocument(flat, tlunit.ContentJSON)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&blacklistFile, "blacklist", "", "Blacklist file (JSON or YAML list of key suffixes)")
	return cmd
}

func (a *app) unflattenCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "unflatten FLAT.json",
		Short: "Rebuild a nested document from key paths",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			doc, err := processor.ParseDocument(data, tlunit.ContentJSON)
			if err != nil {
				return err
			}
			obj, ok := doc.(*processor.Object)
			if !ok {
				return fmt.Errorf("%s: expected an object of key paths", args[0])
			}

			entries := make([]tlunit.Entry, 0, obj.Len())
			for _, key := range obj.Keys() {
				v, _ := obj.Get(key)
				s, ok := v.(string)
				if !ok {
					return fmt.Errorf("%s: value of %q is not a string", args[0], tlunit.PublicKey(key))
				}
				entries = append(entries, tlunit.Entry{Key: key, Value: s})
			}

			out, err := processor.EncodeDocument(processor.UnflattenEntries(entries), format)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", tlunit.ContentJSON, "Output format: json or yaml")
	return cmd
}

func (a *app) bilingualCmd() *cobra.Command {
	var threshold int
	var output string

	cmd := &cobra.Command{
		Use:   "bilingual TRANSLATED ORIGINAL",
		Short: "Merge a translated document with its original into bilingual labels",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ct, err := documentType(args[0])
			if err != nil {
				return err
			}
			translated, err := a.parseFile(args[0], ct)
			if err != nil {
				return err
			}
			original, err := a.parseFile(args[1], ct)
			if err != nil {
				return err
			}

			out, err := processor.EncodeDocument(processor.MergeBilingual(translated, original, threshold), ct)
			if err != nil {
				return err
			}
			return a.writeOutput(output, out)
		},
	}
	cmd.Flags().IntVar(&threshold, "threshold", processor.DefaultBilingualThreshold, "Longest original (UTF-16 units, exclusive) still shown next to its translation")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func (a *app) parseFile(path, ct string) (any, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	doc, err := processor.ParseDocument(data, ct)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify STRING...",
		Short: "Explain whether strings would be offered for translation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			type verdict struct {
				Value        string `json:"value"`
				Verdict      string `json:"verdict"`
				Translatable bool   `json:"translatable"`
			}

			out := make([]verdict, len(args))
			for i, s := range args {
				v := processor.Classify(s)
				out[i] = verdict{Value: s, Verdict: v.String(), Translatable: v == processor.Accept}
			}

			if a.jsonOut {
				return a.writeJSON(out)
			}
			for _, v := range out {
				fmt.Fprintf(a.stdout, "%-16s %q\n", v.Verdict, v.Value)
			}
			return nil
		},
	}
}

func (a *app) blacklistCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Manage key suffixes excluded from document translation",
	}
	cmd.PersistentFlags().StringVar(&file, "file", "", "Blacklist file (default: blacklist_file from the project file)")

	open := func() (*blacklist.FileStore, error) {
		path := file
		if path == "" {
			cfg, err := a.loadConfig()
			if err != nil {
				return nil, err
			}
			path = cfg.BlacklistFile
		}
		if path == "" {
			return nil, errors.New("no blacklist file: pass --file or set blacklist_file")
		}
		return blacklist.Open(path)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the patterns",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.writeJSON(store.Blacklist())
				}
				for _, p := range store.Blacklist() {
					fmt.Fprintln(a.stdout, p)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add PATTERN...",
			Short: "Add patterns",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				for _, p := range args {
					if store.Has(p) {
						continue
					}
					if _, err := store.Add(p); err != nil {
						return err
					}
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove PATTERN...",
			Short: "Remove patterns",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				for _, p := range args {
					removed, err := store.Remove(p)
					if err != nil {
						return err
					}
					if !removed {
						a.logger.Warn().Str("pattern", p).Msg("not in blacklist")
					}
				}
				return nil
			},
		},
	)
	return cmd
}

package main

import (
	"github.com/ZaguanLabs/tlunit/cache"
	"github.com/spf13/cobra"
)

func (a *app) tmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tm",
		Short: "Export or import the configured translation memory",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "export FILE",
			Short: "Write every stored translation to a JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := a.loadConfig()
				if err != nil {
					return err
				}
				store, closeStore, err := openStore(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer closeStore()

				meta := map[string]string{"target_lang": cfg.TargetLang, "source_lang": cfg.SourceLang}
				if err := cache.NewExporter(store).ExportToFile(args[0], meta); err != nil {
					return err
				}
				a.logger.Info().Str("file", args[0]).Msg("translation memory exported")
				return nil
			},
		},
		&cobra.Command{
			Use:   "import FILE",
			Short: "Load a JSON export into the translation memory",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := a.loadConfig()
				if err != nil {
					return err
				}
				store, closeStore, err := openStore(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer closeStore()

				res, err := cache.NewImporter(store).ImportFromFile(args[0])
				if err != nil {
					return err
				}
				if a.jsonOut {
					return a.writeJSON(res)
				}
				a.logger.Info().
					Str("file", args[0]).
					Str("version", res.Version).
					Int("imported", res.Imported).
					Int("skipped", res.Skipped).
					Int("failed", res.Failed).
					Msg("translation memory imported")
				return nil
			},
		},
	)
	return cmd
}

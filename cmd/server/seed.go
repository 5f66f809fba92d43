package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/villa-booking/internal/config"
	"github.com/iliyamo/villa-booking/internal/model"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert villas into an empty catalogue",
	Long: `Inserts the built-in sample villa, or the villas listed in --file.
The file is YAML (JSON works too) with a top-level "villas" list.
Nothing is inserted when the catalogue already has villas.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML or JSON file with villas to insert")
}

type seedDoc struct {
	Villas []model.Villa `yaml:"villas"`
}

func loadSeedFile(path string) ([]model.Villa, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc seedDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc.Villas) == 0 {
		return nil, fmt.Errorf("%s lists no villas", path)
	}
	for i, v := range doc.Villas {
		if v.Name == "" || v.Price <= 0 || v.MaxGuests < 1 {
			return nil, fmt.Errorf("villa #%d: name, price and max_guests are required", i+1)
		}
	}
	return doc.Villas, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cfg.DB.Driver == config.DriverMemory {
		return errors.New("seed needs DB_DRIVER set to mysql, postgres or sqlite")
	}
	villas := []model.Villa{model.SampleVilla()}
	if seedFile != "" {
		if villas, err = loadSeedFile(seedFile); err != nil {
			return err
		}
	}
	store, closer, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	n, err := seedVillas(cmd.Context(), store, villas)
	if err != nil {
		return err
	}
	if n == 0 {
		logger.Info("catalogue already populated, nothing to seed")
		return nil
	}
	logger.Info("seeded villas", zap.Int("count", n))
	return nil
}

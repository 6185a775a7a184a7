package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/rxtally/dispense-cli/internal/model"
	"github.com/rxtally/dispense-cli/pkg/ndcdir"
)

// loadCatalogFile reads a JSON catalog file: an array of NdcInfo entries,
// matching the shape the NDC Directory client returns.
func loadCatalogFile(path string) ([]model.NdcInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read catalog %s", path)
	}
	var entries []model.NdcInfo
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "parse catalog %s", path)
	}
	return entries, nil
}

// newDirectoryClient builds the openFDA client from config.
func newDirectoryClient() ndcdir.Client {
	opts := []ndcdir.Option{
		ndcdir.WithBaseURL(cfg.NdcDir.BaseURL),
		ndcdir.WithRateLimit(cfg.NdcDir.RequestsPerSec),
		ndcdir.WithMaxRetries(cfg.NdcDir.MaxRetries),
	}
	if cfg.NdcDir.APIKey != "" {
		opts = append(opts, ndcdir.WithAPIKey(cfg.NdcDir.APIKey))
	}
	return ndcdir.NewClient(opts...)
}

// resolveCatalog returns catalog entries from a file when one is given,
// otherwise from an NDC Directory lookup on the drug name.
func resolveCatalog(ctx context.Context, catalogPath, drugName string) ([]model.NdcInfo, error) {
	if catalogPath != "" {
		return loadCatalogFile(catalogPath)
	}
	if drugName == "" {
		return nil, eris.New("either --catalog or --drug is required")
	}
	return newDirectoryClient().SearchByName(ctx, drugName, 25)
}

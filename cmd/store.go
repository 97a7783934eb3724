package main

import (
	"context"
	"os"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"

	"github.com/brightpath-mortgage/intake-api/internal/ocr"
	"github.com/brightpath-mortgage/intake-api/internal/store"
	"github.com/brightpath-mortgage/intake-api/pkg/anthropic"
	sfpkg "github.com/brightpath-mortgage/intake-api/pkg/salesforce"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "intake.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		poolCfg := store.PoolConfig{
			MaxConns: cfg.Store.Pool.MaxConns,
			MinConns: cfg.Store.Pool.MinConns,
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &poolCfg)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initAnthropic returns nil when no API key is configured; callers treat
// that as extraction disabled.
func initAnthropic() anthropic.Client {
	if cfg.Anthropic.Key == "" {
		return nil
	}
	return anthropic.NewClient(cfg.Anthropic.Key)
}

func initOCR() (ocr.Extractor, error) {
	return ocr.NewExtractor(cfg.OCR, cfg.OCR.MistralKey)
}

// initSalesforce returns nil when no client ID is configured; the CRM
// sync worker is simply not started.
func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ClientID == "" {
		return nil, nil
	}

	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := gosf.Init(gosf.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Salesforce.RateLimitRPS)), nil
}

// Package convert wires parsing, conversion and export into one run.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/cleared-dev/ynabimport/internal/config"
	"github.com/cleared-dev/ynabimport/internal/importer"
	"github.com/cleared-dev/ynabimport/internal/log"
	"github.com/cleared-dev/ynabimport/internal/model"
	"github.com/cleared-dev/ynabimport/internal/rates"
	"github.com/cleared-dev/ynabimport/internal/storage"
	"github.com/cleared-dev/ynabimport/internal/ynab"
)

// FormatAuto asks Import to detect the statement format.
const FormatAuto = "auto"

// Service converts statements into YNAB import files.
type Service struct {
	registry *importer.Registry
	logger   *slog.Logger

	// load builds conv on first use; nil when conv was given up front.
	load     func(ctx context.Context) (rates.Converter, error)
	loadOnce sync.Once
	conv     rates.Converter
}

// NewService creates a Service. conv is used for multi-currency formats only.
func NewService(registry *importer.Registry, conv rates.Converter, logger *slog.Logger) *Service {
	if registry == nil {
		registry = importer.DefaultRegistry()
	}
	if conv == nil {
		conv = rates.Identity{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{registry: registry, conv: conv, logger: logger}
}

// NewServiceFromConfig builds the registry and converter described by cfg.
// The exchange rate is fetched once, on the first import of a multi-currency
// statement. A failed fetch is logged and leaves the converter unresolved;
// rows that needed the rate then fail with rates.RateNotFoundError.
func NewServiceFromConfig(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = log.Discard()
	}

	settings, err := cfg.RateSettings()
	if err != nil {
		return nil, fmt.Errorf("conversion settings: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Conversion.Timeout}
	}
	client := rates.NewClient(httpClient, cfg.Conversion.APIKey, logger)

	registry := importer.NewRegistry()
	registry.Register(&importer.WiseParser{})
	registry.Register(&importer.OTPParser{Sentinel: cfg.OTP.Sentinel})

	svc := NewService(registry, nil, logger)
	svc.load = func(ctx context.Context) (rates.Converter, error) {
		return rates.Load(ctx, settings, client)
	}
	return svc, nil
}

// converter returns the multi-currency converter, loading it on first use.
func (s *Service) converter(ctx context.Context) rates.Converter {
	s.loadOnce.Do(func() {
		if s.load == nil {
			return
		}
		conv, err := s.load(ctx)
		if err != nil {
			s.logger.Warn("exchange rate unavailable", "error", err)
		}
		if conv != nil {
			s.conv = conv
		}
	})
	return s.conv
}

// Registry returns the parsers the Service knows.
func (s *Service) Registry() *importer.Registry { return s.registry }

// Parser returns the parser for format, detecting it from data when format
// is empty or "auto".
func (s *Service) Parser(data []byte, format string) (importer.Parser, error) {
	if format == "" || strings.EqualFold(format, FormatAuto) {
		p, err := s.registry.Detect(data)
		if err != nil {
			return nil, fmt.Errorf("detecting format (known: %s): %w", strings.Join(s.registry.Formats(), ", "), err)
		}
		return p, nil
	}

	p := s.registry.Get(format)
	if p == nil {
		return nil, fmt.Errorf("%w: %q (known: %s)", importer.ErrUnknownFormat, format, strings.Join(s.registry.Formats(), ", "))
	}
	return p, nil
}

// Import parses data as format into a new Batch.
func (s *Service) Import(ctx context.Context, data []byte, format string) (*model.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.Parser(data, format)
	if err != nil {
		return nil, err
	}

	var conv rates.Converter = rates.Identity{}
	if p.MultiCurrency() {
		conv = s.converter(ctx)
	}

	batch, err := importer.Import(data, p, conv)
	if err != nil {
		return nil, err
	}

	s.logger.Info("imported statement",
		"batch", batch.ID(),
		"format", batch.Format(),
		"transactions", batch.Len(),
	)
	return batch, nil
}

// Export renders batch as a YNAB CSV file.
func (s *Service) Export(batch *model.Batch) ([]byte, error) {
	return ynab.Export(batch)
}

// Run reads src, imports it as format and saves the export to sink.
func (s *Service) Run(ctx context.Context, src storage.Source, sink storage.Sink, format string) (*model.Batch, error) {
	data, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := s.Import(ctx, data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}

	out, err := s.Export(batch)
	if err != nil {
		return nil, err
	}

	if err := sink.Save(ctx, out, ynab.Filename, ynab.MIMEType); err != nil {
		return nil, fmt.Errorf("saving export: %w", err)
	}

	s.logger.Debug("saved export", "batch", batch.ID(), "bytes", len(out))
	return batch, nil
}

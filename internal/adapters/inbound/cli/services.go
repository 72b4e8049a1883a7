package cli

import (
	"log/slog"

	"github.com/openkraft/codegate/internal/adapters/outbound/cache"
	"github.com/openkraft/codegate/internal/adapters/outbound/config"
	"github.com/openkraft/codegate/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/codegate/internal/adapters/outbound/history"
	"github.com/openkraft/codegate/internal/adapters/outbound/scanner"
	"github.com/openkraft/codegate/internal/application"
	"github.com/openkraft/codegate/internal/domain"
)

// newScanService wires the standard outbound adapters.
func newScanService(logger *slog.Logger) *application.ScanService {
	return application.NewScanService(config.New(), cache.New(), history.New(), gitinfo.New(), logger)
}

func dirSource(root string, logger *slog.Logger) func(domain.ProjectConfig) domain.SourceProvider {
	return func(cfg domain.ProjectConfig) domain.SourceProvider {
		return scanner.NewDirSource(root, scanner.OptionsFrom(cfg, logger))
	}
}

func zipSource(archive string, logger *slog.Logger) func(domain.ProjectConfig) domain.SourceProvider {
	return func(cfg domain.ProjectConfig) domain.SourceProvider {
		return scanner.NewZipSource(archive, scanner.OptionsFrom(cfg, logger))
	}
}

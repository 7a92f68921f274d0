// Package slog provides logging decorators for sdsget services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sdsget"
)

// Ensure LoggingProvider implements sdsget.Provider.
var _ sdsget.Provider = (*LoggingProvider)(nil)

// LoggingProvider wraps a Provider with per-operation logging.
type LoggingProvider struct {
	next   sdsget.Provider
	logger *slog.Logger
}

// NewLoggingProvider creates a new LoggingProvider.
func NewLoggingProvider(next sdsget.Provider, logger *slog.Logger) *LoggingProvider {
	return &LoggingProvider{next: next, logger: logger}
}

// Name delegates to the wrapped provider.
func (p *LoggingProvider) Name() string {
	return p.next.Name()
}

// ResolveProduct logs the identifier being resolved and delegates.
func (p *LoggingProvider) ResolveProduct(ctx context.Context, identifier string) (ref *sdsget.ProductReference, err error) {
	defer func(begin time.Time) {
		p.logger.Info("resolve product",
			"provider", p.next.Name(),
			"identifier", identifier,
			"duration", time.Since(begin),
			"code", sdsget.ErrorCode(err),
			"err", err,
		)
	}(time.Now())
	return p.next.ResolveProduct(ctx, identifier)
}

// PrimeSession logs session establishment and delegates.
func (p *LoggingProvider) PrimeSession(ctx context.Context, ref *sdsget.ProductReference) (err error) {
	defer func(begin time.Time) {
		p.logger.Info("prime session",
			"provider", p.next.Name(),
			"product", ref.ProductCode,
			"duration", time.Since(begin),
			"code", sdsget.ErrorCode(err),
			"err", err,
		)
	}(time.Now())
	return p.next.PrimeSession(ctx, ref)
}

// FetchDocument logs the fetch with bytes and duration and delegates.
func (p *LoggingProvider) FetchDocument(ctx context.Context, ref *sdsget.ProductReference, language string) (doc *sdsget.Document, err error) {
	defer func(begin time.Time) {
		var bytes int
		if doc != nil {
			bytes = len(doc.Body)
		}
		p.logger.Info("fetch document",
			"provider", p.next.Name(),
			"product", ref.ProductCode,
			"language", language,
			"bytes", bytes,
			"duration", time.Since(begin),
			"code", sdsget.ErrorCode(err),
			"err", err,
		)
	}(time.Now())
	return p.next.FetchDocument(ctx, ref, language)
}

// AvailableLanguages delegates to the wrapped provider when it lists
// languages, and reports none otherwise.
func (p *LoggingProvider) AvailableLanguages(ref *sdsget.ProductReference) []string {
	if lister, ok := p.next.(sdsget.LanguageLister); ok {
		return lister.AvailableLanguages(ref)
	}
	return nil
}

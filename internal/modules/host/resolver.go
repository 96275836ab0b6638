// Package host resolves the Host header of an incoming request to the
// tenant site it addresses, and serves tenant pages as middleware
// ahead of the platform's own routes.
package host

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/siteforge/core/internal/models"
	"github.com/siteforge/core/internal/pkg/redis"
	"go.uber.org/zap"
)

const (
	cacheKeyPrefix = "sf:host:"
	cacheTTL       = 30 * time.Second

	// Cached for hosts that resolved to nothing, so a burst of hits on
	// an unknown host does not hammer the store.
	cacheMiss = "-"
)

// Directory is the slice of the site module the resolver reads from.
type Directory interface {
	GetBySubdomain(subdomain string) (*models.SiteModel, error)
	GetByCustomDomain(domain string) (*models.SiteModel, error)
}

type Resolver struct {
	sites  Directory
	cache  *redis.Client
	logger *zap.Logger
}

// NewResolver builds a resolver. cache may be nil; lookups then always
// go to the directory.
func NewResolver(sites Directory, cache *redis.Client, logger *zap.Logger) *Resolver {
	return &Resolver{sites: sites, cache: cache, logger: logger}
}

// Resolve maps a raw Host header to a site, or nil when the host does
// not address a tenant. It never returns an error: a store failure is
// logged and treated as no tenant, so the caller falls through to
// normal routing instead of aborting the request.
func (r *Resolver) Resolve(ctx context.Context, rawHost string) *models.SiteModel {
	host := normalizeHost(rawHost)
	if host == "" || strings.HasPrefix(host, "localhost") || !strings.Contains(host, ".") {
		return nil
	}

	if site, hit := r.cached(ctx, host); hit {
		return site
	}

	labels := strings.Split(host, ".")
	var (
		site *models.SiteModel
		err  error
	)
	if len(labels) == 2 {
		site, err = r.sites.GetByCustomDomain(host)
	} else {
		site, err = r.sites.GetBySubdomain(labels[0])
	}
	if err != nil {
		r.logger.Error("tenant lookup failed", zap.String("host", host), zap.Error(err))
		return nil
	}

	r.store(ctx, host, site)
	return site
}

func (r *Resolver) cached(ctx context.Context, host string) (*models.SiteModel, bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, cacheKeyPrefix+host)
	if err != nil || raw == "" {
		return nil, false
	}
	if raw == cacheMiss {
		return nil, true
	}
	var site models.SiteModel
	if err := json.Unmarshal([]byte(raw), &site); err != nil {
		return nil, false
	}
	return &site, true
}

func (r *Resolver) store(ctx context.Context, host string, site *models.SiteModel) {
	if r.cache == nil {
		return
	}
	value := cacheMiss
	if site != nil {
		raw, err := json.Marshal(site)
		if err != nil {
			return
		}
		value = string(raw)
	}
	if err := r.cache.Set(ctx, cacheKeyPrefix+host, value, cacheTTL); err != nil {
		r.logger.Debug("host cache write failed", zap.String("host", host), zap.Error(err))
	}
}

// normalizeHost lowercases the header and strips any port and trailing
// dot.
func normalizeHost(raw string) string {
	host := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	host = strings.TrimSuffix(host, ".")
	return host
}

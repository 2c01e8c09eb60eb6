package validators

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// DomainChecker confere se o domínio do e-mail recebe mensagens (MX, ou A/AAAA
// como fallback). Resultados ficam em cache para não repetir DNS a cada cadastro.
type DomainChecker struct {
	cache   *cache.Cache
	timeout time.Duration
	lookup  func(ctx context.Context, domain string) bool
}

func NewDomainChecker(ttl time.Duration) *DomainChecker {
	return &DomainChecker{
		cache:   cache.New(ttl, 2*ttl),
		timeout: 3 * time.Second,
		lookup:  resolves,
	}
}

func (d *DomainChecker) Valid(ctx context.Context, email string) bool {
	domain, ok := emailDomain(email)
	if !ok {
		return false
	}

	if v, found := d.cache.Get(domain); found {
		return v.(bool)
	}

	lctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	valid := d.lookup(lctx, domain)
	// timeout não é resposta; não guarda
	if lctx.Err() == nil {
		d.cache.SetDefault(domain, valid)
	}
	return valid
}

func emailDomain(email string) (string, bool) {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "", false
	}
	return strings.ToLower(email[at+1:]), true
}

func resolves(ctx context.Context, domain string) bool {
	if mx, err := net.DefaultResolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}
	if ips, err := net.DefaultResolver.LookupIPAddr(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}
	return false
}

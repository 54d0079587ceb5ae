package httpclient

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// persistentJar is an http.CookieJar that mirrors every cookie the backend
// sets into a CookieStore and seeds itself from the store on first use of a host.
type persistentJar struct {
	jar    http.CookieJar
	store  CookieStore
	log    resty.Logger
	mu     sync.Mutex
	loaded map[string]bool
}

func newPersistentJar(jar http.CookieJar, store CookieStore, log resty.Logger) *persistentJar {
	return &persistentJar{
		jar:    jar,
		store:  store,
		log:    log,
		loaded: make(map[string]bool),
	}
}

func (p *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	p.ensureLoaded(u)
	p.jar.SetCookies(u, cookies)
	if len(cookies) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.store.LoadCookies(u.Host)
	if err != nil {
		p.warnf("load persisted cookies for %s: %v", u.Host, err)
		return
	}
	merged := mergeCookies(stored, cookies, time.Now())
	if err := p.store.SaveCookies(u.Host, merged); err != nil {
		p.warnf("persist cookies for %s: %v", u.Host, err)
	}
}

func (p *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	p.ensureLoaded(u)
	return p.jar.Cookies(u)
}

// ensureLoaded seeds the in-memory jar with the persisted cookies of u's host once.
// The lock is held until seeding is done so concurrent callers see the cookies.
func (p *persistentJar) ensureLoaded(u *url.URL) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded[u.Host] {
		return
	}
	p.loaded[u.Host] = true

	stored, err := p.store.LoadCookies(u.Host)
	if err != nil {
		p.warnf("load persisted cookies for %s: %v", u.Host, err)
		return
	}
	if len(stored) == 0 {
		return
	}
	root := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
	p.jar.SetCookies(root, stored)
}

func (p *persistentJar) warnf(format string, v ...interface{}) {
	if p.log != nil {
		p.log.Warnf(format, v...)
	}
}

// mergeCookies replaces stored cookies by name and path, dropping deleted or expired ones.
func mergeCookies(stored, incoming []*http.Cookie, now time.Time) []*http.Cookie {
	type key struct{ name, path string }
	idx := make(map[key]int, len(stored))
	out := make([]*http.Cookie, 0, len(stored)+len(incoming))
	for _, c := range stored {
		idx[key{c.Name, c.Path}] = len(out)
		out = append(out, c)
	}
	for _, c := range incoming {
		k := key{c.Name, c.Path}
		if i, ok := idx[k]; ok {
			out[i] = c
			continue
		}
		idx[k] = len(out)
		out = append(out, c)
	}

	live := out[:0]
	for _, c := range out {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now)) {
			continue
		}
		live = append(live, c)
	}
	return live
}

// sessionJar puts the configured session cookie into the jar the first time a
// host is used, unless the jar already holds a cookie of that name. Cookies the
// backend sets later replace it like any other.
type sessionJar struct {
	http.CookieJar
	cookie *http.Cookie
	mu     sync.Mutex
	seeded map[string]bool
}

func newSessionJar(jar http.CookieJar, cookie *http.Cookie) *sessionJar {
	c := *cookie
	if c.Path == "" {
		c.Path = "/"
	}
	return &sessionJar{CookieJar: jar, cookie: &c, seeded: make(map[string]bool)}
}

func (s *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.seed(u)
	s.CookieJar.SetCookies(u, cookies)
}

func (s *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	s.seed(u)
	return s.CookieJar.Cookies(u)
}

func (s *sessionJar) seed(u *url.URL) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded[u.Host] {
		return
	}
	s.seeded[u.Host] = true

	root := &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
	for _, c := range s.CookieJar.Cookies(root) {
		if c.Name == s.cookie.Name {
			return
		}
	}
	c := *s.cookie
	s.CookieJar.SetCookies(root, []*http.Cookie{&c})
}

// Package robots decides whether a source page may be fetched under the
// host's robots.txt. Rules are fetched once per host and kept in an
// expiring in-memory store.
package robots

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/originality/internal/cache"
)

// MaxBytes bounds how much of a robots.txt body is read.
const MaxBytes = 512 << 10

// ErrUnavailable reports a robots.txt that could not be retrieved because
// of a server error or network failure. Fetching is disallowed until a
// later lookup succeeds.
var ErrUnavailable = errors.New("robots.txt unavailable")

// Rule is one compiled Allow or Disallow line.
type Rule struct {
	Pattern string
	Allow   bool
	re      *regexp.Regexp
	weight  int
}

// Group is the set of rules that applies to its user agents.
type Group struct {
	Agents     []string
	Rules      []Rule
	CrawlDelay time.Duration
}

// Rules is a parsed robots.txt. The zero value allows everything.
type Rules struct {
	Groups []Group
}

// Manager fetches and caches robots.txt per scheme and host.
type Manager struct {
	HTTPClient *http.Client
	UserAgent  string
	Cache      *cache.Store[Rules]
	// AllowPrivateHosts enables lookups against loopback and private
	// addresses. When false such hosts are allowed without a lookup.
	AllowPrivateHosts bool
}

// NewManager returns a manager caching rules for ttl.
func NewManager(hc *http.Client, userAgent string, ttl time.Duration) *Manager {
	return &Manager{
		HTTPClient: hc,
		UserAgent:  userAgent,
		Cache:      cache.NewStore[Rules]("robots", 1000, ttl, nil),
	}
}

// Allowed reports whether pageURL may be fetched. Unparseable URLs are
// refused; unavailable robots.txt files refuse the page for now.
func (m *Manager) Allowed(ctx context.Context, pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	if !m.AllowPrivateHosts && isPrivateHost(u.Hostname()) {
		return true
	}
	rules, err := m.Get(ctx, u.Scheme+"://"+u.Host+"/robots.txt")
	if err != nil {
		log.Debug().Err(err).Str("url", pageURL).Msg("robots lookup failed")
		return false
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return rules.IsAllowed(m.UserAgent, path)
}

// Get returns the rules at robotsURL. A 4xx response yields empty rules;
// a 5xx response or transport error yields ErrUnavailable and is not
// cached.
func (m *Manager) Get(ctx context.Context, robotsURL string) (Rules, error) {
	if m.Cache != nil {
		if r, ok := m.Cache.Get(robotsURL); ok {
			return r, nil
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, fmt.Errorf("new request: %w", err)
	}
	if m.UserAgent != "" {
		req.Header.Set("User-Agent", m.UserAgent)
	}
	client := m.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Rules{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var rules Rules
	switch {
	case resp.StatusCode >= 500:
		return Rules{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes))
		if err != nil {
			return Rules{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		rules = Parse(string(body))
	default:
		return Rules{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if m.Cache != nil {
		m.Cache.Set(robotsURL, rules)
	}
	return rules, nil
}

// Parse reads robots.txt text. Consecutive User-agent lines share one
// group; a User-agent line after any rule starts a new group.
func Parse(text string) Rules {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64<<10), MaxBytes)
	var (
		out     Rules
		cur     Group
		hasRule bool
	)
	flush := func() {
		if len(cur.Agents) > 0 {
			out.Groups = append(out.Groups, cur)
		}
		cur, hasRule = Group{}, false
	}
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent", "useragent":
			if hasRule {
				flush()
			}
			cur.Agents = append(cur.Agents, strings.ToLower(val))
		case "allow", "disallow":
			hasRule = true
			if val == "" {
				continue
			}
			cur.Rules = append(cur.Rules, compile(val, key == "allow"))
		case "crawl-delay", "crawldelay":
			hasRule = true
			if secs, err := strconv.ParseFloat(val, 64); err == nil && secs > 0 {
				cur.CrawlDelay = time.Duration(secs * float64(time.Second))
			}
		}
	}
	flush()
	return out
}

// compile turns a robots pattern into an anchored regexp. '*' matches any
// run of characters and a trailing '$' anchors the end.
func compile(pattern string, allow bool) Rule {
	body, anchored := strings.CutSuffix(pattern, "$")
	parts := strings.Split(body, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	expr := "^" + strings.Join(parts, ".*")
	if anchored {
		expr += "$"
	}
	return Rule{
		Pattern: pattern,
		Allow:   allow,
		re:      regexp.MustCompile(expr),
		weight:  len(strings.ReplaceAll(body, "*", "")),
	}
}

// IsAllowed applies the group best matching userAgent to path. The longest
// matching rule wins and Allow wins ties. No matching rule allows.
func (r Rules) IsAllowed(userAgent, path string) bool {
	g := r.group(userAgent)
	if g == nil {
		return true
	}
	best, allow := -1, true
	for _, rule := range g.Rules {
		if !rule.re.MatchString(path) {
			continue
		}
		if rule.weight > best || (rule.weight == best && rule.Allow) {
			best, allow = rule.weight, rule.Allow
		}
	}
	return allow
}

// CrawlDelay returns the delay requested for userAgent, or zero.
func (r Rules) CrawlDelay(userAgent string) time.Duration {
	if g := r.group(userAgent); g != nil {
		return g.CrawlDelay
	}
	return 0
}

// group picks the group whose agent token is the longest substring of
// userAgent; '*' matches only when nothing more specific does.
func (r Rules) group(userAgent string) *Group {
	ua := strings.ToLower(userAgent)
	var (
		best  *Group
		score = -1
	)
	for i := range r.Groups {
		for _, a := range r.Groups[i].Agents {
			s := -1
			switch {
			case a == "*":
				s = 0
			case a != "" && strings.Contains(ua, a):
				s = len(a)
			}
			if s > score {
				best, score = &r.Groups[i], s
			}
		}
	}
	return best
}

func isPrivateHost(host string) bool {
	h := strings.ToLower(host)
	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified())
}

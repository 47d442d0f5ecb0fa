package ephem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/litescript/ls-starmap/internal/astro"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 30 * time.Second

	// CacheTTL is how long an observer-table answer is reused.
	CacheTTL = 5 * time.Minute

	// MaxCacheEntries bounds the observer-table cache.
	MaxCacheEntries = 1024
)

// ErrHorizons wraps failures reported by the Horizons service itself.
var ErrHorizons = errors.New("horizons error")

// HorizonsClient queries JPL Horizons for reference positions. It is only
// used to cross-check the local models and never sits on the render path.
type HorizonsClient struct {
	client  *http.Client
	baseURL string

	mu    sync.RWMutex
	cache map[cacheKey]cachedPosition
	now   func() time.Time
}

// cacheKey identifies one answer. Observer coordinates are rounded to a
// thousandth of a degree, about 100 m.
type cacheKey struct {
	target   TargetID
	minute   int64
	latMilli int64
	lonMilli int64
}

func newCacheKey(target TargetID, t time.Time, obs astro.Observer) cacheKey {
	return cacheKey{
		target:   target,
		minute:   t.Unix() / 60,
		latMilli: int64(math.Round(obs.LatDeg * 1000)),
		lonMilli: int64(math.Round(obs.LonDeg * 1000)),
	}
}

type cachedPosition struct {
	pos       Position
	fetchedAt time.Time
}

// NewHorizonsClient creates a Horizons API client. An empty baseURL uses
// HorizonsAPIURL.
func NewHorizonsClient(baseURL string) *HorizonsClient {
	if baseURL == "" {
		baseURL = HorizonsAPIURL
	}
	return &HorizonsClient{
		client: &http.Client{
			Timeout: RequestTimeout,
		},
		baseURL: baseURL,
		cache:   make(map[cacheKey]cachedPosition),
		now:     time.Now,
	}
}

// Name implements Provider.
func (c *HorizonsClient) Name() string {
	return "Horizons"
}

// Position implements Provider.
func (c *HorizonsClient) Position(ctx context.Context, target TargetID, t time.Time, obs astro.Observer) (Position, error) {
	return c.Observe(ctx, target, t, obs)
}

// Observe returns the apparent RA/Dec (equinox of date) and range of a
// target as seen from obs at t (truncated to the minute).
func (c *HorizonsClient) Observe(ctx context.Context, target TargetID, t time.Time, obs astro.Observer) (Position, error) {
	if err := obs.Validate(); err != nil {
		return Position{}, err
	}
	t = t.UTC().Truncate(time.Minute)
	key := newCacheKey(target, t, obs)

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(cached.fetchedAt) < CacheTTL {
		return cached.pos, nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", target))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "OBSERVER")
	params.Set("CENTER", "'coord@399'")
	params.Set("COORD_TYPE", "GEODETIC")
	params.Set("SITE_COORD", fmt.Sprintf("'%.4f,%.4f,%.3f'", obs.LonDeg, obs.LatDeg, obs.ElevationM/1000))
	params.Set("START_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(t)))
	params.Set("STOP_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(t.Add(time.Minute))))
	params.Set("STEP_SIZE", "'1 m'")
	params.Set("QUANTITIES", "'2,20'") // 2=Apparent RA/Dec of date, 20=Observer range
	params.Set("ANG_FORMAT", "DEG")

	body, err := c.get(ctx, params)
	if err != nil {
		return Position{}, err
	}

	points, err := parseObserverResponse(body)
	if err != nil {
		return Position{}, err
	}
	if len(points) == 0 {
		return Position{}, fmt.Errorf("%w: no data returned for target %d", ErrHorizons, target)
	}

	pos := points[0].pos
	c.store(key, pos)

	return pos, nil
}

// HeliocentricVector returns the heliocentric ecliptic position of a target
// in AU, the frame the planetary mean elements are expressed in.
func (c *HorizonsClient) HeliocentricVector(ctx context.Context, target TargetID, t time.Time) (astro.Vec3, error) {
	t = t.UTC().Truncate(time.Minute)

	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", target))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "VECTORS")
	params.Set("CENTER", "'@10'")       // Sun center
	params.Set("REF_PLANE", "ECLIPTIC") // Ecliptic plane
	params.Set("REF_SYSTEM", "ICRF")
	params.Set("VEC_TABLE", "'1'") // Position only
	params.Set("VEC_LABELS", "NO")
	params.Set("OUT_UNITS", "'AU-D'")
	params.Set("START_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(t)))
	params.Set("STOP_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(t.Add(time.Minute))))
	params.Set("STEP_SIZE", "'1 m'")

	body, err := c.get(ctx, params)
	if err != nil {
		return astro.Vec3{}, err
	}
	return parseVectorResponse(body)
}

func (c *HorizonsClient) get(ctx context.Context, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build horizons request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrHorizons, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

type observerPoint struct {
	time time.Time
	pos  Position
}

// dataSection extracts the text between the $$SOE and $$EOE markers.
func dataSection(body []byte) (string, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrHorizons, resp.Error)
	}

	soeIdx := strings.Index(resp.Result, "$$SOE")
	eoeIdx := strings.Index(resp.Result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return "", fmt.Errorf("%w: could not find ephemeris data markers", ErrHorizons)
	}
	return resp.Result[soeIdx+5 : eoeIdx], nil
}

// parseObserverResponse parses an OBSERVER table response.
func parseObserverResponse(body []byte) ([]observerPoint, error) {
	section, err := dataSection(body)
	if err != nil {
		return nil, err
	}

	var points []observerPoint
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		point, err := parseObserverLine(line)
		if err != nil {
			continue // Skip unparseable lines
		}
		points = append(points, point)
	}
	return points, nil
}

// parseObserverLine parses a single observer-table line.
// Format for QUANTITIES='2,20' with ANG_FORMAT=DEG:
// 2024-Jan-01 00:00 *m  280.123456 -23.123456  1.23456789012345 -12.3456789
// Fields: date, time, optional flags, RA, Dec, delta (AU), deldot (km/s)
func parseObserverLine(line string) (observerPoint, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return observerPoint{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	t, err := parseHorizonsDateTime(fields[0] + " " + fields[1])
	if err != nil {
		return observerPoint{}, err
	}

	// Skip any flag fields (like *, *m, Cm, Nm, Am, etc.)
	var nums []float64
	for _, f := range fields[2:] {
		val, err := strconv.ParseFloat(f, 64)
		if err == nil {
			nums = append(nums, val)
		}
	}
	if len(nums) < 2 {
		return observerPoint{}, fmt.Errorf("could not find RA/Dec values")
	}

	pos := Position{
		RAHours: astro.NormalizeHours(nums[0] / 15),
		DecDeg:  nums[1],
	}
	if len(nums) >= 3 {
		pos.DistanceAU = nums[2]
	}
	return observerPoint{time: t, pos: pos}, nil
}

// parseHorizonsDateTime parses Horizons date format like "2025-Dec-05 00:00".
func parseHorizonsDateTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-Jan-02 15:04", "2006-Jan-02 15:04:05", "2006-Jan-02 15:04:05.000"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// formatHorizonsTime formats a time for Horizons API.
func formatHorizonsTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

// parseVectorResponse parses the Horizons JSON response for vector data.
func parseVectorResponse(body []byte) (astro.Vec3, error) {
	section, err := dataSection(body)
	if err != nil {
		return astro.Vec3{}, err
	}

	// Vector format (VEC_TABLE='1'):
	// 2460651.500000000 = A.D. 2024-Dec-05 00:00:00.0000 TDB
	//  X = 1.234567890123456E+00 Y = 2.345678901234567E+00 Z = 3.456789012345678E-01
	// OR without labels:
	//  1.234567890123456E+00  2.345678901234567E+00  3.456789012345678E-01
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "A.D.") {
			continue
		}
		if strings.Contains(line, "X =") {
			return parseVectorLabeled(line)
		}
		if vec, err := parseVectorUnlabeled(line); err == nil {
			return vec, nil
		}
	}

	return astro.Vec3{}, fmt.Errorf("%w: could not parse vector data", ErrHorizons)
}

// parseVectorLabeled parses: X = 1.23E+00 Y = 2.34E+00 Z = 3.45E-01
func parseVectorLabeled(line string) (astro.Vec3, error) {
	parts := strings.Split(line, "=")
	if len(parts) < 4 {
		return astro.Vec3{}, fmt.Errorf("invalid labeled format")
	}

	// parts[1] holds "X_value Y", parts[2] "Y_value Z", parts[3] "Z_value"
	var vals [3]float64
	for i := 0; i < 3; i++ {
		f := strings.Fields(parts[i+1])
		if len(f) == 0 {
			return astro.Vec3{}, fmt.Errorf("invalid labeled format")
		}
		v, err := strconv.ParseFloat(f[0], 64)
		if err != nil {
			return astro.Vec3{}, err
		}
		vals[i] = v
	}
	return astro.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// parseVectorUnlabeled parses: 1.23E+00  2.34E+00  3.45E-01
func parseVectorUnlabeled(line string) (astro.Vec3, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return astro.Vec3{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	var vals [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return astro.Vec3{}, err
		}
		vals[i] = v
	}
	return astro.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// store caches pos under key. A full cache first drops expired entries,
// then arbitrary ones.
func (c *HorizonsClient) store(key cacheKey, pos Position) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.cache[key]; !ok && len(c.cache) >= MaxCacheEntries {
		for k, v := range c.cache {
			if now.Sub(v.fetchedAt) >= CacheTTL {
				delete(c.cache, k)
			}
		}
		for k := range c.cache {
			if len(c.cache) < MaxCacheEntries {
				break
			}
			delete(c.cache, k)
		}
	}
	c.cache[key] = cachedPosition{pos: pos, fetchedAt: now}
}

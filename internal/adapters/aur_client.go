package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"runepkg/internal/ports"
	"runepkg/internal/shared"
	"runepkg/internal/types"
)

const DefaultAURURL = "https://aur.archlinux.org"

const defaultAURTimeout = 30 * time.Second
const defaultAURRate = 5.0
const aurInfoChunkSize = 150
const maxAURResponseSize = 32 << 20

// AURClientAdapter talks to the AUR RPC v5 interface. Requests are not
// retried; a failed lookup is reported to the caller as unavailable.
type AURClientAdapter struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

func NewAURClientAdapter(baseURL string, timeoutSec int, ratePerSec float64) AURClientAdapter {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultAURURL
	}
	return AURClientAdapter{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Client:  &http.Client{Timeout: normalizeAURTimeout(timeoutSec)},
		Limiter: rate.NewLimiter(rate.Limit(normalizeAURRate(ratePerSec)), 1),
	}
}

type aurResponse struct {
	Version     int              `json:"version"`
	Type        string           `json:"type"`
	ResultCount int              `json:"resultcount"`
	Results     []aurPackageJSON `json:"results"`
	Error       string           `json:"error"`
}

type aurPackageJSON struct {
	Name           string   `json:"Name"`
	PackageBase    string   `json:"PackageBase"`
	Version        string   `json:"Version"`
	Description    *string  `json:"Description"`
	Maintainer     *string  `json:"Maintainer"`
	NumVotes       int      `json:"NumVotes"`
	Popularity     float64  `json:"Popularity"`
	OutOfDate      *int64   `json:"OutOfDate"`
	FirstSubmitted int64    `json:"FirstSubmitted"`
	LastModified   int64    `json:"LastModified"`
	URL            *string  `json:"URL"`
	URLPath        string   `json:"URLPath"`
	Depends        []string `json:"Depends"`
	MakeDepends    []string `json:"MakeDepends"`
	OptDepends     []string `json:"OptDepends"`
	Conflicts      []string `json:"Conflicts"`
	License        []string `json:"License"`
	Keywords       []string `json:"Keywords"`
}

func (p aurPackageJSON) record() types.PackageRecord {
	maintainer := "orphan"
	if p.Maintainer != nil && strings.TrimSpace(*p.Maintainer) != "" {
		maintainer = *p.Maintainer
	}
	return types.PackageRecord{
		Name:           p.Name,
		PackageBase:    p.PackageBase,
		Version:        p.Version,
		Description:    deref(p.Description),
		Maintainer:     maintainer,
		Votes:          p.NumVotes,
		Popularity:     p.Popularity,
		OutOfDate:      p.OutOfDate,
		FirstSubmitted: p.FirstSubmitted,
		LastModified:   p.LastModified,
		URL:            deref(p.URL),
		URLPath:        p.URLPath,
		Depends:        p.Depends,
		MakeDepends:    p.MakeDepends,
		OptDepends:     p.OptDepends,
		Conflicts:      p.Conflicts,
		License:        p.License,
		Keywords:       p.Keywords,
	}
}

// Info resolves all names in one logical lookup. Long name lists are split
// into chunks so request URLs stay within server limits.
func (a AURClientAdapter) Info(ctx context.Context, names []string) ([]types.PackageRecord, error) {
	unique := shared.UniqueStrings(names)
	if len(unique) == 0 {
		return nil, nil
	}
	var records []types.PackageRecord
	for start := 0; start < len(unique); start += aurInfoChunkSize {
		end := start + aurInfoChunkSize
		if end > len(unique) {
			end = len(unique)
		}
		query := url.Values{}
		query.Set("v", "5")
		query.Set("type", "info")
		for _, name := range unique[start:end] {
			query.Add("arg[]", name)
		}
		resp, err := a.request(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, pkg := range resp.Results {
			records = append(records, pkg.record())
		}
	}
	log.Debug().Int("requested", len(unique)).Int("found", len(records)).Msg("aur info lookup")
	return records, nil
}

// Search queries shorter than two characters return no results without a
// request. Results are ordered by votes, most voted first.
func (a AURClientAdapter) Search(ctx context.Context, query string, mode types.SearchMode) ([]types.PackageRecord, error) {
	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < 2 {
		return nil, nil
	}
	if mode == "" {
		mode = types.SearchModeNameDesc
	}
	params := url.Values{}
	params.Set("v", "5")
	params.Set("type", "search")
	params.Set("by", string(mode))
	params.Set("arg", trimmed)
	resp, err := a.request(ctx, params)
	if err != nil {
		return nil, err
	}
	records := make([]types.PackageRecord, 0, len(resp.Results))
	for _, pkg := range resp.Results {
		records = append(records, pkg.record())
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Votes > records[j].Votes
	})
	return records, nil
}

func (a AURClientAdapter) request(ctx context.Context, query url.Values) (aurResponse, error) {
	if a.Limiter != nil {
		if err := a.Limiter.Wait(ctx); err != nil {
			return aurResponse{}, errbuilder.New().
				WithCode(errbuilder.CodeUnavailable).
				WithMsg("aur request cancelled").
				WithCause(err)
		}
	}
	endpoint := fmt.Sprintf("%s/rpc/?%s", a.BaseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return aurResponse{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create aur request").
			WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: defaultAURTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return aurResponse{}, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("failed to connect to aur").
			WithCause(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAURResponseSize))
	if err != nil {
		return aurResponse{}, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("failed to read aur response").
			WithCause(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := errbuilder.CodeUnavailable
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			code = errbuilder.CodeInvalidArgument
		}
		return aurResponse{}, errbuilder.New().
			WithCode(code).
			WithMsg("aur request failed").
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, endpoint, strings.TrimSpace(string(body))))
	}
	var decoded aurResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return aurResponse{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid response from aur").
			WithCause(err)
	}
	if decoded.Type == "error" {
		message := strings.TrimSpace(decoded.Error)
		if message == "" {
			message = "unknown error"
		}
		return aurResponse{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("aur rejected request: " + message)
	}
	return decoded, nil
}

func normalizeAURTimeout(value int) time.Duration {
	timeout := time.Duration(value) * time.Second
	if timeout <= 0 {
		return defaultAURTimeout
	}
	return timeout
}

func normalizeAURRate(value float64) float64 {
	if value <= 0 {
		return defaultAURRate
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

var _ ports.MetadataSourcePort = AURClientAdapter{}

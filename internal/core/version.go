package core

import (
	"context"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"
	"github.com/rs/zerolog/log"

	"runepkg/internal/ports"
)

// ComparisonStrategy names the tier that produced the last ordering.
type ComparisonStrategy string

const (
	StrategyTool    ComparisonStrategy = "vercmp"
	StrategyEqual   ComparisonStrategy = "equal"
	StrategyDebian  ComparisonStrategy = "epoch-release"
	StrategyOrdinal ComparisonStrategy = "ordinal"
)

type versionPair struct {
	a string
	b string
}

// VersionComparator orders versions with the package manager's own tool.
// When the tool is missing or its output is unusable it falls back to an
// approximation that is logged once per tier. Results are memoised in
// both directions so Compare(a, b) == -Compare(b, a) holds even when the
// tool fails halfway through a run.
type VersionComparator struct {
	Tool ports.VercmpPort

	mu          sync.Mutex
	toolMissing bool
	cache       map[versionPair]int
	warned      map[ComparisonStrategy]bool
	last        ComparisonStrategy
}

func NewVersionComparator(tool ports.VercmpPort) *VersionComparator {
	return &VersionComparator{
		Tool:   tool,
		cache:  map[versionPair]int{},
		warned: map[ComparisonStrategy]bool{},
	}
}

func (c *VersionComparator) Compare(ctx context.Context, a string, b string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache == nil {
		c.cache = map[versionPair]int{}
	}
	if c.warned == nil {
		c.warned = map[ComparisonStrategy]bool{}
	}

	if a == b {
		c.last = StrategyEqual
		return 0
	}
	if cached, ok := c.cache[versionPair{a, b}]; ok {
		return cached
	}

	result, strategy := c.compareUncached(ctx, a, b)
	c.last = strategy
	c.cache[versionPair{a, b}] = result
	c.cache[versionPair{b, a}] = -result
	return result
}

// LastStrategy reports which tier answered the most recent uncached
// comparison.
func (c *VersionComparator) LastStrategy() ComparisonStrategy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *VersionComparator) compareUncached(ctx context.Context, a string, b string) (int, ComparisonStrategy) {
	if c.Tool != nil && !c.toolMissing {
		result, err := c.Tool.Vercmp(ctx, a, b)
		if err == nil {
			return sign(result), StrategyTool
		}
		if errbuilder.CodeOf(err) == errbuilder.CodeNotFound {
			c.toolMissing = true
			log.Warn().Err(err).Msg("vercmp unavailable, version ordering is approximate")
		} else {
			log.Debug().Err(err).Str("a", a).Str("b", b).Msg("vercmp failed for pair")
		}
	}
	return c.approximate(a, b)
}

func (c *VersionComparator) approximate(a string, b string) (int, ComparisonStrategy) {
	if strings.TrimSpace(a) == strings.TrimSpace(b) {
		return 0, StrategyEqual
	}
	if result, ok := compareEpochRelease(a, b); ok {
		c.warnOnce(StrategyDebian)
		return result, StrategyDebian
	}
	c.warnOnce(StrategyOrdinal)
	return sign(strings.Compare(a, b)), StrategyOrdinal
}

func (c *VersionComparator) warnOnce(strategy ComparisonStrategy) {
	if c.warned[strategy] {
		return
	}
	c.warned[strategy] = true
	log.Warn().Str("strategy", string(strategy)).Msg("using approximate version ordering")
}

// compareEpochRelease orders epoch:upstream-release strings. The epoch
// and release rules match pacman closely enough for common versions.
func compareEpochRelease(a string, b string) (int, bool) {
	va, err := debversion.NewVersion(strings.TrimSpace(a))
	if err != nil {
		return 0, false
	}
	vb, err := debversion.NewVersion(strings.TrimSpace(b))
	if err != nil {
		return 0, false
	}
	return sign(va.Compare(vb)), true
}

func sign(value int) int {
	switch {
	case value < 0:
		return -1
	case value > 0:
		return 1
	default:
		return 0
	}
}

var _ ports.VersionComparatorPort = (*VersionComparator)(nil)

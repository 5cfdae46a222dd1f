package policies

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"runepkg/internal/ports"
	"runepkg/internal/types"
)

// IgnorePolicy holds packages back from updates. Patterns are "name",
// "prefix*" or "*", optionally scoped with "aur:" or "repo:".
type IgnorePolicy struct {
	Patterns       []string
	exactByKind    map[types.UpdateKind]map[string]bool
	exactAny       map[string]bool
	prefixByKind   map[types.UpdateKind][]string
	prefixAny      []string
	wildcardByKind map[types.UpdateKind]bool
	wildcardAny    bool
}

var _ ports.UpdatePolicyPort = IgnorePolicy{}

func NewIgnorePolicy(patterns []string) (IgnorePolicy, error) {
	policy := IgnorePolicy{
		exactByKind:    map[types.UpdateKind]map[string]bool{},
		exactAny:       map[string]bool{},
		prefixByKind:   map[types.UpdateKind][]string{},
		wildcardByKind: map[types.UpdateKind]bool{},
	}
	for _, pattern := range patterns {
		parsed, err := parsePattern(pattern)
		if err != nil {
			return IgnorePolicy{}, err
		}
		if parsed.kind == patternEmpty {
			continue
		}
		policy.Patterns = append(policy.Patterns, strings.TrimSpace(pattern))
		policy.store(parsed)
	}
	return policy, nil
}

func (p IgnorePolicy) Ignores(kind types.UpdateKind, name string) bool {
	if p.wildcardAny || p.wildcardByKind[kind] {
		return true
	}
	if p.exactAny[name] || p.exactByKind[kind][name] {
		return true
	}
	for _, prefix := range p.prefixAny {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	for _, prefix := range p.prefixByKind[kind] {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

type parsedPattern struct {
	updateKind *types.UpdateKind
	kind       patternKind
	name       string
}

type patternKind int

const (
	patternExact patternKind = iota
	patternPrefix
	patternWildcard
	patternEmpty
)

func (p *IgnorePolicy) store(parsed parsedPattern) {
	switch parsed.kind {
	case patternWildcard:
		if parsed.updateKind == nil {
			p.wildcardAny = true
			return
		}
		p.wildcardByKind[*parsed.updateKind] = true
	case patternExact:
		if parsed.updateKind == nil {
			p.exactAny[parsed.name] = true
			return
		}
		if p.exactByKind[*parsed.updateKind] == nil {
			p.exactByKind[*parsed.updateKind] = map[string]bool{}
		}
		p.exactByKind[*parsed.updateKind][parsed.name] = true
	case patternPrefix:
		if parsed.updateKind == nil {
			p.prefixAny = append(p.prefixAny, parsed.name)
			return
		}
		p.prefixByKind[*parsed.updateKind] = append(p.prefixByKind[*parsed.updateKind], parsed.name)
	}
}

func parsePattern(pattern string) (parsedPattern, error) {
	trimmed := strings.TrimSpace(pattern)
	if trimmed == "" {
		return parsedPattern{kind: patternEmpty}, nil
	}
	scope, rest, scoped := strings.Cut(trimmed, ":")
	if !scoped {
		name, kind, err := parseNamePattern(trimmed, pattern)
		return parsedPattern{kind: kind, name: name}, err
	}
	updateKind, ok := parseScope(scope)
	if !ok {
		return parsedPattern{}, invalidPattern(pattern, "unknown scope "+scope)
	}
	name, kind, err := parseNamePattern(rest, pattern)
	if err != nil {
		return parsedPattern{}, err
	}
	if kind == patternEmpty {
		return parsedPattern{}, invalidPattern(pattern, "empty name")
	}
	return parsedPattern{updateKind: &updateKind, kind: kind, name: name}, nil
}

func parseScope(token string) (types.UpdateKind, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "aur", "external":
		return types.UpdateKindExternal, true
	case "repo":
		return types.UpdateKindRepo, true
	default:
		return "", false
	}
}

func parseNamePattern(value string, original string) (string, patternKind, error) {
	pattern := strings.TrimSpace(value)
	switch {
	case pattern == "":
		return "", patternEmpty, nil
	case pattern == "*":
		return "", patternWildcard, nil
	case strings.Count(pattern, "*") == 1 && strings.HasSuffix(pattern, "*"):
		return strings.TrimSuffix(pattern, "*"), patternPrefix, nil
	case strings.Contains(pattern, "*"):
		return "", patternEmpty, invalidPattern(original, "only a trailing * is supported")
	default:
		return pattern, patternExact, nil
	}
}

func invalidPattern(pattern string, reason string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid ignore pattern %q: %s", pattern, reason))
}

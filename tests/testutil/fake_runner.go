package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"runepkg/internal/ports"
	"runepkg/internal/types"
)

// FakeResponse scripts what FakeRunner returns for a matching command.
// Do runs before the lines are emitted and may create files in spec.Dir.
// When Status is set it overrides ExitStatus.
type FakeResponse struct {
	Lines      []string
	ExitStatus int
	Err        error
	Panic      any
	Do         func(spec ports.CommandSpec)
	Status     func(spec ports.CommandSpec) int
}

// FakeRunner is a scripted ports.CommandRunnerPort. Responses are keyed by
// a prefix of the space-joined argv; the longest matching prefix wins.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]FakeResponse
	Default   FakeResponse
	calls     []ports.CommandSpec
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: map[string]FakeResponse{}}
}

func (f *FakeRunner) On(prefix string, resp FakeResponse) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = resp
	return f
}

func (f *FakeRunner) Run(_ context.Context, spec ports.CommandSpec, onLine ports.LineSink) (types.CommandResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, spec)
	resp := f.match(strings.Join(spec.Argv, " "))
	f.mu.Unlock()

	if resp.Panic != nil {
		panic(resp.Panic)
	}
	if resp.Err != nil {
		return types.CommandResult{}, resp.Err
	}
	if resp.Do != nil {
		resp.Do(spec)
	}
	for _, line := range resp.Lines {
		if onLine != nil {
			onLine(line)
		}
	}
	status := resp.ExitStatus
	if resp.Status != nil {
		status = resp.Status(spec)
	}
	return types.CommandResult{ExitStatus: status, Authenticated: !spec.Secret.Empty()}, nil
}

func (f *FakeRunner) match(command string) FakeResponse {
	prefixes := make([]string, 0, len(f.responses))
	for prefix := range f.responses {
		if strings.HasPrefix(command, prefix) {
			prefixes = append(prefixes, prefix)
		}
	}
	if len(prefixes) == 0 {
		return f.Default
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	return f.responses[prefixes[0]]
}

// Calls returns every recorded invocation in order.
func (f *FakeRunner) Calls() []ports.CommandSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.CommandSpec{}, f.calls...)
}

// Commands returns the space-joined argv of every recorded invocation.
func (f *FakeRunner) Commands() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, call := range calls {
		out = append(out, strings.Join(call.Argv, " "))
	}
	return out
}

// CallsMatching returns invocations whose argv starts with prefix.
func (f *FakeRunner) CallsMatching(prefix string) []ports.CommandSpec {
	var out []ports.CommandSpec
	for _, call := range f.Calls() {
		if strings.HasPrefix(strings.Join(call.Argv, " "), prefix) {
			out = append(out, call)
		}
	}
	return out
}

var _ ports.CommandRunnerPort = (*FakeRunner)(nil)

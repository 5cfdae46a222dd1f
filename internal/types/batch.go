package types

// CommandResult is produced per external process invocation and consumed
// immediately by the caller.
type CommandResult struct {
	ExitStatus    int
	Authenticated bool
}

func (r CommandResult) Succeeded() bool {
	return r.ExitStatus == 0
}

// QueryResult carries the output of a read-only package database query.
type QueryResult struct {
	Lines      []string
	ExitStatus int
}

// BuildContext is owned by exactly one build pipeline run.
type BuildContext struct {
	Package   PackageRef
	WorkDir   string
	Artifacts []string
}

type ArtifactInfo struct {
	Path    string `yaml:"path"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Arch    string `yaml:"arch,omitempty"`
	Digest  string `yaml:"digest,omitempty"`
}

type BatchFailure struct {
	Name   string `yaml:"name"`
	Reason string `yaml:"reason"`
}

// BatchReport is append-only during a run. Succeeded and Failed are
// disjoint and together cover the batch input in input order.
type BatchReport struct {
	Succeeded []string       `yaml:"succeeded"`
	Failed    []BatchFailure `yaml:"failed"`
}

func (r *BatchReport) AddSuccess(name string) {
	r.Succeeded = append(r.Succeeded, name)
}

func (r *BatchReport) AddFailure(name string, reason string) {
	r.Failed = append(r.Failed, BatchFailure{Name: name, Reason: reason})
}

func (r BatchReport) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

func (r BatchReport) HasFailures() bool {
	return len(r.Failed) > 0
}

// Clone returns a copy that shares no backing arrays with r.
func (r BatchReport) Clone() BatchReport {
	return BatchReport{
		Succeeded: append([]string{}, r.Succeeded...),
		Failed:    append([]BatchFailure{}, r.Failed...),
	}
}

package types

import "strings"

// Secret holds the authentication secret for one batch. It is passed
// explicitly down the call chain and zeroed by Destroy when the batch ends.
// Formatting a Secret never reveals its contents.
type Secret struct {
	value []byte
}

// NewSecret copies value; the caller may zero its own buffer afterwards.
func NewSecret(value []byte) *Secret {
	buf := make([]byte, len(value))
	copy(buf, value)
	return &Secret{value: buf}
}

func (s *Secret) Empty() bool {
	return s == nil || len(s.value) == 0
}

// Line returns a fresh copy of the secret followed by a newline. Callers
// should zero the returned slice after writing it.
func (s *Secret) Line() []byte {
	if s.Empty() {
		return nil
	}
	out := make([]byte, 0, len(s.value)+1)
	out = append(out, s.value...)
	return append(out, '\n')
}

// Redact replaces every verbatim occurrence of the secret in text.
func (s *Secret) Redact(text string) string {
	if s.Empty() {
		return text
	}
	return strings.ReplaceAll(text, string(s.value), "****")
}

func (s *Secret) Destroy() {
	if s == nil {
		return
	}
	for i := range s.value {
		s.value[i] = 0
	}
	s.value = nil
}

func (s *Secret) String() string {
	return "[redacted]"
}

func (s *Secret) GoString() string {
	return "types.Secret{[redacted]}"
}

package adapters

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runepkg/internal/types"
)

type aurStub struct {
	mu       sync.Mutex
	requests []*http.Request
	handler  func(w http.ResponseWriter, r *http.Request)
}

func newAURStub(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*aurStub, AURClientAdapter) {
	t.Helper()
	stub := &aurStub{handler: handler}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.requests = append(stub.requests, r)
		stub.mu.Unlock()
		stub.handler(w, r)
	}))
	t.Cleanup(server.Close)
	return stub, NewAURClientAdapter(server.URL, 5, 1000)
}

func (s *aurStub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func TestAURClientAdapter_InfoDecodesRecords(t *testing.T) {
	stub, client := newAURStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rpc/", r.URL.Path)
		assert.Equal(t, "info", r.URL.Query().Get("type"))
		assert.Equal(t, []string{"yay", "paru"}, r.URL.Query()["arg[]"])
		_, _ = fmt.Fprint(w, `{"version":5,"type":"multiinfo","resultcount":2,"results":[
			{"Name":"yay","PackageBase":"yay","Version":"12.3.5-1","Description":"AUR helper","Maintainer":"jguer","NumVotes":2000,"Popularity":30.5,"OutOfDate":null,"URL":"https://github.com/Jguer/yay","URLPath":"/cgit/aur.git/snapshot/yay.tar.gz","Depends":["pacman>6.1","git"],"MakeDepends":["go>=1.21"],"License":["GPL-3.0-or-later"]},
			{"Name":"paru","PackageBase":"paru","Version":"2.0.3-1","Maintainer":null,"NumVotes":500,"OutOfDate":1700000000}
		]}`)
	})

	records, err := client.Info(t.Context(), []string{"yay", "paru", "yay"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, stub.count())

	assert.Equal(t, "yay", records[0].Name)
	assert.Equal(t, "12.3.5-1", records[0].Version)
	assert.Equal(t, []string{"pacman>6.1", "git"}, records[0].Depends)
	assert.False(t, records[0].IsOutOfDate())
	assert.Equal(t, "orphan", records[1].Maintainer)
	assert.True(t, records[1].IsOutOfDate())
	assert.Equal(t, "https://aur.archlinux.org/paru.git", records[1].CloneURL(DefaultAURURL))
}

func TestAURClientAdapter_InfoChunksLongLists(t *testing.T) {
	stub, client := newAURStub(t, func(w http.ResponseWriter, r *http.Request) {
		args := r.URL.Query()["arg[]"]
		assert.LessOrEqual(t, len(args), aurInfoChunkSize)
		var parts []string
		for _, name := range args {
			parts = append(parts, fmt.Sprintf(`{"Name":%q,"Version":"1-1"}`, name))
		}
		_, _ = fmt.Fprintf(w, `{"version":5,"type":"multiinfo","results":[%s]}`, strings.Join(parts, ","))
	})
	names := make([]string, 0, 320)
	for i := 0; i < 320; i++ {
		names = append(names, fmt.Sprintf("pkg-%03d", i))
	}

	records, err := client.Info(t.Context(), names)
	require.NoError(t, err)
	assert.Len(t, records, 320)
	assert.Equal(t, 3, stub.count())
}

func TestAURClientAdapter_InfoEmptyMakesNoRequest(t *testing.T) {
	stub, client := newAURStub(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected request")
	})
	records, err := client.Info(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, stub.count())
}

func TestAURClientAdapter_SearchSortsByVotes(t *testing.T) {
	_, client := newAURStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "search", r.URL.Query().Get("type"))
		assert.Equal(t, "maintainer", r.URL.Query().Get("by"))
		assert.Equal(t, "jguer", r.URL.Query().Get("arg"))
		_, _ = fmt.Fprint(w, `{"version":5,"type":"search","results":[
			{"Name":"low","Version":"1","NumVotes":1},
			{"Name":"high","Version":"1","NumVotes":90},
			{"Name":"mid","Version":"1","NumVotes":10}
		]}`)
	})
	records, err := client.Search(t.Context(), "jguer", types.SearchModeMaintainer)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"high", "mid", "low"}, []string{records[0].Name, records[1].Name, records[2].Name})
}

func TestAURClientAdapter_SearchShortQuery(t *testing.T) {
	stub, client := newAURStub(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unexpected request")
	})
	records, err := client.Search(t.Context(), "y", types.SearchModeName)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 0, stub.count())
}

func TestAURClientAdapter_RPCError(t *testing.T) {
	_, client := newAURStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"version":5,"type":"error","resultcount":0,"results":[],"error":"Too many package results."}`)
	})
	_, err := client.Search(t.Context(), "li", types.SearchModeNameDesc)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), "Too many package results.")
}

func TestAURClientAdapter_ServerErrorIsUnavailable(t *testing.T) {
	stub, client := newAURStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := client.Info(t.Context(), []string{"yay"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeUnavailable, errbuilder.CodeOf(err))
	assert.Equal(t, 1, stub.count(), "requests must not be retried")
}

func TestAURClientAdapter_MalformedJSON(t *testing.T) {
	_, client := newAURStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<html>maintenance</html>`)
	})
	_, err := client.Info(t.Context(), []string{"yay"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestAURClientAdapter_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()
	client := NewAURClientAdapter(addr, 1, 1000)
	_, err := client.Info(t.Context(), []string{"yay"})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeUnavailable, errbuilder.CodeOf(err))
}

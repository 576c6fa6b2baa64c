package openalex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workW1 = `{
  "id": "https://openalex.org/W1",
  "display_name": "A paper",
  "publication_year": 2020,
  "authorships": [
    {"author_position": "first", "author": {"id": "https://openalex.org/A1", "display_name": "Alice"}},
    {"author_position": "last", "author": {"id": "https://openalex.org/A2", "display_name": "Bob"}}
  ],
  "referenced_works": ["https://openalex.org/W7", "https://openalex.org/W8"]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]ClientOption{WithBaseURL(srv.URL), WithRateLimit(1000)}, opts...)
	return NewClient(opts...)
}

func TestGetWork(t *testing.T) {
	var gotPath, gotMailto string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMailto = r.URL.Query().Get("mailto")
		fmt.Fprint(w, workW1)
	}, WithMailto("me@example.org"))

	work, err := c.GetWork(context.Background(), "https://openalex.org/W1")
	require.NoError(t, err)

	assert.Equal(t, "/works/W1", gotPath)
	assert.Equal(t, "me@example.org", gotMailto)
	assert.Equal(t, "A paper", work.DisplayName)
	require.Len(t, work.Authorships, 2)
	assert.Equal(t, "Bob", work.Authorships[1].Author.DisplayName)
	assert.Len(t, work.ReferencedWorks, 2)
}

func TestGetWork_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, IsNotFound(err))
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, "W404", apiErr.WorkID)
			},
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				assert.True(t, IsRateLimited(err))
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
				assert.False(t, IsNotFound(err))
			},
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `{"id": `,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidResponse)
			},
		},
		{
			name:   "missing id",
			status: http.StatusOK,
			body:   `{"display_name": "x"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidResponse)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			_, err := c.GetWork(context.Background(), "W404")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestGetWork_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}, WithTimeout(20*time.Millisecond))

	_, err := c.GetWork(context.Background(), "W1")
	assert.ErrorIs(t, err, ErrNetworkError)
}

func TestListWorks(t *testing.T) {
	var gotFilter, gotPerPage string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		gotPerPage = r.URL.Query().Get("per-page")
		fmt.Fprintf(w, `{"meta": {"count": 1, "page": 1, "per_page": 200}, "results": [%s]}`, workW1)
	})

	page, err := c.ListWorks(context.Background(), "institutions.id:I111979921", 500)
	require.NoError(t, err)

	assert.Equal(t, "institutions.id:I111979921", gotFilter)
	assert.Equal(t, "200", gotPerPage)
	assert.Equal(t, 1, page.Meta.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "https://openalex.org/W1", page.Results[0].ID)
}

func TestGetWorks_PreservesOrderAndBoundsConcurrency(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		id := strings.TrimPrefix(r.URL.Path, "/works/")
		fmt.Fprintf(w, `{"id": "https://openalex.org/%s", "authorships": [], "referenced_works": []}`, id)
	})

	ids := []string{"W5", "W4", "W3", "W2", "W1", "W9"}
	works, err := c.GetWorks(context.Background(), ids, 2)
	require.NoError(t, err)

	require.Len(t, works, len(ids))
	for i, w := range works {
		assert.Equal(t, "https://openalex.org/"+ids[i], w.ID)
	}
	assert.LessOrEqual(t, maxInFlight.Load(), int32(2))
}

func TestGetWorks_FailsOnFirstError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/W2") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, workW1)
	})

	_, err := c.GetWorks(context.Background(), []string{"W1", "W2"}, 1)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "W2")
}

func TestNormalizeWorkID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://openalex.org/W1009208869", "W1009208869"},
		{"https://api.openalex.org/works/W42", "W42"},
		{" w42 ", "W42"},
		{"W42", "W42"},
		{"doi:10.1234/abc", "doi:10.1234/abc"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeWorkID(tt.in), "NormalizeWorkID(%q)", tt.in)
	}
}

package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleanerd/gleaner/internal/capability"
)

func newTestBrowser(t *testing.T, handler http.Handler) (*Browser, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b, err := New(Options{BaseURL: srv.URL})
	require.NoError(t, err)
	return b, srv
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "not-a-url"})
	assert.Error(t, err)

	_, err = New(Options{BaseURL: "/relative"})
	assert.Error(t, err)
}

func TestGet_RelativeURLAndQuery(t *testing.T) {
	var gotPath, gotQuery string
	b, _ := newTestBrowser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(`{"ok":true}`))
	}))

	doc, err := b.Get(context.Background(), "/search", url.Values{"q": {"toast"}})
	require.NoError(t, err)
	require.NoError(t, doc.Err())
	assert.Equal(t, "/search", gotPath)
	assert.Equal(t, "toast", gotQuery)
	assert.True(t, doc.JSONPath("ok").Bool())
}

func TestGet_CookiesPersistAcrossRequests(t *testing.T) {
	b, _ := newTestBrowser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/set":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		case "/check":
			c, err := r.Cookie("session")
			if err != nil || c.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
		}
	}))

	doc, err := b.Get(context.Background(), "/set", nil)
	require.NoError(t, err)
	require.NoError(t, doc.Err())

	doc, err = b.Get(context.Background(), "/check", nil)
	require.NoError(t, err)
	assert.NoError(t, doc.Err())
}

func TestDocument_ErrTranslation(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, capability.ErrNotFound},
		{http.StatusGone, capability.ErrNotFound},
		{http.StatusUnauthorized, capability.ErrNotLoggedIn},
		{http.StatusForbidden, capability.ErrNotLoggedIn},
		{http.StatusTooManyRequests, capability.ErrSiteUnavailable},
		{http.StatusInternalServerError, capability.ErrSiteUnavailable},
		{http.StatusBadGateway, capability.ErrSiteUnavailable},
	}
	for _, c := range cases {
		doc := &Document{StatusCode: c.status}
		assert.ErrorIs(t, doc.Err(), c.want, "status %d", c.status)
	}

	assert.NoError(t, (&Document{StatusCode: 200}).Err())
	assert.NoError(t, (&Document{StatusCode: 204}).Err())
}

func TestDocument_HTML(t *testing.T) {
	doc := &Document{Body: []byte(`<html><body><h1 id="t">Title</h1></body></html>`)}
	parsed, err := doc.HTML()
	require.NoError(t, err)
	assert.Equal(t, "Title", parsed.Find("#t").Text())
}

func TestAbsolute(t *testing.T) {
	b, err := New(Options{BaseURL: "https://example.org/app/"})
	require.NoError(t, err)

	abs, err := b.Absolute("/accounts/1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/accounts/1", abs)

	abs, err = b.Absolute("detail?id=2")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/app/detail?id=2", abs)
}

type titlePage struct {
	Title string
}

func (p *titlePage) Load(doc *Document) error {
	parsed, err := doc.HTML()
	if err != nil {
		return err
	}
	p.Title = parsed.Find("h1").Text()
	return nil
}

type fallbackPage struct{}

func (p *fallbackPage) Load(doc *Document) error { return nil }

func TestOpen_RoutesToFirstMatchingPage(t *testing.T) {
	b, _ := newTestBrowser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/detail" {
			w.Write([]byte("<html><body><h1>Detail</h1></body></html>"))
			return
		}
		w.Write([]byte("<html><body>other</body></html>"))
	}))

	b.Route(`/detail$`, func() Page { return &titlePage{} })
	b.Route(`.*`, func() Page { return &fallbackPage{} })

	page, doc, err := b.Open(context.Background(), "/detail")
	require.NoError(t, err)
	require.NoError(t, doc.Err())

	detail, ok := page.(*titlePage)
	require.True(t, ok)
	assert.Equal(t, "Detail", detail.Title)

	page, _, err = b.Open(context.Background(), "/other")
	require.NoError(t, err)
	_, ok = page.(*fallbackPage)
	assert.True(t, ok)
}

func TestDispatch_NoMatchIsError(t *testing.T) {
	b, err := New(Options{BaseURL: "https://example.org"})
	require.NoError(t, err)
	b.Route(`/known$`, func() Page { return &fallbackPage{} })

	u, _ := url.Parse("https://example.org/unknown")
	_, err = b.Dispatch(&Document{URL: u, StatusCode: 200})
	assert.Error(t, err)
}

func TestDispatch_FollowsRedirectURL(t *testing.T) {
	b, _ := newTestBrowser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/landed", http.StatusFound)
			return
		}
		w.Write([]byte("<html><body><h1>Landed</h1></body></html>"))
	}))

	b.Route(`/landed$`, func() Page { return &titlePage{} })

	page, _, err := b.Open(context.Background(), "/start")
	require.NoError(t, err)
	landed, ok := page.(*titlePage)
	require.True(t, ok)
	assert.Equal(t, "Landed", landed.Title)
}

func TestSubmitLogin(t *testing.T) {
	b, _ := newTestBrowser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("user") == "alice" && r.FormValue("pass") == "s3cret" {
			w.Write([]byte("<html>welcome alice</html>"))
			return
		}
		w.Write([]byte("<html>Login incorrect, try again</html>"))
	}))

	form := LoginForm{Action: "/login", UsernameField: "user", PasswordField: "pass"}

	doc, err := b.SubmitLogin(context.Background(), form, "alice", "s3cret", []string{"incorrect"})
	require.NoError(t, err)
	assert.Contains(t, string(doc.Body), "welcome")

	_, err = b.SubmitLogin(context.Background(), form, "alice", "wrong", []string{"incorrect"})
	assert.ErrorIs(t, err, capability.ErrIncorrectCredentials)
}

func TestSubmitLogin_RejectedStatus(t *testing.T) {
	b, _ := newTestBrowser(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	form := LoginForm{Action: "/login", UsernameField: "user", PasswordField: "pass"}
	_, err := b.SubmitLogin(context.Background(), form, "u", "p", nil)
	assert.ErrorIs(t, err, capability.ErrIncorrectCredentials)
}

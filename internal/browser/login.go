package browser

import (
	"context"
	"net/url"
	"strings"

	"github.com/gleanerd/gleaner/internal/capability"
)

// Loginer is implemented by module browsers that must authenticate before
// their accessors work. The refresh worker calls Login once per session.
type Loginer interface {
	Login(ctx context.Context) error
}

// LoginForm describes a plain credential form: the action URL and the field
// names the site expects. This covers the common username/password POST;
// site-specific multi-step flows are out of scope.
type LoginForm struct {
	Action        string
	UsernameField string
	PasswordField string
	// Extra fields submitted verbatim (hidden inputs, "remember me").
	Extra url.Values
}

// SubmitLogin posts credentials through the form and classifies the result.
// A response that lands back on a page containing one of the failure
// markers is treated as bad credentials.
func (b *Browser) SubmitLogin(ctx context.Context, form LoginForm, username, password string, failureMarkers []string) (*Document, error) {
	values := url.Values{}
	for k, vs := range form.Extra {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	values.Set(form.UsernameField, username)
	values.Set(form.PasswordField, password)

	doc, err := b.PostForm(ctx, form.Action, values)
	if err != nil {
		return nil, err
	}
	if doc.StatusCode == 401 || doc.StatusCode == 403 {
		return nil, capability.ErrIncorrectCredentials
	}
	if err := doc.Err(); err != nil {
		return nil, err
	}

	body := strings.ToLower(string(doc.Body))
	for _, marker := range failureMarkers {
		if marker != "" && strings.Contains(body, strings.ToLower(marker)) {
			return nil, capability.ErrIncorrectCredentials
		}
	}
	return doc, nil
}

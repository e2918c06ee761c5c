package privatebin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gleanerd/gleaner/internal/browser"
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/crypto"
)

// jsonRequestHeader marks API calls; PrivateBin serves HTML without it.
const jsonRequestHeader = "JSONHttpRequest"

type client struct {
	backend  string
	browser  *browser.Browser
	password string
}

var _ capability.CapPaste = (*client)(nil)

func newClient(backend, baseURL, password string) (*client, error) {
	b, err := browser.New(browser.Options{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
		Retries: 2,
	})
	if err != nil {
		return nil, err
	}
	b.Client().SetHeader("X-Requested-With", jsonRequestHeader)
	return &client{backend: backend, browser: b, password: password}, nil
}

// splitID separates "pasteid#base58key". The key part is optional on input
// but required to decrypt.
func splitID(id string) (pasteID, keyFragment string) {
	if i := strings.IndexByte(id, '#'); i >= 0 {
		return id[:i], id[i+1:]
	}
	return id, ""
}

// Paste fetches and decrypts a paste. The ID must carry the key fragment
// ("id#key") since the server cannot decrypt anything for us.
func (c *client) Paste(ctx context.Context, id string) (*capability.PasteRecord, error) {
	pasteID, keyFragment := splitID(id)
	if keyFragment == "" {
		return nil, capability.WrapErr(c.backend, "paste", fmt.Errorf("paste id %q has no key fragment", pasteID))
	}
	key, err := crypto.Base58Decode(keyFragment)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "paste", err)
	}

	// The JSON API addresses a paste by the bare query string: GET /?<id>.
	doc, err := c.browser.Get(ctx, "/?"+pasteID, nil)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "paste", err)
	}
	if err := doc.Err(); err != nil {
		return nil, capability.WrapErr(c.backend, "paste", err)
	}

	body := doc.JSON()
	if body.Get("status").Int() != 0 {
		msg := body.Get("message").String()
		if strings.Contains(strings.ToLower(msg), "not found") {
			return nil, capability.WrapErr(c.backend, "paste", capability.ErrNotFound)
		}
		return nil, capability.WrapErr(c.backend, "paste", fmt.Errorf("server error: %s", msg))
	}

	// adata is the GCM additional data: keep the server's exact bytes.
	adata := json.RawMessage(body.Get("adata").Raw)
	ct, err := base64.StdEncoding.DecodeString(body.Get("ct").String())
	if err != nil {
		return nil, capability.WrapErr(c.backend, "paste", fmt.Errorf("decode ct: %w", err))
	}

	plain, err := crypto.OpenPaste(key, c.password, adata, ct)
	if err != nil {
		return nil, capability.WrapErr(c.backend, "paste", err)
	}

	// The plaintext is a JSON envelope {"paste": "..."}.
	var envelope struct {
		Paste string `json:"paste"`
	}
	if err := json.Unmarshal(plain, &envelope); err != nil {
		return nil, capability.WrapErr(c.backend, "paste", fmt.Errorf("malformed paste envelope: %w", err))
	}

	pasteURL, _ := c.browser.Absolute("/?" + pasteID + "#" + keyFragment)
	return &capability.PasteRecord{
		ID:       pasteID + "#" + keyFragment,
		Contents: envelope.Paste,
		Public:   false,
		URL:      pasteURL,
	}, nil
}

// PostPaste encrypts p locally and uploads the ciphertext. On success the
// record's ID, URL and delete token are filled in.
func (c *client) PostPaste(ctx context.Context, p *capability.PasteRecord, maxAge time.Duration) error {
	envelope, err := json.Marshal(map[string]string{"paste": p.Contents})
	if err != nil {
		return capability.WrapErr(c.backend, "post paste", err)
	}

	sealed, err := crypto.SealPaste(envelope, c.password, "plaintext", false, false)
	if err != nil {
		return capability.WrapErr(c.backend, "post paste", err)
	}

	var adata any
	if err := json.Unmarshal(sealed.Adata, &adata); err != nil {
		return capability.WrapErr(c.backend, "post paste", err)
	}

	payload := map[string]any{
		"v":     2,
		"adata": adata,
		"ct":    base64.StdEncoding.EncodeToString(sealed.CipherText),
		"meta":  map[string]string{"expire": expireLabel(maxAge)},
	}

	doc, err := c.browser.PostJSON(ctx, "/", payload, nil)
	if err != nil {
		return capability.WrapErr(c.backend, "post paste", err)
	}
	if err := doc.Err(); err != nil {
		return capability.WrapErr(c.backend, "post paste", err)
	}

	body := doc.JSON()
	if body.Get("status").Int() != 0 {
		return capability.WrapErr(c.backend, "post paste",
			fmt.Errorf("server refused paste: %s", body.Get("message").String()))
	}

	pasteID := body.Get("id").String()
	p.ID = pasteID + "#" + sealed.KeyFragment()
	p.DeleteToken = body.Get("deletetoken").String()
	p.URL, _ = c.browser.Absolute("/?" + pasteID + "#" + sealed.KeyFragment())
	return nil
}

// CanPost accepts any non-empty private paste; PrivateBin has no public
// index, so "public" pastes are refused.
func (c *client) CanPost(contents string, public bool, maxAge time.Duration) bool {
	return contents != "" && !public
}

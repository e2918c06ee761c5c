package crypto

import (
	"bytes"
	"compress/flate"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// PrivateBin v2 cipher parameters. The adata array is authenticated as GCM
// additional data, so tampering with any parameter breaks decryption.
const (
	pasteKeySize    = 32
	pasteSaltSize   = 8
	pasteIVSize     = 16
	pasteKDFRounds  = 100000
	pasteKeyBits    = 256
	pasteTagBits    = 128
	pasteCipherName = "aes"
	pasteCipherMode = "gcm"
)

// SealedPaste is an encrypted paste ready for upload: the random master key
// (which only ever travels in the URL fragment), the authenticated adata
// array, and the ciphertext.
type SealedPaste struct {
	Key        []byte
	Adata      json.RawMessage
	CipherText []byte
}

// KeyFragment returns the base58 form of the master key, as placed in the
// paste URL fragment.
func (s *SealedPaste) KeyFragment() string {
	return Base58Encode(s.Key)
}

// deriveKey stretches the master key (and optional password) into the AES
// key. The password is hashed first so its length never leaks into the KDF
// input layout.
func deriveKey(masterKey []byte, password string, salt []byte) []byte {
	secret := masterKey
	if password != "" {
		sum := sha256.Sum256([]byte(password))
		secret = append(append([]byte{}, masterKey...), sum[:]...)
	}
	return pbkdf2.Key(secret, salt, pasteKDFRounds, pasteKeySize, sha256.New)
}

// SealPaste encrypts plaintext the way PrivateBin's v2 format does:
// raw-DEFLATE compression, PBKDF2-SHA256 key derivation, AES-256-GCM with
// the cipher-parameter array bound as additional data.
func SealPaste(plaintext []byte, password, formatter string, openDiscussion, burnAfterReading bool) (*SealedPaste, error) {
	masterKey := make([]byte, pasteKeySize)
	if _, err := rand.Read(masterKey); err != nil {
		return nil, fmt.Errorf("crypto: master key: %w", err)
	}
	salt := make([]byte, pasteSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: salt: %w", err)
	}
	iv := make([]byte, pasteIVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("crypto: iv: %w", err)
	}

	compressed, err := deflate(plaintext)
	if err != nil {
		return nil, err
	}

	if formatter == "" {
		formatter = "plaintext"
	}
	adata := []any{
		[]any{
			base64.StdEncoding.EncodeToString(iv),
			base64.StdEncoding.EncodeToString(salt),
			pasteKDFRounds,
			pasteKeyBits,
			pasteTagBits,
			pasteCipherName,
			pasteCipherMode,
			"zlib",
		},
		formatter,
		boolInt(openDiscussion),
		boolInt(burnAfterReading),
	}
	adataJSON, err := json.Marshal(adata)
	if err != nil {
		return nil, fmt.Errorf("crypto: marshal adata: %w", err)
	}

	gcm, err := newPasteGCM(deriveKey(masterKey, password, salt))
	if err != nil {
		return nil, err
	}
	ct := gcm.Seal(nil, iv, compressed, adataJSON)

	return &SealedPaste{
		Key:        masterKey,
		Adata:      adataJSON,
		CipherText: ct,
	}, nil
}

// OpenPaste decrypts a paste fetched from the server. adata must be the
// exact JSON bytes the server returned: it is the GCM additional data, so
// any re-serialization difference makes authentication fail.
func OpenPaste(masterKey []byte, password string, adata json.RawMessage, ciphertext []byte) ([]byte, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(adata, &outer); err != nil || len(outer) == 0 {
		return nil, fmt.Errorf("crypto: malformed adata")
	}

	var params []any
	if err := json.Unmarshal(outer[0], &params); err != nil || len(params) < 8 {
		return nil, fmt.Errorf("crypto: malformed cipher parameters")
	}
	ivB64, _ := params[0].(string)
	saltB64, _ := params[1].(string)
	compression, _ := params[7].(string)

	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode iv: %w", err)
	}
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode salt: %w", err)
	}

	gcm, err := newPasteGCM(deriveKey(masterKey, password, salt))
	if err != nil {
		return nil, err
	}
	plain, err := gcm.Open(nil, iv, ciphertext, adata)
	if err != nil {
		return nil, fmt.Errorf("crypto: decrypt paste: %w", err)
	}

	if compression == "zlib" {
		plain, err = inflate(plain)
		if err != nil {
			return nil, err
		}
	}
	return plain, nil
}

func newPasteGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: aes: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, pasteIVSize)
	if err != nil {
		return nil, fmt.Errorf("crypto: gcm: %w", err)
	}
	return gcm, nil
}

// deflate compresses with raw DEFLATE, matching pako's deflateRaw used by
// the PrivateBin frontend.
func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("crypto: deflate: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("crypto: deflate write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("crypto: deflate close: %w", err)
	}
	return buf.Bytes(), nil
}

func inflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("crypto: inflate: %w", err)
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

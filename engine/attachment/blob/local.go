package blob

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/compozy/defaultdesk/engine/attachment"
)

const (
	paramExpires   = "expires"
	paramSignature = "signature"
)

// LocalStore writes objects under a directory. Handler serves them at
// BaseURL, but only for URLs signed by URL and not yet expired.
type LocalStore struct {
	dir     string
	baseURL string
	key     []byte
	now     func() time.Time
}

// NewLocalStore signs download URLs with signingKey. An empty key gets a
// random one, so links do not outlive the process.
func NewLocalStore(dir, baseURL string, signingKey []byte) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("local storage directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	key := signingKey
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating signing key: %w", err)
		}
	}
	return &LocalStore{dir: abs, baseURL: strings.TrimRight(baseURL, "/"), key: key, now: time.Now}, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, data []byte, _ string) (attachment.BlobRef, error) {
	if err := ctx.Err(); err != nil {
		return attachment.BlobRef{}, err
	}
	target, err := s.resolve(key)
	if err != nil {
		return attachment.BlobRef{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return attachment.BlobRef{}, fmt.Errorf("creating object directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return attachment.BlobRef{}, fmt.Errorf("creating temp object: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return attachment.BlobRef{}, fmt.Errorf("writing object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return attachment.BlobRef{}, fmt.Errorf("closing object: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return attachment.BlobRef{}, fmt.Errorf("publishing object: %w", err)
	}
	return attachment.BlobRef{Key: key, URL: s.publicURL(key)}, nil
}

// URL returns a signed link to key that Handler accepts until expiry.
func (s *LocalStore) URL(_ context.Context, key string, expiry time.Duration) (string, error) {
	if _, err := s.resolve(key); err != nil {
		return "", err
	}
	expires := strconv.FormatInt(s.now().Add(expiry).Unix(), 10)
	q := url.Values{}
	q.Set(paramExpires, expires)
	q.Set(paramSignature, s.sign(key, expires))
	return s.publicURL(key) + "?" + q.Encode(), nil
}

func (s *LocalStore) publicURL(key string) string {
	return s.baseURL + "/" + key
}

func (s *LocalStore) sign(key, expires string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(key + "\n" + expires))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *LocalStore) verify(key, expires, signature string) bool {
	at, err := strconv.ParseInt(expires, 10, 64)
	if err != nil || s.now().Unix() > at {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(s.sign(key, expires))
	return hmac.Equal(got, want)
}

// Handler serves objects by key relative to BaseURL. Unsigned, tampered or
// expired links get 403.
func (s *LocalStore) Handler() http.Handler {
	return http.StripPrefix(s.baseURL, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/")
		q := r.URL.Query()
		if !s.verify(key, q.Get(paramExpires), q.Get(paramSignature)) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		target, err := s.resolve(key)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		f, err := os.Open(target)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	}))
}

// resolve maps key into the storage directory and refuses anything that
// would escape it.
func (s *LocalStore) resolve(key string) (string, error) {
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.dir, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return target, nil
}

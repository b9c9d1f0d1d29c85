package snapvault

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureAlgorithm = "AWS4-HMAC-SHA256"
	MaxExpiresSeconds  = 604800 // 7 days
	DateTimeFormat     = "20060102T150405Z"
	DateFormat         = "20060102"

	unsignedPayload = "UNSIGNED-PAYLOAD"
	scopeTerminator = "aws4_request"
)

// SecretStore resolves the secret key of an access key.
// Lookup returns an error wrapping ErrUnauthorized for unknown keys.
type SecretStore interface {
	Lookup(accessKey string) (string, error)
}

// credentialScope is the date/region/service triple a signing key is bound to.
type credentialScope struct {
	date    string
	region  string
	service string
}

func (s credentialScope) String() string {
	return s.date + "/" + s.region + "/" + s.service + "/" + scopeTerminator
}

func (s credentialScope) signingKey(secretKey string) []byte {
	key := []byte("AWS4" + secretKey)
	for _, part := range []string{s.date, s.region, s.service, scopeTerminator} {
		key = hmacSHA256(key, part)
	}
	return key
}

// sign computes the hex signature of a request whose canonical form is
// canonicalRequest.
func (s credentialScope) sign(secretKey string, at time.Time, canonicalRequest string) string {
	digest := sha256.Sum256([]byte(canonicalRequest))
	stringToSign := strings.Join([]string{
		SignatureAlgorithm,
		at.UTC().Format(DateTimeFormat),
		s.String(),
		hex.EncodeToString(digest[:]),
	}, "\n")
	return hex.EncodeToString(hmacSHA256(s.signingKey(secretKey), stringToSign))
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

// canonicalRequest renders the SigV4 canonical request for a presigned URL.
// X-Amz-Signature is never part of the canonical query.
func canonicalRequest(method, escapedPath string, query url.Values, headers http.Header, signedHeaders string) string {
	q := make(url.Values, len(query))
	for k, v := range query {
		if k != "X-Amz-Signature" {
			q[k] = v
		}
	}

	names := strings.Split(signedHeaders, ";")
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(method + "\n")
	b.WriteString(escapedPath + "\n")
	b.WriteString(q.Encode() + "\n")
	for _, name := range names {
		b.WriteString(name + ":" + strings.TrimSpace(headers.Get(name)) + "\n")
	}
	b.WriteString("\n" + signedHeaders + "\n")
	b.WriteString(unsignedPayload)
	return b.String()
}

// SignatureVerifier verifies AWS Signature V4 presigned URLs.
type SignatureVerifier struct {
	Region  string
	Service string
	Secrets SecretStore
}

// NewSignatureVerifier creates a verifier that accepts URLs scoped to region
// and service and signed by any key in secrets.
func NewSignatureVerifier(region, service string, secrets SecretStore) *SignatureVerifier {
	return &SignatureVerifier{
		Region:  region,
		Service: service,
		Secrets: secrets,
	}
}

// presignedQuery holds the X-Amz-* parameters of a presigned URL.
type presignedQuery struct {
	accessKey     string
	scope         credentialScope
	signedAt      time.Time
	expires       time.Duration
	signedHeaders string
	signature     string
}

func parsePresignedQuery(query url.Values) (presignedQuery, error) {
	var (
		algorithm  = query.Get("X-Amz-Algorithm")
		credential = query.Get("X-Amz-Credential")
		date       = query.Get("X-Amz-Date")
		expires    = query.Get("X-Amz-Expires")
		signed     = query.Get("X-Amz-SignedHeaders")
		signature  = query.Get("X-Amz-Signature")
	)
	for _, v := range []string{algorithm, credential, date, expires, signed, signature} {
		if v == "" {
			return presignedQuery{}, fmt.Errorf("missing required signature parameters: %w", ErrUnauthorized)
		}
	}

	if algorithm != SignatureAlgorithm {
		return presignedQuery{}, fmt.Errorf("invalid algorithm: expected %s, got %s: %w", SignatureAlgorithm, algorithm, ErrUnauthorized)
	}

	signedAt, err := time.Parse(DateTimeFormat, date)
	if err != nil {
		return presignedQuery{}, fmt.Errorf("invalid X-Amz-Date format: %w", ErrUnauthorized)
	}

	seconds, err := strconv.Atoi(expires)
	if err != nil || seconds <= 0 || seconds > MaxExpiresSeconds {
		return presignedQuery{}, fmt.Errorf("invalid X-Amz-Expires: must be between 1 and %d: %w", MaxExpiresSeconds, ErrUnauthorized)
	}

	if !slices.Contains(strings.Split(signed, ";"), "host") {
		return presignedQuery{}, fmt.Errorf("host header must be signed: %w", ErrUnauthorized)
	}

	parts := strings.Split(credential, "/")
	if len(parts) != 5 || parts[4] != scopeTerminator {
		return presignedQuery{}, fmt.Errorf("invalid X-Amz-Credential format: %w", ErrUnauthorized)
	}

	return presignedQuery{
		accessKey:     parts[0],
		scope:         credentialScope{date: parts[1], region: parts[2], service: parts[3]},
		signedAt:      signedAt,
		expires:       time.Duration(seconds) * time.Second,
		signedHeaders: signed,
		signature:     signature,
	}, nil
}

// Verify checks a presigned request. path is the escaped request path
// (r.URL.EscapedPath()); headers must carry Host and every other signed
// header. All failures wrap ErrUnauthorized.
//
// Checks, in order: all X-Amz-* parameters present, algorithm, date format,
// expiry range, host signed, credential shape, not expired, credential date
// matches X-Amz-Date, region, service, known access key, signature.
func (v *SignatureVerifier) Verify(method, path string, query url.Values, headers http.Header) error {
	q, err := parsePresignedQuery(query)
	if err != nil {
		return err
	}

	if time.Now().After(q.signedAt.Add(q.expires)) {
		return fmt.Errorf("signature expired: %w", ErrUnauthorized)
	}
	if q.scope.date != q.signedAt.Format(DateFormat) {
		return fmt.Errorf("credential date mismatch: %w", ErrUnauthorized)
	}
	if q.scope.region != v.Region {
		return fmt.Errorf("region mismatch: expected %s, got %s: %w", v.Region, q.scope.region, ErrUnauthorized)
	}
	if q.scope.service != v.Service {
		return fmt.Errorf("service mismatch: expected %s, got %s: %w", v.Service, q.scope.service, ErrUnauthorized)
	}

	secretKey, err := v.Secrets.Lookup(q.accessKey)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return fmt.Errorf("invalid access key: %w", err)
		}
		return fmt.Errorf("invalid access key: %w: %w", ErrUnauthorized, err)
	}

	want := q.scope.sign(secretKey, q.signedAt, canonicalRequest(method, path, query, headers, q.signedHeaders))
	if !hmac.Equal([]byte(want), []byte(q.signature)) {
		return fmt.Errorf("signature mismatch: %w", ErrUnauthorized)
	}

	return nil
}

// Presigner produces AWS Signature V4 presigned URLs that SignatureVerifier
// accepts.
type Presigner struct {
	BaseURL   *url.URL
	Region    string
	Service   string
	AccessKey string
	SecretKey string
}

// NewPresigner creates a presigner for URLs rooted at baseURL.
func NewPresigner(baseURL, region, service, accessKey, secretKey string) (*Presigner, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("new presigner: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("new presigner: %w: base url must be absolute: %s", ErrInvalidInput, baseURL)
	}
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("new presigner: %w: signing key cannot be empty", ErrInvalidInput)
	}
	return &Presigner{
		BaseURL:   u,
		Region:    region,
		Service:   service,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}, nil
}

// Presign returns a URL for method on path (relative to BaseURL) valid for
// ttl starting at now. Every header in headers is signed along with host, so
// the eventual request must carry identical values.
func (p *Presigner) Presign(method, path string, headers http.Header, ttl time.Duration, now time.Time) (string, error) {
	seconds := int(ttl / time.Second)
	if seconds <= 0 || seconds > MaxExpiresSeconds {
		return "", fmt.Errorf("presign: %w: expiry must be between 1 and %d seconds", ErrInvalidInput, MaxExpiresSeconds)
	}

	u := *p.BaseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	u.RawPath = ""

	signed := http.Header{}
	signed.Set("host", u.Host)
	names := []string{"host"}
	for name := range headers {
		lower := strings.ToLower(name)
		if lower == "host" {
			continue
		}
		signed.Set(lower, headers.Get(name))
		names = append(names, lower)
	}
	sort.Strings(names)
	signedHeaders := strings.Join(names, ";")

	now = now.UTC()
	scope := credentialScope{date: now.Format(DateFormat), region: p.Region, service: p.Service}

	query := url.Values{}
	query.Set("X-Amz-Algorithm", SignatureAlgorithm)
	query.Set("X-Amz-Credential", p.AccessKey+"/"+scope.String())
	query.Set("X-Amz-Date", now.Format(DateTimeFormat))
	query.Set("X-Amz-Expires", strconv.Itoa(seconds))
	query.Set("X-Amz-SignedHeaders", signedHeaders)
	query.Set("X-Amz-Signature", scope.sign(p.SecretKey, now, canonicalRequest(method, u.EscapedPath(), query, signed, signedHeaders)))

	u.RawQuery = query.Encode()
	return u.String(), nil
}

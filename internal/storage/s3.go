package storage

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// S3Config descreve parâmetros para assinar requisições compatíveis com S3.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	PublicDomain string
	HTTPClient   *http.Client
}

// S3Uploader envia cópias de backup para um bucket S3/R2 usando SigV4.
type S3Uploader struct {
	cfg    S3Config
	client *http.Client
}

// NewS3Uploader valida a configuração e devolve um uploader pronto.
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &S3Uploader{cfg: cfg, client: client}, nil
}

// Upload grava o objeto no bucket configurado e retorna a URL resultante.
func (u *S3Uploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if strings.TrimSpace(input.Key) == "" {
		return nil, errors.New("storage: chave do objeto obrigatória")
	}
	if len(input.Body) == 0 {
		return nil, errors.New("storage: corpo vazio")
	}

	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	endpoint := strings.TrimRight(u.cfg.Endpoint, "/")
	escapedKey := (&url.URL{Path: strings.TrimLeft(input.Key, "/")}).EscapedPath()
	targetURL := fmt.Sprintf("%s/%s/%s", endpoint, u.cfg.Bucket, escapedKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, targetURL, bytes.NewReader(input.Body))
	if err != nil {
		return nil, err
	}

	payloadHash := sha256.Sum256(input.Body)
	payloadHex := hex.EncodeToString(payloadHash[:])

	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(input.Body))
	req.Header.Set("x-amz-content-sha256", payloadHex)
	req.Header.Set("Content-Length", fmt.Sprintf("%d", len(input.Body)))

	signRequest(req, u.cfg, payloadHex, time.Now().UTC())

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("storage: upload falhou (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	etag := strings.Trim(resp.Header.Get("ETag"), "\"")

	publicURL := targetURL
	if strings.TrimSpace(u.cfg.PublicDomain) != "" {
		publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(u.cfg.PublicDomain, "/"), escapedKey)
	}

	return &UploadResult{URL: publicURL, ETag: etag}, nil
}

func (cfg S3Config) validate() error {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return errors.New("storage: endpoint do S3 ausente")
	}
	if strings.TrimSpace(cfg.Region) == "" {
		return errors.New("storage: região do S3 ausente")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return errors.New("storage: bucket do S3 ausente")
	}
	if strings.TrimSpace(cfg.AccessKey) == "" {
		return errors.New("storage: access key ausente")
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return errors.New("storage: secret key ausente")
	}
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return errors.New("storage: endpoint deve incluir protocolo http/https")
	}
	return nil
}

// signRequest aplica assinatura AWS SigV4 sobre a requisição.
func signRequest(req *http.Request, cfg S3Config, payloadHash string, now time.Time) {
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")

	req.Header.Set("x-amz-date", amzDate)
	req.Header.Set("Host", req.URL.Host)

	headerBlock, signedHeaders := canonicalHeaders(req.Header)
	canonicalRequest := strings.Join([]string{
		req.Method,
		canonicalPath(req.URL.Path),
		canonicalQuery(req.URL.Query()),
		headerBlock,
		signedHeaders,
		payloadHash,
	}, "\n")

	digest := sha256.Sum256([]byte(canonicalRequest))

	scope := fmt.Sprintf("%s/%s/s3/aws4_request", dateStamp, cfg.Region)
	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		scope,
		hex.EncodeToString(digest[:]),
	}, "\n")

	signature := hmacSHA256(signingKey(cfg.SecretKey, dateStamp, cfg.Region), []byte(stringToSign))

	req.Header.Set("Authorization", fmt.Sprintf(
		"AWS4-HMAC-SHA256 Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		cfg.AccessKey, scope, signedHeaders, hex.EncodeToString(signature),
	))
}

func canonicalPath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return uriEncode(path, false)
}

func canonicalQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		vals := values[key]
		sort.Strings(vals)
		for _, v := range vals {
			parts = append(parts, fmt.Sprintf("%s=%s", uriEncode(key, true), uriEncode(v, true)))
		}
	}
	return strings.Join(parts, "&")
}

func canonicalHeaders(h http.Header) (string, string) {
	merged := make(map[string]string)
	for k, vals := range h {
		lower := strings.ToLower(k)
		if lower == "authorization" {
			continue
		}
		trimmed := make([]string, 0, len(vals))
		for _, v := range vals {
			trimmed = append(trimmed, strings.TrimSpace(v))
		}
		merged[lower] = strings.Join(trimmed, ",")
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + ":" + merged[k]
	}

	return strings.Join(lines, "\n") + "\n", strings.Join(keys, ";")
}

func uriEncode(input string, encodeSlash bool) string {
	var builder strings.Builder
	for i := 0; i < len(input); i++ {
		c := input[i]
		if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.' || c == '~' {
			builder.WriteByte(c)
			continue
		}
		if c == '/' && !encodeSlash {
			builder.WriteByte(c)
			continue
		}
		builder.WriteString(fmt.Sprintf("%%%02X", c))
	}
	return builder.String()
}

func signingKey(secret, dateStamp, region string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(dateStamp))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte("s3"))
	return hmacSHA256(kService, []byte("aws4_request"))
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

package imagehost

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/parkdiscovery/internal/domain/providers"
	"github.com/zatekoja/parkdiscovery/pkg/config"
)

const (
	cloudinaryAPIURL   = "https://api.cloudinary.com/v1_1"
	defaultHTTPTimeout = 30 * time.Second
)

// CloudinaryProvider stores park images on Cloudinary using signed uploads.
type CloudinaryProvider struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	folder     string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewCloudinaryProvider creates a Cloudinary image provider
func NewCloudinaryProvider(cfg *config.ImageHostConfig) (*CloudinaryProvider, error) {
	return NewCloudinaryProviderWithOptions(cfg, cloudinaryAPIURL, nil)
}

// NewCloudinaryProviderWithOptions allows overriding the API URL and HTTP client (used for tests).
func NewCloudinaryProviderWithOptions(cfg *config.ImageHostConfig, baseURL string, httpClient *http.Client) (*CloudinaryProvider, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary cloud name, api key and api secret are required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &CloudinaryProvider{
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		folder:     cfg.Folder,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

// Upload sends the image to Cloudinary and returns its delivery URL and public id
func (p *CloudinaryProvider) Upload(ctx context.Context, upload providers.ImageUpload) (*providers.UploadedImage, error) {
	params := map[string]string{
		"timestamp": strconv.FormatInt(p.now().Unix(), 10),
	}
	if p.folder != "" {
		params["folder"] = p.folder
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range p.signed(params) {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write upload field: %w", err)
		}
	}
	part, err := writer.CreateFormFile("file", upload.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload part: %w", err)
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("upload"), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var payload cloudinaryUploadResponse
	if err := p.do(req, &payload); err != nil {
		return nil, fmt.Errorf("image upload failed: %w", err)
	}
	if payload.SecureURL == "" || payload.PublicID == "" {
		return nil, fmt.Errorf("image upload failed: incomplete response")
	}

	log.Debug().Str("public_id", payload.PublicID).Msg("uploaded image to cloudinary")
	return &providers.UploadedImage{URL: payload.SecureURL, ExternalID: payload.PublicID}, nil
}

// Destroy deletes an image by public id. Images that are already gone are not an error.
func (p *CloudinaryProvider) Destroy(ctx context.Context, externalID string) error {
	if externalID == "" {
		return nil
	}

	form := url.Values{}
	for key, value := range p.signed(map[string]string{
		"public_id": externalID,
		"timestamp": strconv.FormatInt(p.now().Unix(), 10),
	}) {
		form.Set(key, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint("destroy"), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var payload cloudinaryDestroyResponse
	if err := p.do(req, &payload); err != nil {
		return fmt.Errorf("image destroy failed: %w", err)
	}
	if payload.Result != "ok" && payload.Result != "not found" {
		return fmt.Errorf("image destroy failed: %s", payload.Result)
	}
	return nil
}

func (p *CloudinaryProvider) endpoint(action string) string {
	return fmt.Sprintf("%s/%s/image/%s", p.baseURL, p.cloudName, action)
}

// signed adds api_key and signature to params
func (p *CloudinaryProvider) signed(params map[string]string) map[string]string {
	out := make(map[string]string, len(params)+2)
	for k, v := range params {
		out[k] = v
	}
	out["signature"] = sign(params, p.apiSecret)
	out["api_key"] = p.apiKey
	return out
}

func (p *CloudinaryProvider) do(req *http.Request, out interface{}) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr cloudinaryErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// sign computes the Cloudinary request signature: the sorted key=value pairs
// joined by '&', followed by the API secret, hashed with SHA-1.
func sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

type cloudinaryUploadResponse struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
}

type cloudinaryDestroyResponse struct {
	Result string `json:"result"`
}

type cloudinaryErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/JBBSoftech/watter/internal/models"
	"github.com/JBBSoftech/watter/internal/platform"
	"github.com/JBBSoftech/watter/internal/util"

	"go.uber.org/zap"
)

// Fetcher pulls the full configuration document for one tenant. It does not
// retry; retry policy belongs to the sync coordinator.
type Fetcher struct {
	baseURL string
	session *platform.Session
	client  *http.Client
	logger  *zap.Logger
}

// configResponse is the wire shape of the config fetch endpoint.
type configResponse struct {
	Success        bool                  `json:"success"`
	Message        string                `json:"message,omitempty"`
	Pages          []models.Page         `json:"pages"`
	StoreInfo      models.StoreInfo      `json:"storeInfo"`
	DesignSettings models.DesignSettings `json:"designSettings"`
}

// New creates a fetcher against baseURL with the given request timeout.
func New(baseURL string, session *platform.Session, timeout time.Duration) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		session: session,
		client:  &http.Client{Timeout: timeout},
		logger:  util.GetLogger(),
	}
}

// Fetch retrieves the tenant's configuration document. Failures map onto the
// platform taxonomy: transport problems become NetworkError, non-2xx
// responses become ServerError, and malformed or unsuccessful bodies become
// DecodeError.
func (f *Fetcher) Fetch(ctx context.Context) (models.ConfigDocument, error) {
	ctx, span := util.StartSpan(ctx, "Fetcher.Fetch")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ConfigFetchLatency.Observe(time.Since(start).Seconds())
	}()

	endpoint := fmt.Sprintf("%s/api/v1/config?tenantId=%s", f.baseURL, url.QueryEscape(f.session.TenantID()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.ConfigDocument{}, fmt.Errorf("failed to build config request: %w", err)
	}
	if token := f.session.AuthToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		util.ConfigFetchesTotal.WithLabelValues("network_error").Inc()
		return models.ConfigDocument{}, &platform.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		util.ConfigFetchesTotal.WithLabelValues("server_error").Inc()
		f.logger.Warn("Config fetch returned non-2xx",
			zap.String("tenant_id", f.session.TenantID()),
			zap.Int("status", resp.StatusCode))
		return models.ConfigDocument{}, &platform.ServerError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		util.ConfigFetchesTotal.WithLabelValues("network_error").Inc()
		return models.ConfigDocument{}, &platform.NetworkError{Err: err}
	}

	var cr configResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		util.ConfigFetchesTotal.WithLabelValues("decode_error").Inc()
		return models.ConfigDocument{}, &platform.DecodeError{Err: err}
	}

	if !cr.Success {
		util.ConfigFetchesTotal.WithLabelValues("decode_error").Inc()
		return models.ConfigDocument{}, &platform.DecodeError{Err: fmt.Errorf("upstream reported failure: %s", cr.Message)}
	}

	util.ConfigFetchesTotal.WithLabelValues("success").Inc()
	return models.ConfigDocument{
		Pages:          cr.Pages,
		StoreInfo:      cr.StoreInfo,
		DesignSettings: cr.DesignSettings,
	}, nil
}

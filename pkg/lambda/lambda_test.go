package lambda

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-api/internal/config"
)

func TestFromAPIGateway(t *testing.T) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodPost,
		Path:                  "/api/v1/category/addNewCategory",
		Headers:               map[string]string{"Content-Type": "application/json"},
		QueryStringParameters: map[string]string{"page": "1"},
		MultiValueQueryStringParameters: map[string][]string{
			"page": {"2"},
		},
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"name":"Dairy"}`)),
		IsBase64Encoded: true,
	}
	event.RequestContext.Identity.SourceIP = "10.1.2.3"

	req, err := FromAPIGateway(event)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Dairy"}`, string(req.Body))
	assert.Equal(t, []string{"2"}, req.QueryParams["page"])

	httpReq, err := req.HTTPRequest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/category/addNewCategory?page=2", httpReq.URL.String())
	assert.Equal(t, "application/json", httpReq.Header.Get("Content-Type"))
	assert.Equal(t, "10.1.2.3", httpReq.Header.Get("X-Forwarded-For"))

	body, err := io.ReadAll(httpReq.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Dairy"}`, string(body))
}

func TestFromAPIGateway_BadBase64(t *testing.T) {
	_, err := FromAPIGateway(events.APIGatewayProxyRequest{Body: "%%%", IsBase64Encoded: true})
	assert.Error(t, err)
}

func TestAdapt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "a", Value: "1"})
		http.SetCookie(w, &http.Cookie{Name: "b", Value: "2"})
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(r.URL.Query().Get("q")))
	})

	resp, err := Adapt(mux)(context.Background(), &Request{
		Method:      http.MethodGet,
		Path:        "/ping",
		QueryParams: map[string][]string{"q": {"pong"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "pong", string(resp.Body))

	gateway := resp.ToAPIGateway()
	assert.Len(t, gateway.MultiValueHeaders["Set-Cookie"], 2)
	assert.Equal(t, "pong", gateway.Body)
}

func TestConnectionManager(t *testing.T) {
	cfg := &config.Config{
		Environment: "test",
		Port:        "8080",
		Database: config.DatabaseConfig{
			Path:            filepath.Join(t.TempDir(), "lambda.db"),
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Hour,
			AutoMigrate:     true,
		},
		JWT: config.JWTConfig{
			Secret:          "lambda-test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: time.Hour,
		},
		Log:       config.LogConfig{Level: "error"},
		Inventory: config.InventoryConfig{ExpiryWarningDays: 7, DefaultPageSize: 10},
	}

	cm := NewConnectionManager(cfg)
	assert.False(t, cm.IsHealthy())

	resp, err := cm.Handler()(context.Background(), &Request{Method: http.MethodGet, Path: "/health"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, cm.IsHealthy())

	first, err := cm.GetContainer(context.Background())
	require.NoError(t, err)
	second, err := cm.GetContainer(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)

	cm.now = func() time.Time { return time.Now().Add(time.Hour) }
	assert.False(t, cm.IsHealthy())

	require.NoError(t, cm.Cleanup())
	assert.False(t, cm.IsHealthy())
}

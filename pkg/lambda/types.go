package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Request represents a generic HTTP request for serverless functions
type Request struct {
	Method      string              `json:"method"`
	Path        string              `json:"path"`
	Headers     map[string][]string `json:"headers"`
	QueryParams map[string][]string `json:"query_params"`
	Body        []byte              `json:"body"`
	SourceIP    string              `json:"source_ip"`
}

// Response represents a generic HTTP response for serverless functions
type Response struct {
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
	Body       []byte              `json:"body"`
}

// HandlerFunc is a framework-agnostic handler interface
type HandlerFunc func(ctx context.Context, req *Request) (*Response, error)

// FromAPIGateway converts an API Gateway proxy event. Multi-value headers
// and query parameters win over their single-value copies.
func FromAPIGateway(event events.APIGatewayProxyRequest) (*Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode request body: %w", err)
		}
		body = decoded
	}

	return &Request{
		Method:      event.HTTPMethod,
		Path:        event.Path,
		Headers:     mergeValues(event.Headers, event.MultiValueHeaders),
		QueryParams: mergeValues(event.QueryStringParameters, event.MultiValueQueryStringParameters),
		Body:        body,
		SourceIP:    event.RequestContext.Identity.SourceIP,
	}, nil
}

func mergeValues(single map[string]string, multi map[string][]string) map[string][]string {
	out := make(map[string][]string, len(single)+len(multi))
	for k, v := range single {
		out[k] = []string{v}
	}
	for k, v := range multi {
		out[k] = v
	}
	return out
}

// HTTPRequest builds the net/http request for r
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	target := r.Path
	if len(r.QueryParams) > 0 {
		target += "?" + url.Values(r.QueryParams).Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, values := range r.Headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if r.SourceIP != "" {
		req.RemoteAddr = r.SourceIP + ":0"
		if req.Header.Get("X-Forwarded-For") == "" {
			req.Header.Set("X-Forwarded-For", r.SourceIP)
		}
	}
	return req, nil
}

// Adapt serves generic requests through an http.Handler
func Adapt(handler http.Handler) HandlerFunc {
	return func(ctx context.Context, req *Request) (*Response, error) {
		httpReq, err := req.HTTPRequest(ctx)
		if err != nil {
			return nil, err
		}

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httpReq)

		result := recorder.Result()
		defer result.Body.Close()

		return &Response{
			StatusCode: result.StatusCode,
			Headers:    result.Header,
			Body:       recorder.Body.Bytes(),
		}, nil
	}
}

// ToAPIGateway converts a response into an API Gateway proxy response
func (r *Response) ToAPIGateway() events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(r.Headers))
	for k, v := range r.Headers {
		headers[k] = strings.Join(v, ",")
	}

	return events.APIGatewayProxyResponse{
		StatusCode:        r.StatusCode,
		Headers:           headers,
		MultiValueHeaders: r.Headers,
		Body:              string(r.Body),
	}
}

// ErrorResponse is the failure envelope returned when the adapter itself fails
func ErrorResponse(status int, message string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       fmt.Sprintf(`{"success":false,"error":"internal_error","message":%q}`, message),
	}
}

package main

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func TestRouterExactMatchAndNotFound(t *testing.T) {
	router := NewRouter()
	router.Handle("GET", "/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("GET / = %d %q, want 200 ok", rec.Code, rec.Body.String())
	}

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/nope", nil),
		httptest.NewRequest(http.MethodDelete, "/", nil),
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404", req.Method, req.URL.Path, rec.Code)
		}
		if rec.Body.String() != "Not Found.\n" {
			t.Errorf("%s %s body = %q, want %q", req.Method, req.URL.Path, rec.Body.String(), "Not Found.\n")
		}
	}
}

func TestConvertAPIGatewayV2RequestPreservesRawBody(t *testing.T) {
	raw := `{"type":1}`
	req := events.APIGatewayV2HTTPRequest{
		RawPath:         "/",
		Body:            base64.StdEncoding.EncodeToString([]byte(raw)),
		IsBase64Encoded: true,
		Headers: map[string]string{
			"x-signature-ed25519":   "abcd",
			"x-signature-timestamp": "1700000000",
		},
	}
	req.RequestContext.HTTP.Method = http.MethodPost

	httpReq, err := convertAPIGatewayV2Request(req)
	if err != nil {
		t.Fatalf("convertAPIGatewayV2Request: %v", err)
	}

	buf := make([]byte, len(raw))
	n, _ := httpReq.Body.Read(buf)
	if string(buf[:n]) != raw {
		t.Errorf("body = %q, want %q", buf[:n], raw)
	}
	if got := httpReq.Header.Get("X-Signature-Ed25519"); got != "abcd" {
		t.Errorf("signature header = %q, want %q", got, "abcd")
	}
	if httpReq.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", httpReq.Method)
	}
}

package admin

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRegisterSendsAuthenticatedJSON(t *testing.T) {
	var gotAuth, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/register" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`{"twitch_id": 564886943, "created": ["eventsub"]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", "sekrit")
	resp, err := client.Register(context.Background(), RegisterRequest{
		Login:         "cxrys_",
		DiscordUserID: "42",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if gotAuth != "Bearer sekrit" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer sekrit")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", gotContentType, "application/json")
	}
	if want := `{"login":"cxrys_","discord_user_id":"42"}`; gotBody != want {
		t.Errorf("body = %s, want %s", gotBody, want)
	}
	if resp.TwitchID.String() != "564886943" {
		t.Errorf("TwitchID = %q, want %q", resp.TwitchID.String(), "564886943")
	}
	if len(resp.Created) != 1 || resp.Created[0] != "eventsub" {
		t.Errorf("Created = %v, want [eventsub]", resp.Created)
	}
}

func TestUnregisterOmitsAbsentFields(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte(`{"broadcaster_id":"564886943"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sekrit")
	resp, err := client.Unregister(context.Background(), UnregisterRequest{
		BroadcasterID: "564886943",
	})
	if err != nil {
		t.Fatalf("Unregister: %v", err)
	}

	if want := `{"broadcaster_id":"564886943"}`; gotBody != want {
		t.Errorf("body = %s, want %s", gotBody, want)
	}
	if strings.Contains(gotBody, "login") {
		t.Errorf("payload contains login key: %s", gotBody)
	}
	if resp.BroadcasterID.String() != "564886943" {
		t.Errorf("BroadcasterID = %q, want %q", resp.BroadcasterID.String(), "564886943")
	}
}

func TestNonSuccessStatusReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sekrit")
	_, err := client.Register(context.Background(), RegisterRequest{Login: "cxrys_", DiscordUserID: "42"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Error(), "500") {
		t.Errorf("error message %q does not include status code", apiErr.Error())
	}
	if !strings.Contains(apiErr.Error(), "boom") {
		t.Errorf("error message %q does not include response body", apiErr.Error())
	}
}

func TestEmptyAndNonJSONBodiesTolerated(t *testing.T) {
	for name, body := range map[string]string{"empty": "", "html": "<html>ok</html>"} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "sekrit")
			resp, err := client.Unregister(context.Background(), UnregisterRequest{Login: "cxrys_"})
			if err != nil {
				t.Fatalf("Unregister: %v", err)
			}
			if resp.BroadcasterID.String() != "" {
				t.Errorf("BroadcasterID = %q, want empty", resp.BroadcasterID.String())
			}
		})
	}
}

package trail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/me/trailctl/pkg/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *MemCredentialStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds := NewMemCredentialStore()
	client := NewClient(DefaultConfig().WithBaseURL(server.URL), creds, nil)
	return client, creds
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(model.Paginated[model.Task]{Page: 1, PageSize: 20})
	})

	// No credential stored: request goes out unauthenticated.
	if _, err := client.ListTasks(context.Background(), model.Page{}); err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q without credential, want empty", gotAuth)
	}

	creds.Set("tok123")
	if _, err := client.ListTasks(context.Background(), model.Page{}); err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q, want 'Bearer tok123'", gotAuth)
	}
}

func TestClient_UnauthorizedClearsStoreAndFiresHandler(t *testing.T) {
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized", "detail": "token expired"})
	})
	creds.Set("stale-token")

	handlerCalls := 0
	client.SetUnauthorizedHandler(func() {
		handlerCalls++
		if creds.Has() {
			t.Error("credential still present when handler runs")
		}
	})

	_, err := client.GetTask(context.Background(), "t1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsAuthError(err) {
		t.Errorf("IsAuthError() = false for %v", err)
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("errors.Is(err, ErrUnauthorized) = false for %v", err)
	}
	if creds.Has() {
		t.Error("credential not cleared after 401")
	}
	if handlerCalls != 1 {
		t.Errorf("handler called %d times, want 1", handlerCalls)
	}

	// A second 401 with the store already empty must not error either.
	_, err = client.CurrentUser(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if handlerCalls != 2 {
		t.Errorf("handler called %d times after second 401, want 2", handlerCalls)
	}
}

func TestClient_UnauthorizedWithoutHandler(t *testing.T) {
	client, creds := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	creds.Set("stale-token")

	if _, err := client.CurrentUser(context.Background()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if creds.Has() {
		t.Error("credential not cleared when no handler installed")
	}
}

func TestClient_ErrorPayloadPassthrough(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantText   string
		wantDetail string
		wantFields int
	}{
		{
			name:       "structured error",
			status:     http.StatusConflict,
			body:       `{"error":"Conflict","detail":"email already registered"}`,
			wantText:   "Conflict",
			wantDetail: "email already registered",
		},
		{
			name:       "bare detail",
			status:     http.StatusBadRequest,
			body:       `{"detail":"malformed request"}`,
			wantDetail: "malformed request",
		},
		{
			name:       "validation fields",
			status:     http.StatusUnprocessableEntity,
			body:       `{"error":"Validation Error","detail":[{"field":"email","message":"value is not a valid email address","type":"value_error"}]}`,
			wantText:   "Validation Error",
			wantFields: 1,
		},
		{
			name:       "non-JSON body",
			status:     http.StatusBadGateway,
			body:       "upstream exploded",
			wantDetail: "upstream exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.GetTask(context.Background(), "t1")
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not an *APIError", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.ErrorText != tt.wantText {
				t.Errorf("ErrorText = %q, want %q", apiErr.ErrorText, tt.wantText)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", apiErr.Detail, tt.wantDetail)
			}
			if len(apiErr.Fields) != tt.wantFields {
				t.Errorf("len(Fields) = %d, want %d", len(apiErr.Fields), tt.wantFields)
			}
		})
	}
}

func TestClient_PaginationDefaults(t *testing.T) {
	tests := []struct {
		name     string
		call     func(c *Client, opts model.Page) error
		opts     model.Page
		wantPage string
		wantSize string
	}{
		{
			name: "tasks default",
			call: func(c *Client, opts model.Page) error {
				_, err := c.ListTasks(context.Background(), opts)
				return err
			},
			wantPage: "1",
			wantSize: "20",
		},
		{
			name: "audit logs default",
			call: func(c *Client, opts model.Page) error {
				_, err := c.AuditLogs(context.Background(), opts)
				return err
			},
			wantPage: "1",
			wantSize: "50",
		},
		{
			name: "audit history default",
			call: func(c *Client, opts model.Page) error {
				_, err := c.MyAuditHistory(context.Background(), opts)
				return err
			},
			wantPage: "1",
			wantSize: "50",
		},
		{
			name: "users default",
			call: func(c *Client, opts model.Page) error {
				_, err := c.ListUsers(context.Background(), opts)
				return err
			},
			wantPage: "1",
			wantSize: "50",
		},
		{
			name: "explicit values honored",
			call: func(c *Client, opts model.Page) error {
				_, err := c.ListTasks(context.Background(), opts)
				return err
			},
			opts:     model.Page{Page: 3, PageSize: 5},
			wantPage: "3",
			wantSize: "5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPage, gotSize string
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPage = r.URL.Query().Get("page")
				gotSize = r.URL.Query().Get("page_size")
				w.Write([]byte(`{"items":[],"total":0,"page":1,"page_size":20}`))
			})

			if err := tt.call(client, tt.opts); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if gotPage != tt.wantPage {
				t.Errorf("page = %q, want %q", gotPage, tt.wantPage)
			}
			if gotSize != tt.wantSize {
				t.Errorf("page_size = %q, want %q", gotSize, tt.wantSize)
			}
		})
	}
}

func TestClient_DeleteTask(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.DeleteTask(context.Background(), "task_42"); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
	if gotPath != "/tasks/task_42" {
		t.Errorf("path = %q, want /tasks/task_42", gotPath)
	}
}

func TestConfig_WithBaseURL(t *testing.T) {
	cfg := DefaultConfig().WithBaseURL("http://example.com/api/")
	if cfg.BaseURL != "http://example.com/api" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
}

package appupdate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizeReleaseVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "valid with prefix", input: "v1.2.3", want: "v1.2.3"},
		{name: "valid without prefix", input: "1.2.3", want: "v1.2.3"},
		{name: "short form", input: "v2", want: "v2.0.0"},
		{name: "pre-release skipped", input: "v1.2.3-rc.1", want: ""},
		{name: "dev skipped", input: "dev", want: ""},
		{name: "empty skipped", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeReleaseVersion(tt.input); got != tt.want {
				t.Fatalf("normalizeReleaseVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUpgradeHint(t *testing.T) {
	t.Setenv("GOBIN", "")
	t.Setenv("GOPATH", "/srv/gopath")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"gopath bin", "/srv/gopath/bin/calplot", goInstallHint},
		{"home go bin", "/users/test/go/bin/calplot", goInstallHint},
		{"system", "/usr/local/bin/calplot", downloadHint},
		{"unknown", "", downloadHint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := upgradeHint(tt.path); got != tt.want {
				t.Fatalf("upgradeHint(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func releaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Errorf("missing User-Agent")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		status     int
		body       string
		wantUpdate bool
		wantLatest string
		wantErr    bool
	}{
		{name: "update available", current: "v1.2.0", status: 200, body: `{"tag_name":"v1.3.0"}`, wantUpdate: true, wantLatest: "v1.3.0"},
		{name: "up to date", current: "1.3.0", status: 200, body: `{"tag_name":"v1.3.0"}`, wantLatest: "v1.3.0"},
		{name: "ahead of release", current: "v1.4.0", status: 200, body: `{"tag_name":"v1.3.0"}`, wantLatest: "v1.3.0"},
		{name: "http error", current: "v1.2.0", status: 500, body: ``, wantErr: true},
		{name: "prerelease tag", current: "v1.2.0", status: 200, body: `{"tag_name":"v2.0.0-beta"}`, wantErr: true},
		{name: "bad payload", current: "v1.2.0", status: 200, body: `{`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := releaseServer(t, tt.status, tt.body)
			result, err := Check(context.Background(), CheckOptions{
				CurrentVersion:   tt.current,
				ExecutablePath:   "/usr/local/bin/calplot",
				LatestReleaseURL: server.URL,
				HTTPClient:       server.Client(),
				Timeout:          time.Second,
			})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if result.UpdateAvailable != tt.wantUpdate || result.LatestVersion != tt.wantLatest {
				t.Fatalf("result = %+v", result)
			}
		})
	}
}

func TestCheckSkipsDevBuilds(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	defer server.Close()

	result, err := Check(context.Background(), CheckOptions{
		CurrentVersion:   "dev",
		LatestReleaseURL: server.URL,
		HTTPClient:       server.Client(),
	})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if called || result.UpdateAvailable || result.CurrentVersion != "" {
		t.Fatalf("dev build should not query releases: called=%v result=%+v", called, result)
	}
}

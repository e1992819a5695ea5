package commands

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TimurManjosov/apollo/internal/client"
	"github.com/TimurManjosov/apollo/internal/console"
	"github.com/TimurManjosov/apollo/internal/engine"
	"github.com/TimurManjosov/apollo/internal/testutil"
	"github.com/TimurManjosov/apollo/internal/toggle"
)

const testAdminKey = "admin-key"

// newTestAPI starts an API server over a seeded console and points the CLI
// config at an empty temp file.
func newTestAPI(t *testing.T) (string, *console.Console) {
	t.Helper()
	t.Setenv("APOLLO_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv("APOLLO_BASE_URL", "")
	t.Setenv("APOLLO_API_KEY", "")
	srv, c := testutil.NewTestServer(t, testAdminKey)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts.URL, c
}

// run executes the root command. Flags are package globals, so the defaults
// are passed explicitly first and later args override them.
func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	full := append([]string{}, args...)
	full = append(full, "--base-url", url, "--api-key", testAdminKey)
	if !containsFlag(args, "--format") {
		full = append(full, "--format", "table")
	}
	full = append(full, "--quiet=false", "--verbose=false")
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return out.String(), err
}

func containsFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag || strings.HasPrefix(a, flag+"=") {
			return true
		}
	}
	return false
}

func TestCreateListDelete(t *testing.T) {
	url, c := newTestAPI(t)

	out, err := run(t, url, "create", "Dark Mode", "--key", "Dark Mode", "--no-input")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(out, "Successfully created toggle 'dark_mode'") {
		t.Errorf("create output = %q", out)
	}
	if _, err := c.GetByKey("dark_mode"); err != nil {
		t.Fatalf("toggle not created on server: %v", err)
	}

	out, err = run(t, url, "list", "dark", "--format", "json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list client.ListResult
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, out)
	}
	if len(list.Toggles) != 1 || list.Toggles[0].Key != "dark_mode" {
		t.Errorf("list = %+v", list.Toggles)
	}

	if _, err := run(t, url, "delete", "dark_mode", "--yes"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.GetByKey("dark_mode"); err == nil {
		t.Error("toggle still present after delete")
	}
}

func TestCreate_NoInputRequiresFields(t *testing.T) {
	url, _ := newTestAPI(t)
	createKey = ""
	if _, err := run(t, url, "create", "Only a name", "--no-input"); err == nil {
		t.Fatal("expected error when --key is missing")
	}
}

func TestEnableDisable(t *testing.T) {
	url, c := newTestAPI(t)

	if _, err := run(t, url, "disable", "new_checkout_experience"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	got, err := c.GetByKey("new_checkout_experience")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != toggle.StatusDisabled {
		t.Errorf("status = %s, want disabled", got.Status)
	}

	out, err := run(t, url, "enable", "new_checkout_experience")
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !strings.Contains(out, "status: enabled") {
		t.Errorf("enable output = %q", out)
	}
}

func TestEval(t *testing.T) {
	url, _ := newTestAPI(t)

	out, err := run(t, url, "eval", "new_checkout_experience",
		"--ctx", "city=Beijing", "--ctx", "user_id=1002", "--format", "json")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	var res engine.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("eval output is not JSON: %v\n%s", err, out)
	}
	if !res.Allowed || res.Reason != engine.ReasonAudienceMatch {
		t.Errorf("result = %+v", res)
	}
}

func TestParseContext(t *testing.T) {
	got, err := parseContext(`{"traffic": 12, "city": "Paris"}`, []string{"city=Beijing", "plan=a=b"})
	if err != nil {
		t.Fatalf("parseContext: %v", err)
	}
	if got["city"] != "Beijing" {
		t.Errorf("city = %v, pairs should win over --json", got["city"])
	}
	if got["plan"] != "a=b" {
		t.Errorf("plan = %v", got["plan"])
	}
	if n, ok := got["traffic"].(json.Number); !ok || n.String() != "12" {
		t.Errorf("traffic = %#v", got["traffic"])
	}

	if _, err := parseContext("", []string{"novalue"}); err == nil {
		t.Error("expected error for pair without '='")
	}
	if _, err := parseContext("[1]", nil); err == nil {
		t.Error("expected error for non-object JSON")
	}
}

func TestConfigSetGet(t *testing.T) {
	url, _ := newTestAPI(t)

	if _, err := run(t, url, "config", "set", "staging.base_url", "http://staging:8080"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := run(t, url, "config", "get", "staging.base_url")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if strings.TrimSpace(out) != "http://staging:8080" {
		t.Errorf("config get = %q", out)
	}

	if _, err := run(t, url, "config", "get", "staging"); err == nil {
		t.Error("expected error for key without env prefix")
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":          "(none)",
		"abc":       "***",
		"admin-123": "admi***",
	}
	for in, want := range tests {
		if got := maskKey(in); got != want {
			t.Errorf("maskKey(%q) = %q, want %q", in, got, want)
		}
	}
}

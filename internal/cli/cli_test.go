package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	subwayerrors "github.com/matzehuels/subway/pkg/errors"
	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/observability"
	"github.com/matzehuels/subway/pkg/snapshot"
)

// testEnv isolates configuration lookups and returns a file store URL in a
// temporary directory.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "SUBWAY_") || k == "DATABASE_URL" {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
	t.Chdir(dir)
	t.Cleanup(observability.Reset)

	prev := interactive
	interactive = func() bool { return false }
	t.Cleanup(func() { interactive = prev })

	return "file://" + filepath.Join(dir, "lines")
}

// run executes the CLI with args against storeURL and returns what it
// printed.
func run(t *testing.T, storeURL string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	defer func() { stdout = prev }()

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(append([]string{"--store", storeURL}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func mustRun(t *testing.T, storeURL string, args ...string) string {
	t.Helper()
	out, err := run(t, storeURL, args...)
	if err != nil {
		t.Fatalf("subway %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func createLine2(t *testing.T, storeURL string) {
	t.Helper()
	mustRun(t, storeURL, "line", "create", "2", "--name", "Line 2", "--color", "green",
		"--up", "gangnam:Gangnam", "--down", "seolleung:Seolleung", "--distance", "10")
}

func listJSON(t *testing.T, storeURL string) []snapshot.Line {
	t.Helper()
	var lines []snapshot.Line
	out := mustRun(t, storeURL, "line", "list", "--json")
	if err := json.Unmarshal([]byte(out), &lines); err != nil {
		t.Fatalf("decode line list: %v\n%s", err, out)
	}
	return lines
}

func TestLineLifecycle(t *testing.T) {
	storeURL := testEnv(t)

	createLine2(t, storeURL)
	out := mustRun(t, storeURL, "line", "add", "2", "gangnam", "yeoksam:Yeoksam", "4")
	if !strings.Contains(out, "Yeoksam") {
		t.Errorf("line add output missing new station:\n%s", out)
	}

	out = mustRun(t, storeURL, "line", "show", "2")
	g, y, s := strings.Index(out, "Gangnam"), strings.Index(out, "Yeoksam"), strings.Index(out, "Seolleung")
	if g < 0 || !(g < y && y < s) {
		t.Errorf("line show should list stations in path order:\n%s", out)
	}

	lines := listJSON(t, storeURL)
	if len(lines) != 1 || len(lines[0].Sections) != 2 || lines[0].Sections[1].Distance != 6 {
		t.Fatalf("line list --json = %+v", lines)
	}

	mustRun(t, storeURL, "line", "remove", "2", "yeoksam")
	mustRun(t, storeURL, "line", "update", "2", "--color", "red")

	lines = listJSON(t, storeURL)
	want := []snapshot.Section{{Up: "gangnam", Down: "seolleung", Distance: 10}}
	if len(lines) != 1 || lines[0].Color != "red" || len(lines[0].Sections) != 1 || lines[0].Sections[0] != want[0] {
		t.Errorf("after remove and update = %+v", lines)
	}

	mustRun(t, storeURL, "line", "delete", "2")
	if lines := listJSON(t, storeURL); len(lines) != 0 {
		t.Errorf("after delete = %+v", lines)
	}
}

func TestLineErrors(t *testing.T) {
	storeURL := testEnv(t)
	createLine2(t, storeURL)

	tests := []struct {
		name string
		args []string
		code subwayerrors.Code
	}{
		{"duplicate line", []string{"line", "create", "2", "--up", "a", "--down", "b", "--distance", "1"}, subwayerrors.ErrCodeLineExists},
		{"duplicate section", []string{"line", "add", "2", "gangnam", "seolleung", "3"}, subwayerrors.ErrCodeDuplicateSection},
		{"disconnected", []string{"line", "add", "2", "x", "y", "3"}, subwayerrors.ErrCodeDisconnectedSection},
		{"split too long", []string{"line", "add", "2", "gangnam", "m", "12"}, subwayerrors.ErrCodeInvalidSplit},
		{"bad distance", []string{"line", "add", "2", "gangnam", "m", "far"}, subwayerrors.ErrCodeInvalidDistance},
		{"bad station", []string{"line", "add", "2", "gangnam", "a/b", "3"}, subwayerrors.ErrCodeInvalidStation},
		{"last section", []string{"line", "remove", "2", "gangnam"}, subwayerrors.ErrCodeMinimumSections},
		{"unknown line", []string{"line", "show", "9"}, subwayerrors.ErrCodeLineNotFound},
		{"empty update", []string{"line", "update", "2"}, subwayerrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, storeURL, tt.args...)
			if got := subwayerrors.GetCode(err); got != tt.code {
				t.Errorf("error = %v, code %q, want %q", err, got, tt.code)
			}
		})
	}
}

func TestRemoveNeedsStationWhenNotInteractive(t *testing.T) {
	storeURL := testEnv(t)
	createLine2(t, storeURL)

	if _, err := run(t, storeURL, "line", "remove", "2"); err == nil {
		t.Error("line remove without a station should fail outside a terminal")
	}
}

func TestExportImport(t *testing.T) {
	storeURL := testEnv(t)
	createLine2(t, storeURL)
	mustRun(t, storeURL, "line", "add", "2", "seolleung", "samseong:Samseong", "7")

	path := filepath.Join(t.TempDir(), "line2.toml")
	mustRun(t, storeURL, "export", "2", "-o", path)
	mustRun(t, storeURL, "line", "delete", "2")

	if _, err := run(t, storeURL, "import", filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("import of a missing file should fail")
	}

	mustRun(t, storeURL, "import", path)
	lines := listJSON(t, storeURL)
	if len(lines) != 1 || lines[0].Name != "Line 2" || len(lines[0].Stations) != 3 {
		t.Fatalf("after import = %+v", lines)
	}

	_, err := run(t, storeURL, "import", path)
	if subwayerrors.GetCode(err) != subwayerrors.ErrCodeLineExists {
		t.Errorf("re-import error = %v, want LINE_EXISTS", err)
	}
	mustRun(t, storeURL, "import", "--replace", path)

	out := mustRun(t, storeURL, "export", "2")
	if !strings.Contains(out, `"samseong"`) {
		t.Errorf("export to stdout missing station:\n%s", out)
	}
}

func TestRenderDOT(t *testing.T) {
	storeURL := testEnv(t)
	createLine2(t, storeURL)

	out := mustRun(t, storeURL, "render", "2", "--format", "dot", "-o", "-", "--direction", "tb")
	if !strings.HasPrefix(out, `digraph "2"`) || !strings.Contains(out, "rankdir=TB") {
		t.Errorf("render output:\n%s", out)
	}

	mustRun(t, storeURL, "render", "2", "-o", "line2.dot")
	data, err := os.ReadFile("line2.dot")
	if err != nil {
		t.Fatalf("read rendered file: %v", err)
	}
	if !strings.Contains(string(data), `"gangnam" -> "seolleung"`) {
		t.Errorf("rendered file:\n%s", data)
	}

	if _, err := run(t, storeURL, "render", "2", "--format", "gif"); err == nil {
		t.Error("render with an unknown format should fail")
	}
}

func TestCachePath(t *testing.T) {
	storeURL := testEnv(t)
	out := mustRun(t, storeURL, "cache", "path")
	if want := filepath.Join(os.Getenv("XDG_CACHE_HOME"), "subway"); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}
	mustRun(t, storeURL, "cache", "clear")
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		flag, output string
		want         string
		wantErr      bool
	}{
		{"", "", "svg", false},
		{"", "line2.PNG", "png", false},
		{"", "-", "svg", false},
		{"pdf", "line2.svg", "pdf", false},
		{"", "line2.gif", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.flag, tt.output)
		if (err != nil) != tt.wantErr || string(got) != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, %v; want %q", tt.flag, tt.output, got, err, tt.want)
		}
	}
}

func TestParseStation(t *testing.T) {
	s, err := parseStation("gangnam:Gangnam Station")
	if err != nil || s.ID != "gangnam" || s.Name != "Gangnam Station" {
		t.Errorf("parseStation() = %+v, %v", s, err)
	}
	if s, _ := parseStation("yeoksam"); s.Name != "" {
		t.Errorf("parseStation() without name = %+v", s)
	}
	if _, err := parseStation(":Nameless"); err == nil {
		t.Error("parseStation() should reject an empty id")
	}
}

func TestStationPicker(t *testing.T) {
	l, err := line.New("2", "Line 2", "", line.NewStation("a", "A"), line.NewStation("c", "C"), 10)
	if err != nil {
		t.Fatal(err)
	}

	m := NewStationPicker(l)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if next.(PickerModel).Selected != nil {
		t.Error("stations of a single-section line should not be selectable")
	}

	if err := l.AddSection(line.NewStation("a", ""), line.NewStation("b", "B"), 3); err != nil {
		t.Fatal(err)
	}
	m = NewStationPicker(l)
	var model tea.Model = m
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	pm := model.(PickerModel)
	if pm.Selected == nil || pm.Selected.ID != "b" {
		t.Fatalf("Selected = %+v, want station b", pm.Selected)
	}
	if cmd == nil {
		t.Error("selecting should quit the picker")
	}
	if !strings.Contains(pm.View(), "up terminus") {
		t.Errorf("View() should mark termini:\n%s", pm.View())
	}
}

func TestLineListTable(t *testing.T) {
	storeURL := testEnv(t)

	out := mustRun(t, storeURL, "line", "list")
	if !strings.Contains(out, "No lines yet") {
		t.Errorf("empty list output:\n%s", out)
	}

	createLine2(t, storeURL)
	out = mustRun(t, storeURL, "line", "list")
	for _, want := range []string{"Line 2", "green", "Gangnam → Seolleung"} {
		if !strings.Contains(out, want) {
			t.Errorf("line list output missing %q:\n%s", want, out)
		}
	}
}

func TestCompleteLineIDs(t *testing.T) {
	storeURL := testEnv(t)
	createLine2(t, storeURL)
	mustRun(t, storeURL, "line", "create", "20", "--up", "a", "--down", "b", "--distance", "1")
	mustRun(t, storeURL, "line", "create", "9", "--up", "a", "--down", "b", "--distance", "1")

	c := New(io.Discard, LogInfo)
	c.storeURL = storeURL
	cmd := c.lineShowCommand()

	got, directive := c.completeLineIDs(cmd, nil, "2")
	sort.Strings(got)
	if want := []string{"2\tLine 2", "20\t20"}; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("completeLineIDs() = %q, want %q", got, want)
	}
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want NoFileComp", directive)
	}

	if got, _ := c.completeLineIDs(cmd, []string{"2"}, ""); len(got) != 0 {
		t.Errorf("only the first argument is a line: got %q", got)
	}
}

func TestCompletionScript(t *testing.T) {
	testEnv(t)
	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"completion", "bash"})
	root.SetOut(&out)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "subway") {
		t.Errorf("bash completion script does not mention subway:\n%.200s", out.String())
	}
}

package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

// writeProject creates files (slash-separated keys) under a fresh temp dir.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for key, content := range files {
		path := filepath.Join(root, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", key, err)
		}
	}
	return root
}

// sampleProject mirrors a small game codebase with a broken file and a cache dir.
func sampleProject(t *testing.T) string {
	return writeProject(t, map[string]string{
		"main.py":                     "import engine.core\nfrom utils.helpers import clamp, lerp\n",
		"engine/__init__.py":          "",
		"engine/core.py":              "from utils.helpers import clamp\nimport os\n",
		"utils/helpers.py":            "def clamp(x):\n    return x\n",
		"broken.py":                   "def oops(:\n",
		"__pycache__/main.cpython.py": "import engine.core\n",
		"notes.txt":                   "import main\n",
	})
}

func TestAnalyzer_New(t *testing.T) {
	analyzer := NewAnalyzer(Options{})

	if analyzer == nil {
		t.Fatal("NewAnalyzer returned nil")
	}
	if analyzer.parser == nil {
		t.Error("Analyzer.parser is nil")
	}
	if analyzer.logger == nil {
		t.Error("Analyzer.logger is nil")
	}
	if !reflect.DeepEqual(analyzer.opts.Extensions, []string{".py"}) {
		t.Errorf("expected default extensions [.py], got: %v", analyzer.opts.Extensions)
	}
}

func TestAnalyzer_WithLogger(t *testing.T) {
	analyzer := NewAnalyzer(Options{})

	customLogger := logger.NewSilentLogger()
	newAnalyzer := analyzer.WithLogger(customLogger)

	if newAnalyzer.logger != customLogger {
		t.Error("WithLogger did not set custom logger")
	}
	if analyzer.logger == customLogger {
		t.Error("WithLogger modified the receiver")
	}
}

func TestAnalyzer_AnalyzeWithContext_Cancellation(t *testing.T) {
	analyzer := NewAnalyzer(Options{}).WithLogger(logger.NewSilentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analyzer.AnalyzeWithContext(ctx, sampleProject(t))
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestAnalyzer_AnalyzeWithContext_Timeout(t *testing.T) {
	analyzer := NewAnalyzer(Options{}).WithLogger(logger.NewSilentLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	time.Sleep(2 * time.Millisecond)

	_, err := analyzer.AnalyzeWithContext(ctx, sampleProject(t))
	if err == nil {
		t.Error("expected error from timed out context")
	}
}

func TestAnalyzer_Analyze_NonexistentPath(t *testing.T) {
	analyzer := NewAnalyzer(Options{}).WithLogger(logger.NewSilentLogger())

	_, err := analyzer.Analyze("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Error("expected error for nonexistent path")
	}
}

func TestAnalyzer_Analyze_WithTestData(t *testing.T) {
	root := sampleProject(t)
	analyzer := NewAnalyzer(Options{}).WithLogger(logger.NewSilentLogger())

	project, err := analyzer.Analyze(root)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	wantKeys := []string{"broken.py", "engine/__init__.py", "engine/core.py", "main.py", "utils/helpers.py"}
	if got := project.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Fatalf("expected keys %v, got: %v", wantKeys, got)
	}

	if project.Skipped != 1 {
		t.Errorf("expected 1 skipped file, got: %d", project.Skipped)
	}

	broken := project.File("broken.py")
	if broken == nil || broken.Parsed || len(broken.Modules) != 0 {
		t.Errorf("expected broken.py to be discovered but unparsed, got: %+v", broken)
	}

	main := project.File("main.py")
	if main == nil || !main.Parsed {
		t.Fatalf("expected main.py to be parsed, got: %+v", main)
	}
	if !reflect.DeepEqual(main.Modules, []string{"engine.core"}) {
		t.Errorf("unexpected main.py modules: %v", main.Modules)
	}
	wantFns := []FunctionImport{{"utils.helpers", "clamp"}, {"utils.helpers", "lerp"}}
	if !reflect.DeepEqual(main.Functions, wantFns) {
		t.Errorf("unexpected main.py functions: %v", main.Functions)
	}
	if main.Path != filepath.Join(root, "main.py") {
		t.Errorf("unexpected main.py path: %s", main.Path)
	}
}

func TestAnalyzer_Analyze_CustomExtensionsAndIgnores(t *testing.T) {
	root := writeProject(t, map[string]string{
		"app.py":            "import stubs\n",
		"stubs.pyi":         "",
		"gen/schema_pb2.py": "",
	})

	analyzer := NewAnalyzer(Options{
		Extensions: []string{".py", ".pyi"},
		Walk:       filesystem.WalkOptions{IgnorePatterns: []string{"*_pb2.py"}},
	}).WithLogger(logger.NewSilentLogger())

	project, err := analyzer.Analyze(root)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	want := []string{"app.py", "stubs.pyi"}
	if got := project.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected keys %v, got: %v", want, got)
	}
}

func TestAnalyzer_Analyze_OversizedFileIsSkipped(t *testing.T) {
	root := writeProject(t, map[string]string{
		"small.py": "import a\n",
		"large.py": "import a, b, c, d, e, f, g\n",
	})

	analyzer := NewAnalyzer(Options{MaxFileSize: 12}).WithLogger(logger.NewSilentLogger())

	project, err := analyzer.Analyze(root)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if project.Skipped != 1 {
		t.Errorf("expected 1 skipped file, got: %d", project.Skipped)
	}
	if f := project.File("large.py"); f == nil || f.Parsed {
		t.Errorf("expected large.py unparsed, got: %+v", f)
	}
}

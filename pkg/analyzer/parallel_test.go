package analyzer

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"testing"
	"time"

	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

func TestAnalyzer_AnalyzeParallel(t *testing.T) {
	root := sampleProject(t)
	analyzer := NewAnalyzer(Options{}).WithLogger(logger.NewSilentLogger())

	sequential, err := analyzer.AnalyzeWithContext(context.Background(), root)
	if err != nil {
		t.Fatalf("AnalyzeWithContext failed: %v", err)
	}

	for _, workers := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			parallel, err := analyzer.AnalyzeParallel(context.Background(), root, workers)
			if err != nil {
				t.Fatalf("AnalyzeParallel failed: %v", err)
			}
			if !reflect.DeepEqual(parallel, sequential) {
				t.Errorf("parallel result differs from sequential\nparallel:   %+v\nsequential: %+v", parallel, sequential)
			}
		})
	}
}

func TestAnalyzer_AnalyzeParallel_ManyFiles(t *testing.T) {
	files := make(map[string]string)
	for i := 0; i < 50; i++ {
		files[fmt.Sprintf("pkg%d/mod%d.py", i%5, i)] = fmt.Sprintf("import pkg%d.mod%d\n", (i+1)%5, (i+1)%50)
	}
	root := writeProject(t, files)

	analyzer := NewAnalyzer(Options{}).WithLogger(logger.NewSilentLogger())
	project, err := analyzer.AnalyzeParallel(context.Background(), root, 4)
	if err != nil {
		t.Fatalf("AnalyzeParallel failed: %v", err)
	}

	if len(project.Files) != 50 {
		t.Fatalf("expected 50 files, got: %d", len(project.Files))
	}
	for i := 1; i < len(project.Files); i++ {
		if project.Files[i-1].Key >= project.Files[i].Key {
			t.Errorf("files not sorted: %s before %s", project.Files[i-1].Key, project.Files[i].Key)
		}
	}
	for _, f := range project.Files {
		if !f.Parsed || len(f.Modules) != 1 {
			t.Errorf("expected one module import in %s, got: %+v", f.Key, f)
		}
	}
}

func TestAnalyzer_AnalyzeParallel_DefaultWorkers(t *testing.T) {
	if runtime.NumCPU() < 1 {
		t.Skip("no CPUs reported")
	}
	analyzer := NewAnalyzer(Options{}).WithLogger(logger.NewSilentLogger())

	project, err := analyzer.AnalyzeParallel(context.Background(), sampleProject(t), 0)
	if err != nil {
		t.Fatalf("AnalyzeParallel failed: %v", err)
	}
	if len(project.Files) != 5 {
		t.Errorf("expected 5 files, got: %d", len(project.Files))
	}
}

func TestAnalyzer_AnalyzeParallel_Cancellation(t *testing.T) {
	analyzer := NewAnalyzer(Options{}).WithLogger(logger.NewSilentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analyzer.AnalyzeParallel(ctx, sampleProject(t), 2)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestAnalyzer_AnalyzeParallel_Timeout(t *testing.T) {
	analyzer := NewAnalyzer(Options{}).WithLogger(logger.NewSilentLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()
	time.Sleep(2 * time.Millisecond)

	if _, err := analyzer.AnalyzeParallel(ctx, sampleProject(t), 2); err == nil {
		t.Error("expected error from timed out context")
	}
}

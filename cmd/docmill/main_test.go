package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docmill/internal/batch"
	"docmill/internal/testsupport"
)

// runCLI executes the root command in-process and captures its output.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeTestConfig persists a minimal config rooted in a fresh temp tree and
// returns the config path plus the input and output directories.
func writeTestConfig(t *testing.T) (configPath, inputDir, outputDir string) {
	t.Helper()

	base := t.TempDir()
	inputDir = filepath.Join(base, "input")
	outputDir = filepath.Join(base, "output")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatalf("mkdir input: %v", err)
	}

	configPath = filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
input_dir = %q
output_dir = %q
log_dir = %q
`, inputDir, outputDir, filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, inputDir, outputDir
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestFormatsCommandListsExtensions(t *testing.T) {
	stdout, _, err := runCLI(t, "formats")
	if err != nil {
		t.Fatalf("formats: %v", err)
	}
	for _, ext := range []string{".docx", ".xlsx", ".xls"} {
		requireContains(t, stdout, ext)
	}
}

func TestFormatsCommandJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "formats", "--json")
	if err != nil {
		t.Fatalf("formats --json: %v", err)
	}

	var formats []struct {
		Extension string `json:"extension"`
		Kind      string `json:"kind"`
		Output    string `json:"output"`
	}
	if err := json.Unmarshal([]byte(stdout), &formats); err != nil {
		t.Fatalf("decode formats: %v\n%s", err, stdout)
	}
	if len(formats) != 3 {
		t.Fatalf("expected 3 formats, got %d", len(formats))
	}
	if formats[0].Extension != ".docx" || formats[0].Kind != "word" {
		t.Fatalf("unexpected first format: %+v", formats[0])
	}
}

func TestConvertMixedTree(t *testing.T) {
	configPath, inputDir, outputDir := writeTestConfig(t)

	testsupport.WriteWordFile(t, filepath.Join(inputDir, "a.docx"), "alpha")
	testsupport.WriteWordFile(t, filepath.Join(inputDir, "b.docx"), "beta")
	testsupport.WriteWordFile(t, filepath.Join(inputDir, "nested", "c.docx"), "gamma")
	testsupport.WriteFile(t, filepath.Join(inputDir, "broken.xlsx"), 256)
	testsupport.WriteFile(t, filepath.Join(inputDir, "notes.txt"), 16)

	stdout, _, err := runCLI(t, "--config", configPath, "convert", "--json", "--no-progress")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	var summary batch.Summary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, stdout)
	}
	if summary.Total != 4 {
		t.Fatalf("expected total 4 (txt excluded at discovery), got %d", summary.Total)
	}
	if summary.Succeeded != 3 {
		t.Fatalf("expected 3 successes, got %d", summary.Succeeded)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected 1 failure, got %d", summary.Failed)
	}
	if len(summary.Failures) != 1 || !strings.HasSuffix(summary.Failures[0].Source, "broken.xlsx") {
		t.Fatalf("unexpected failures: %+v", summary.Failures)
	}
	if summary.Failures[0].Reason != "unreadable_source" {
		t.Fatalf("expected unreadable_source, got %q", summary.Failures[0].Reason)
	}

	for _, rel := range []string{"a.pdf", "b.pdf", filepath.Join("nested", "c.pdf")} {
		if _, err := os.Stat(filepath.Join(outputDir, rel)); err != nil {
			t.Fatalf("expected published PDF %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outputDir, "broken.pdf")); !os.IsNotExist(err) {
		t.Fatalf("failed conversion must leave no output, stat err: %v", err)
	}
}

func TestConvertTypeFilter(t *testing.T) {
	configPath, inputDir, outputDir := writeTestConfig(t)

	testsupport.WriteWordFile(t, filepath.Join(inputDir, "doc.docx"), "text")
	testsupport.WriteWorkbookFile(t, filepath.Join(inputDir, "book.xlsx"), testsupport.SheetFixture{
		Name: "Sheet1",
		Rows: [][]string{{"h"}, {"v"}},
	})

	stdout, _, err := runCLI(t, "--config", configPath, "convert", "--type", "docx", "--json", "--no-progress")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	var summary batch.Summary
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, stdout)
	}
	if summary.Total != 1 || summary.Succeeded != 1 {
		t.Fatalf("expected exactly the docx converted, got %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "book.pdf")); !os.IsNotExist(err) {
		t.Fatalf("filtered workbook must not convert, stat err: %v", err)
	}
}

func TestConvertMissingInputFailsPreflight(t *testing.T) {
	configPath, inputDir, _ := writeTestConfig(t)
	if err := os.RemoveAll(inputDir); err != nil {
		t.Fatalf("remove input: %v", err)
	}

	_, _, err := runCLI(t, "--config", configPath, "convert", "--json", "--no-progress")
	if err == nil {
		t.Fatal("expected a directory-level failure for a missing input root")
	}
	requireContains(t, err.Error(), "preflight")
}

func TestConvertRequiresRoots(t *testing.T) {
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := "[paths]\nlog_dir = " + fmt.Sprintf("%q", filepath.Join(base, "logs")) + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := runCLI(t, "--config", configPath, "convert")
	if err == nil || !strings.Contains(err.Error(), "input") {
		t.Fatalf("expected missing-input error, got %v", err)
	}
}

func TestWatchMissingInputFailsPreflight(t *testing.T) {
	configPath, inputDir, _ := writeTestConfig(t)
	if err := os.RemoveAll(inputDir); err != nil {
		t.Fatalf("remove input: %v", err)
	}

	_, _, err := runCLI(t, "--config", configPath, "watch")
	if err == nil {
		t.Fatal("expected watch startup to fail for a missing input root")
	}
	requireContains(t, err.Error(), "preflight")
}

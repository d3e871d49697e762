package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docxhtml/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func runCmd(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(append(args, "--log-level", "error"), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"help", []string{"--help"}},
		{"unknown command", []string{"convert", "x.docx"}},
		{"missing input", []string{"decode"}},
		{"too many inputs", []string{"decode", "a.docx", "b.docx"}},
		{"bad flag", []string{"encode", "--no-such-flag", "a.html"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 2, run(tt.args, &stdout, &stderr))
			assert.Empty(t, stdout.String())
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestRun_BadLogLevel(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.html", "<p>x</p>")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run([]string{"encode", in, "--log-level", "loud"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "log level")
}

func TestRun_EncodeDecode(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "report.html", "<h1>Report</h1><p>Body text</p>")
	footer := writeFile(t, dir, "footer.html", "<p>Page {page}</p>")

	code, _, stderr := runCmd("encode", in, "--footer", footer, "--footer-height", "2", "--title", "Annual")
	require.Equal(t, 0, code, stderr)

	pkg := filepath.Join(dir, "report.docx")
	require.FileExists(t, pkg)

	code, stdout, stderr := runCmd("decode", pkg)
	require.Equal(t, 0, code, stderr)

	var content model.DocumentContent
	require.NoError(t, json.Unmarshal([]byte(stdout), &content))
	assert.Contains(t, content.HTML, "Report</h1>")
	assert.Equal(t, "Annual", content.Metadata.Title)
	require.NotNil(t, content.Footer)
	assert.Contains(t, content.Footer.HTML, "{page}")
	assert.Equal(t, 2.0, content.Footer.Height)

	htmlOut := filepath.Join(dir, "out.html")
	code, stdout, stderr = runCmd("decode", pkg, "-o", htmlOut)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)
	data, err := os.ReadFile(htmlOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<div class="document-content"`)
}

func TestRun_EncodeJSONRequest(t *testing.T) {
	dir := t.TempDir()
	req := `{"html":"<p>From JSON</p>","metadata":{"title":"Request","author":"Ops"}}`
	in := writeFile(t, dir, "request.json", req)
	out := filepath.Join(dir, "custom.docx")

	code, _, stderr := runCmd("encode", in, "-o", out, "--author", "Override")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runCmd("decode", out)
	require.Equal(t, 0, code, stderr)

	var content model.DocumentContent
	require.NoError(t, json.Unmarshal([]byte(stdout), &content))
	assert.Contains(t, content.HTML, "From JSON")
	assert.Equal(t, "Request", content.Metadata.Title)
	assert.Equal(t, "Override", content.Metadata.Author)
}

func TestRun_EnvironmentConfig(t *testing.T) {
	t.Setenv("DOCXHTML_AUTHOR", "Env Author")
	dir := t.TempDir()
	in := writeFile(t, dir, "doc.html", "<p>x</p>")

	code, _, stderr := runCmd("encode", in)
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runCmd("decode", filepath.Join(dir, "doc.docx"))
	require.Equal(t, 0, code, stderr)
	var content model.DocumentContent
	require.NoError(t, json.Unmarshal([]byte(stdout), &content))
	assert.Equal(t, "Env Author", content.Metadata.Author)
}

func TestRun_InputErrors(t *testing.T) {
	dir := t.TempDir()
	text := writeFile(t, dir, "notes.txt", "just some words")
	blank := writeFile(t, dir, "blank.json", `{"html":"   "}`)
	fake := writeFile(t, dir, "fake.docx", "<p>not a package</p>")

	code, _, _ := runCmd("decode", fake)
	assert.Equal(t, 1, code, "HTML posing as a package")

	code, _, _ = runCmd("encode", text)
	assert.Equal(t, 1, code, "plain text is not encodable")

	code, _, _ = runCmd("encode", blank)
	assert.Equal(t, 1, code, "blank HTML is rejected")
	assert.NoFileExists(t, filepath.Join(dir, "blank.docx"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errUnsupportedInput))
	assert.Equal(t, 3, exitCode(os.ErrNotExist))
}

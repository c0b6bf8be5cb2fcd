package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/rechord/internal/config"
	"github.com/google/go-cmp/cmp"
)

const testSong = "Test Song\nTraditional\n\n[C]Hello [G]world\nsecond line\n"

func writeSong(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(testSong), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestSplitArgs(t *testing.T) {
	a := splitArgs([]string{"a.conf", "one.txt", "two.cho", "book.PDF", "b.conf", "site.html"})
	want := arguments{
		configs: []string{"a.conf", "b.conf"},
		outputs: []string{"book.PDF", "site.html"},
		songs:   []string{"one.txt", "two.cho"},
	}
	if diff := cmp.Diff(want, a, cmp.AllowUnexported(arguments{})); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultPath(t *testing.T) {
	cases := []struct {
		songs []string
		ext   string
		want  string
	}{
		{[]string{"dir/amazing.txt"}, ".pdf", "dir/amazing.pdf"},
		{[]string{"amazing.txt", "grace.cho"}, ".html", "amazing.html"},
		{[]string{"a.txt", "b.txt"}, ".pdf", "out.pdf"},
		{[]string{"a.md"}, ".pdf", "out.pdf"},
	}
	for _, tc := range cases {
		if got := defaultPath(tc.songs, tc.ext); got != tc.want {
			t.Errorf("defaultPath(%v): expected %q, got %q", tc.songs, tc.want, got)
		}
	}
}

func TestOutputPath(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	withOutput := config.NewFile()
	withOutput.Set("output", "conf.pdf")

	cases := []struct {
		name   string
		flag   string
		args   arguments
		file   *config.File
		tty    bool
		expect string
	}{
		{"flag wins", "x.pdf", arguments{outputs: []string{"y.pdf"}}, withOutput, false, "x.pdf"},
		{"redirected stdout", "", arguments{outputs: []string{"y.pdf"}}, withOutput, false, "-"},
		{"last argument", "", arguments{outputs: []string{"y.pdf", "z.html"}}, withOutput, true, "z.html"},
		{"config option", "", arguments{}, withOutput, true, "conf.pdf"},
		{"derived later", "", arguments{}, config.NewFile(), true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := outputPath(tc.flag, tc.args, tc.file, tc.tty, log); got != tc.expect {
				t.Errorf("expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestRun_WritesPDFToStdout(t *testing.T) {
	dir := t.TempDir()
	song := writeSong(t, dir, "song.txt")

	var stdout, stderr bytes.Buffer
	env := environment{stdout: &stdout, stderr: &stderr, stdinTTY: true, home: dir}
	if err := run([]string{"-layout", "2up", song}, env); err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, stderr.String())
	}
	if !bytes.HasPrefix(stdout.Bytes(), []byte("%PDF")) {
		t.Errorf("expected PDF on stdout, got %d bytes", stdout.Len())
	}
}

func TestRun_ConfigFromStdinAndFile(t *testing.T) {
	dir := t.TempDir()
	song := writeSong(t, dir, "song.txt")
	conf := filepath.Join(dir, "book.conf")
	if err := os.WriteFile(conf, []byte("text-size: 10\nformat: pdf\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var stdout, stderr bytes.Buffer
	env := environment{
		stdin:  strings.NewReader("format: html\n"),
		stdout: &stdout,
		stderr: &stderr,
		home:   dir,
	}
	if err := run([]string{conf, song}, env); err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, stderr.String())
	}
	if !strings.Contains(stdout.String(), "<svg") {
		t.Errorf("expected stdin config to select html, got %q", stdout.String())
	}
}

func TestRun_OutputArgument(t *testing.T) {
	dir := t.TempDir()
	song := writeSong(t, dir, "song.txt")
	out := filepath.Join(dir, "book.html")

	var stdout, stderr bytes.Buffer
	env := environment{stdout: &stdout, stderr: &stderr, stdinTTY: true, stdoutTTY: true, home: dir}
	if err := run([]string{song, out}, env); err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if !strings.Contains(string(data), "Test Song") {
		t.Error("expected html output to contain the song title")
	}
	if stdout.Len() != 0 {
		t.Errorf("expected nothing on stdout, got %d bytes", stdout.Len())
	}
}

func TestRun_DerivedOutputName(t *testing.T) {
	dir := t.TempDir()
	song := writeSong(t, dir, "hymn.txt")

	var stderr bytes.Buffer
	env := environment{stdout: &bytes.Buffer{}, stderr: &stderr, stdinTTY: true, stdoutTTY: true, home: dir}
	if err := run([]string{song}, env); err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "hymn.pdf")); err != nil {
		t.Errorf("expected hymn.pdf next to the input: %v", err)
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	song := writeSong(t, dir, "song.txt")

	cases := []struct {
		name string
		args []string
	}{
		{"no songs", []string{}},
		{"missing config", []string{filepath.Join(dir, "nope.conf"), song}},
		{"missing song", []string{filepath.Join(dir, "nope.txt")}},
		{"bad layout", []string{"-layout", "poster", song}},
		{"unsupported song", []string{filepath.Join(dir, "song.xyz")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := environment{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}, stdinTTY: true, home: dir}
			if err := run(tc.args, env); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRun_ListFonts(t *testing.T) {
	var stdout bytes.Buffer
	env := environment{stdout: &stdout, stderr: &bytes.Buffer{}, stdinTTY: true}
	if err := run([]string{"-fonts"}, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "regular") {
		t.Errorf("expected built-in font list, got %q", stdout.String())
	}
}

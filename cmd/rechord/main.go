// Command rechord typesets song files into a PDF or HTML songbook.
//
// Arguments ending in .conf are typesetting config files, a trailing .pdf or
// .html argument names the output, and everything else is a song. Options
// are read from ~/.rechord.conf, ./rechord.conf, the .conf arguments and
// redirected stdin, in that order, then from flags.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/rechord/internal/config"
	"github.com/dgallion1/rechord/internal/fonts"
	"github.com/dgallion1/rechord/internal/songbook"
	"github.com/dgallion1/rechord/internal/source"
	"golang.org/x/term"
)

func main() {
	env := environment{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdinTTY:  term.IsTerminal(int(os.Stdin.Fd())),
		stdoutTTY: term.IsTerminal(int(os.Stdout.Fd())),
		home:      os.Getenv("HOME"),
	}
	if err := run(os.Args[1:], env); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "rechord:", err)
		}
		os.Exit(1)
	}
}

// environment is the process state run depends on.
type environment struct {
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	stdinTTY  bool
	stdoutTTY bool
	home      string
}

// arguments splits the positional arguments by extension.
type arguments struct {
	configs []string
	outputs []string
	songs   []string
}

func splitArgs(args []string) arguments {
	var a arguments
	for _, arg := range args {
		switch strings.ToLower(filepath.Ext(arg)) {
		case ".conf":
			a.configs = append(a.configs, arg)
		case ".pdf", ".html":
			a.outputs = append(a.outputs, arg)
		default:
			a.songs = append(a.songs, arg)
		}
	}
	return a
}

func run(args []string, env environment) error {
	fs := flag.NewFlagSet("rechord", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	output := fs.String("o", "", "output file, or - for stdout")
	index := fs.String("index", "", "table of contents: none, front or back")
	layoutMode := fs.String("layout", "", "presentation: single, 2up or booklet")
	format := fs.String("format", "", "output format: pdf or html")
	overflow := fs.String("overflow", "", "oversized content: reject or force")
	verbose := fs.Bool("v", false, "log each song")
	listFonts := fs.Bool("fonts", false, "list built-in font names and exit")
	fs.Usage = func() {
		fmt.Fprintln(env.stderr, "usage: rechord [flags] [file.conf ...] song ... [out.pdf]")
		fmt.Fprintln(env.stderr, "song formats:", strings.Join(source.Extensions(), " "))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(env.stderr, &slog.HandlerOptions{Level: level}))

	if *listFonts {
		fmt.Fprintln(env.stdout, strings.Join(fonts.Builtin(), "\n"))
		return nil
	}

	a := splitArgs(fs.Args())
	if len(a.songs) == 0 {
		fs.Usage()
		return fmt.Errorf("no song files given")
	}

	file, err := loadConfig(a.configs, env)
	if err != nil {
		return err
	}
	for key, value := range map[string]string{
		"index-location": *index,
		"layout":         *layoutMode,
		"format":         *format,
		"overflow":       *overflow,
	} {
		if value != "" {
			file.Set(key, value)
		}
	}

	path := outputPath(*output, a, file, env.stdoutTTY, log)
	if !file.Has("format") && strings.EqualFold(filepath.Ext(path), ".html") {
		file.Set("format", config.FormatHTML)
	}
	if err := file.CheckKeys(); err != nil {
		log.Warn("ignoring options", "error", err)
	}
	ts, err := file.Typesetting()
	if err != nil {
		return err
	}
	if path == "" && ts.Format == config.FormatHTML {
		path = defaultPath(a.songs, ".html")
	}

	songs, err := songbook.LoadSongs(a.songs, log)
	if err != nil {
		return err
	}
	compiler, err := songbook.New(ts, log)
	if err != nil {
		return err
	}
	defer compiler.Close()

	var buf bytes.Buffer
	b, err := compiler.Compile(&buf, songs)
	if err != nil {
		return err
	}
	for _, reason := range b.Skipped {
		log.Warn("skipped song", "reason", reason)
	}

	if path == "-" {
		_, err = env.stdout.Write(buf.Bytes())
		return err
	}
	if path == "" {
		path = defaultPath(a.songs, ".pdf")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("wrote songbook", "path", path, "songs", b.Songs, "pages", len(b.Pages))
	return nil
}

// loadConfig reads the option sources from lowest to highest priority.
func loadConfig(paths []string, env environment) (*config.File, error) {
	file := config.NewFile()
	if env.home != "" {
		if err := file.LoadPath(filepath.Join(env.home, ".rechord.conf")); err != nil {
			return nil, err
		}
	}
	if err := file.LoadPath("rechord.conf"); err != nil {
		return nil, err
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := file.LoadPath(path); err != nil {
			return nil, err
		}
	}
	if !env.stdinTTY && env.stdin != nil {
		if err := file.Load(env.stdin); err != nil {
			return nil, err
		}
	}
	return file, nil
}

// outputPath picks the destination: the -o flag, stdout when it is
// redirected, the last output argument, the "output" option, then nothing
// so the caller derives a name from the inputs. "-" means stdout.
func outputPath(flagValue string, a arguments, file *config.File, stdoutTTY bool, log *slog.Logger) string {
	if flagValue != "" {
		return flagValue
	}
	if !stdoutTTY {
		return "-"
	}
	if n := len(a.outputs); n > 0 {
		for _, ignored := range a.outputs[:n-1] {
			log.Warn("ignoring output argument", "path", ignored)
		}
		return a.outputs[n-1]
	}
	return file.Text("output", "")
}

// defaultPath names the output after a single .txt input, else "out".
func defaultPath(songs []string, ext string) string {
	var texts []string
	for _, s := range songs {
		if strings.EqualFold(filepath.Ext(s), ".txt") {
			texts = append(texts, s)
		}
	}
	if len(texts) == 1 {
		return strings.TrimSuffix(texts[0], filepath.Ext(texts[0])) + ext
	}
	return "out" + ext
}

package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

func p(noHelp bool, msg string, args ...interface{}) {
	if !noHelp {
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		fmt.Printf(msg, args...)
	}
}

func exit(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}

const intro = `
    Welcome to kdump!

    This short interactive prompt will guide through setting up a configuration.

    If you are in this interactive prompt but do not want to be, pass --no-config
    (-Z) to any other kdump command to skip loading a config file entirely.

    kdump configurations are located by default in your user configuration directory,
    but this can be changed with the --config-path flag.

`

type scanner struct {
	s *bufio.Scanner

	mu    sync.Mutex
	cond  *sync.Cond
	lines []string
}

func newScanner() *scanner {
	s := &scanner{
		s: bufio.NewScanner(os.Stdin),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.scan()
	return s
}

func (s *scanner) scan() {
	last := time.Now()
	for s.s.Scan() {
		line := s.s.Text()
		if len(line) == 0 && time.Since(last) < 50*time.Millisecond {
			last = time.Now()
			continue
		}
		last = time.Now()

		s.mu.Lock()
		s.lines = append(s.lines, line)
		if len(s.lines) > 10 {
			exit("too much unhandled input, exiting")
		}
		s.mu.Unlock()
		s.cond.Broadcast()
	}
	if s.s.Err() != nil {
		exit("scanner error: %v, exiting", s.s.Err())
	}
	exit("scanner received EOF, exiting")
}

func (s *scanner) line(prompt string) string {
	fmt.Print(prompt + " ")

	done := make(chan struct{})
	var line string
	go func() {
		defer close(done)
		s.mu.Lock()
		defer s.mu.Unlock()

		for len(s.lines) == 0 {
			s.cond.Wait()
		}
		line = s.lines[0]
		s.lines = s.lines[1:]
	}()

	<-done
	return line
}

// Wizard walks through an interactive prompt to create a configuration file.
func Wizard(noHelp bool) {
	p(noHelp, intro)

	s := newScanner()
	cfg := defaults()

	p(noHelp, "\n    What should the default output format be, \"table\" or \"json\"?\n\n")
	for {
		l := strings.ToLower(strings.TrimSpace(s.line("default format [table]?")))
		if l == "" {
			break
		}
		if l == "table" || l == "json" {
			cfg.DefaultFormat = l
			break
		}
		fmt.Printf("unrecognized format %q, enter \"table\" or \"json\"\n", l)
	}

	p(noHelp, "\n    What strftime pattern should timestamps be printed with?\n\n")
	if l := strings.TrimSpace(s.line("timestamp format [%F %T]?")); l != "" {
		cfg.TimestampFormat = l
	}

	p(noHelp, "\n    How many segment files should be dumped concurrently?\n\n")
	for {
		l := strings.TrimSpace(s.line("concurrency [4]?"))
		if l == "" {
			break
		}
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			fmt.Printf("unrecognized concurrency %q, enter a positive integer\n", l)
			continue
		}
		cfg.Concurrency = int32(n)
		break
	}

	write(&cfg, s, noHelp)
}

func write(cfg *Cfg, s *scanner, noHelp bool) {
	p(noHelp, `
###

    Configuration complete, please specify the filename to save this under.

`)

	var raw bytes.Buffer
	toml.NewEncoder(&raw).Encode(cfg)

	cfgDir, err := os.UserConfigDir()
	if err == nil {
		cfgDir = filepath.Join(cfgDir, "kdump")
	}
	if envDir, ok := os.LookupEnv("KDUMP_CONFIG_DIR"); ok {
		cfgDir = envDir
	}
	fname := s.line("filename [config]?")
	if fname == "" {
		fname = "config"
	}
	if !strings.HasSuffix(fname, ".toml") {
		fname += ".toml"
	}
	cfgPath := filepath.Join(cfgDir, fname)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		exit("unable to create configuration directory at %s: %v", cfgDir, err)
	}

	if err := writeFile(cfgPath, raw.Bytes(), 0666); err != nil {
		exit("unable to create configuration at %s: %v", cfgPath, err)
	}

	fmt.Printf("\n    Successfully created configuration at %s!\n", cfgPath)
}

// This is os.WriteFile, but with O_EXCL and not O_TRUNC.
func writeFile(name string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if err1 := f.Close(); err1 != nil && err == nil {
		err = err1
	}
	return err
}

// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package uci

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type EngineConfig struct {
	Name string `yaml:"name"`
	Cmd  string `yaml:"cmd"`
	Dir  string `yaml:"dir"`
	Arg  string `yaml:"arg"`

	Protocol string `yaml:"protocol"`

	Stderr string `yaml:"stderr"`

	InitStr string `yaml:"init-string"`

	Options map[string]string `yaml:"options"`
}

var (
	ErrReadTimeout   = errors.New("engine: read i/o timeout")
	ErrEngineClosed  = errors.New("engine: process is not running")
	ErrSearchActive  = errors.New("engine: a search is already in progress")
	ErrNotUCIEngine  = errors.New("engine: only the uci protocol is supported")
	handshakeTimeout = 5 * time.Second
)

// StartEngine starts the engine process described by the config and brings
// it to a state where it is ready to accept positions.
func StartEngine(config EngineConfig) (*Engine, error) {
	if config.Protocol == "" {
		config.Protocol = "uci"
	}

	if config.Protocol != "uci" {
		return nil, ErrNotUCIEngine
	}

	if config.Name == "" {
		config.Name = config.Cmd
	}

	var engine Engine
	engine.config = config
	engine.protocol = config.Protocol

	process := exec.Command(config.Cmd, strings.Fields(config.Arg)...)
	process.Dir = config.Dir

	stdin, err := process.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := process.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if config.Stderr != "" {
		file, err := os.Create(config.Stderr)
		if err != nil {
			return nil, err
		}

		process.Stderr = file
	}

	engine.Cmd = process

	if err := engine.Cmd.Start(); err != nil {
		return nil, fmt.Errorf("engine: starting %s: %w", config.Cmd, err)
	}

	engine.attach(stdin, stdout)

	if engine.config.InitStr != "" {
		if err := engine.Write(engine.config.InitStr); err != nil {
			return nil, err
		}
	}

	if err := engine.Initialize(); err != nil {
		_ = engine.Kill()
		return nil, err
	}

	if err := engine.SetOptions(); err != nil {
		_ = engine.Kill()
		return nil, err
	}

	if err := engine.NewGame(); err != nil {
		_ = engine.Kill()
		return nil, err
	}

	return &engine, nil
}

// Engine is a handle to a running UCI engine process. Only one search may
// be active on an Engine at a time.
type Engine struct {
	config EngineConfig

	*exec.Cmd

	protocol string

	writeMu sync.Mutex
	writer  *bufio.Writer
	reader  *bufio.Reader

	lines chan string

	mu     sync.Mutex
	search *search
	closed bool

	err error
}

// attach connects the engine to its input and output streams and starts
// the goroutine which forwards output lines to engine.lines.
func (engine *Engine) attach(stdin io.Writer, stdout io.Reader) {
	engine.writer = bufio.NewWriter(stdin)
	engine.reader = bufio.NewReader(stdout)
	engine.lines = make(chan string)

	go func() {
		for {
			line, err := engine.reader.ReadString('\n')
			if err != nil {
				engine.err = err
				close(engine.lines)
				return
			}

			line = strings.Trim(line, " \n\t\r")

			logrus.Debugf("(%s)> %s", engine.config.Name, line)
			engine.lines <- line
		}
	}()
}

// Name returns the display name of the engine.
func (engine *Engine) Name() string {
	return engine.config.Name
}

// NewGame prepares the engine for a new game of chess.
func (engine *Engine) NewGame() error {
	if err := engine.Write(engine.protocol + "newgame"); err != nil {
		return err
	}

	return engine.Synchronize()
}

// Initialize initializes the engine on startup.
func (engine *Engine) Initialize() error {
	if err := engine.Write(engine.protocol); err != nil {
		return err
	}

	_, err := engine.Await(engine.protocol+"ok", handshakeTimeout)
	return err
}

// SetOptions sends every option from the engine's configuration to it, in
// a stable order.
func (engine *Engine) SetOptions() error {
	names := make([]string, 0, len(engine.config.Options))
	for name := range engine.config.Options {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if err := engine.Write("setoption name %s value %s", name, engine.config.Options[name]); err != nil {
			return err
		}
	}

	return engine.Synchronize()
}

// Synchronize waits for the engine to complete some time consuming task
// and synchronizes the interface with it.
func (engine *Engine) Synchronize() error {
	if err := engine.Write("isready"); err != nil {
		return err
	}

	_, err := engine.Await("readyok", handshakeTimeout)
	return err
}

// Kill kills the engine.
func (engine *Engine) Kill() error {
	engine.mu.Lock()
	if engine.closed {
		engine.mu.Unlock()
		return nil
	}

	active := engine.search
	engine.closed = true
	engine.mu.Unlock()

	if active != nil {
		_ = active.Stop()
	}

	// the engine may already be gone, in which case it can't be asked to quit
	if err := engine.Write("quit"); err != nil {
		logrus.Debugf("(%s) quit: %v", engine.config.Name, err)
	}

	if engine.Cmd == nil || engine.Process == nil {
		return nil
	}

	if err := engine.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}

	_ = engine.Wait()
	return nil
}

// Await is a utility function which waits for a particular string from
// the engine with a fixed timeout.
func (engine *Engine) Await(pattern string, timeout time.Duration) (string, error) {
	regex := regexp.MustCompile(pattern)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			// timer ran out: wait timeout

			if engine.err != nil {
				return "", engine.err
			}

			return "", ErrReadTimeout

		case line, ok := <-engine.lines:
			if !ok {
				return "", ErrEngineClosed
			}

			if regex.MatchString(line) {
				// line is the expected line
				return line, nil
			}
		}
	}
}

// Write sends a command to the engine. It is safe for concurrent use.
func (engine *Engine) Write(format string, a ...any) error {
	logrus.Debugf("("+engine.config.Name+")< "+format, a...)

	engine.writeMu.Lock()
	defer engine.writeMu.Unlock()

	if _, err := fmt.Fprintf(engine.writer, format+"\n", a...); err != nil {
		return err
	}

	return engine.writer.Flush()
}

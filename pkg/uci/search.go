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
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Stream is a running search. Updates are delivered in the order the
// engine sent them and the channel is closed once the search is over.
type Stream interface {
	Updates() <-chan Info
	Stop() error
}

// search is the Stream implementation backed by an Engine.
type search struct {
	engine *Engine

	updates chan Info
	stopped chan struct{}
	done    chan struct{}

	stopOnce sync.Once
	stopErr  error

	bestmove string
}

func (s *search) Updates() <-chan Info {
	return s.updates
}

// Stop asks the engine to end the search and waits till it has sent its
// bestmove. It is safe to call Stop more than once, and after the search
// has already ended.
func (s *search) Stop() error {
	s.stopOnce.Do(func() {
		close(s.stopped)

		select {
		case <-s.done:
			// search already over, nothing to stop
			return
		default:
		}

		s.stopErr = s.engine.Write("stop")
	})

	if s.stopErr != nil {
		return s.stopErr
	}

	select {
	case <-s.done:
		return nil
	case <-time.After(handshakeTimeout):
		return ErrReadTimeout
	}
}

// Stream starts a search of the given position which will run for at
// most movetime. The search must be stopped or drained by the caller
// before the engine can be used again.
func (engine *Engine) Stream(ctx context.Context, fen string, movetime time.Duration) (Stream, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	switch {
	case engine.closed:
		return nil, ErrEngineClosed
	case engine.search != nil:
		return nil, ErrSearchActive
	}

	if err := engine.Write("position fen %s", fen); err != nil {
		return nil, err
	}

	if err := engine.Synchronize(); err != nil {
		return nil, err
	}

	if err := engine.Write("go movetime %d", movetime.Milliseconds()); err != nil {
		return nil, err
	}

	s := &search{
		engine:  engine,
		updates: make(chan Info),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}

	engine.search = s
	go s.run()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-s.done:
		}
	}()

	return s, nil
}

// run forwards the engine's info lines till it sends a bestmove. Once the
// search is stopped remaining updates are discarded, but the engine's
// output is still consumed till the bestmove.
func (s *search) run() {
	defer func() {
		s.engine.mu.Lock()
		s.engine.search = nil
		s.engine.mu.Unlock()

		close(s.updates)
		close(s.done)
	}()

	for line := range s.engine.lines {
		if strings.HasPrefix(line, "bestmove") {
			if fields := strings.Fields(line); len(fields) > 1 {
				s.bestmove = fields[1]
			}

			return
		}

		info, ok := ParseInfo(line)
		if !ok || info.Empty() || info.MultiPV > 1 {
			continue
		}

		info.At = time.Now()

		select {
		case s.updates <- info:
		case <-s.stopped:
		}
	}

	logrus.WithField("engine", s.engine.config.Name).Warn("Engine output ended during a search")
}

// Evaluate searches the given position for movetime and returns the
// engine's final opinion, merged from all the updates it sent.
func (engine *Engine) Evaluate(ctx context.Context, fen string, movetime time.Duration) (Info, error) {
	stream, err := engine.Stream(ctx, fen, movetime)
	if err != nil {
		return Info{}, err
	}

	defer func() {
		if err := stream.Stop(); err != nil {
			logrus.Warnf("(%s) search did not stop: %v", engine.config.Name, err)
		}
	}()

	var final Info
	for update := range stream.Updates() {
		final = final.merge(update)
	}

	return final, ctx.Err()
}

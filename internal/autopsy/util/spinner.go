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

package util

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
)

const SPIN = 31

var s = spinner.New(spinner.CharSets[SPIN], 100*time.Millisecond, spinner.WithWriter(os.Stderr))

// StartSpinner starts the ~working~ spinner. It stays hidden when debug
// logs are enabled, since they would be garbled by it.
func StartSpinner() {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	s.Start()
}

// PauseSpinner stops the spinner, which can be started again later.
func PauseSpinner() {
	s.Stop()
}

// SetSpinnerSuffix sets the text shown after the spinner.
func SetSpinnerSuffix(suffix string) {
	s.Lock()
	s.Suffix = " " + suffix
	s.Unlock()
}

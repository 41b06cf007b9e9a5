// Copyright 2026 The Venue Analytics Coordinator Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scheduler

import "github.com/GoogleCloudPlatform/guest-logging-go/logger"

// cronLogger adapts cron.Logger to the project's structured logger so cron's
// own internal diagnostics (start, wake-ups, job runs, added and removed
// entries) show up alongside everything else the coordinator logs. The
// scheduler's cron has no recover wrapper, so job panics are not logged here.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debugf("cron: %s %v", msg, keysAndValues)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Errorf("cron: %s: %v %v", msg, err, keysAndValues)
}

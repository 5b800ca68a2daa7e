/*
 * Copyright 2026 The keyfinder Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultOutputFilePath builds a timestamped report path for a command, e.g.
// mydb_resolve_20260828_120000.txt in the working directory.
func DefaultOutputFilePath(dbName, command string) string {
	if dbName == "" {
		dbName = "keyfinder"
	}
	name := fmt.Sprintf("%s_%s_%s.txt", dbName, command, time.Now().Format("20060102_150405"))
	return filepath.Join(".", name)
}

// WriteReport writes a textual report to path, creating parent directories
// as needed.
func WriteReport(path, content string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory '%s': %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write report '%s': %w", path, err)
	}
	return nil
}

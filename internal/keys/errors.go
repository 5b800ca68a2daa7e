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
package keys

import "fmt"

// ErrQuery wraps a failed catalog or probe query. Query failures are
// propagated immediately and never retried here; resources are released
// before the error surfaces.
type ErrQuery struct {
	Op  string
	Err error
}

func (e *ErrQuery) Error() string {
	return fmt.Sprintf("catalog query failed during %s: %v", e.Op, e.Err)
}

func (e *ErrQuery) Unwrap() error {
	return e.Err
}

// ErrClassification reports a column whose database type has no semantic
// mapping, or a catalog-reported key column the table probe does not know.
type ErrClassification struct {
	Column   string
	TypeName string
}

func (e *ErrClassification) Error() string {
	if e.TypeName == "" {
		return fmt.Sprintf("column %q not present in table probe", e.Column)
	}
	return fmt.Sprintf("cannot classify type %q of column %q", e.TypeName, e.Column)
}

/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements. See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sidechannel

import (
	stderrors "errors"
	"fmt"
	"github.com/pgship/pgship/spi/schema"
)

// SideChannel is the single database-facing collaborator. One
// logical connection is held for the channel's lifetime; the
// schema is resolved once per (re)connect and cached until the
// connection is rebuilt.
type SideChannel interface {
	// Connect establishes the connection and resolves the
	// destination table's schema.
	Connect() (*schema.Schema, error)

	// Schema returns the currently cached schema, or nil when
	// disconnected.
	Schema() *schema.Schema

	// WriteBatch issues one fully literal multi-row INSERT
	// statement. A transient connection failure triggers an
	// internal reconnect and schema re-resolution before the
	// error is surfaced as a RetryableError; the caller owns
	// redelivery of the batch.
	WriteBatch(statement string) error

	// Close tears the connection down.
	Close() error
}

// RetryableError marks a batch write that failed on a transient
// connection problem. The batch was not (fully) applied and must
// be redelivered by the caller; it is never silently dropped.
type RetryableError struct {
	Cause error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("batch write failed but can be retried: %s", e.Cause.Error())
}

func (e *RetryableError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether the given error chain carries a
// RetryableError.
func IsRetryable(
	err error,
) bool {

	var retryable *RetryableError
	return stderrors.As(err, &retryable)
}

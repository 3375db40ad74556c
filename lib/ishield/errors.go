/*
 * Copyright (c) Overlaykit contributors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ishield

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates the overlay does not begin with a known
// InstallShield signature. It is fatal for the whole image.
var ErrUnsupportedFormat = errors.New("not an InstallShield setup stream")

// TruncatedError indicates that a required structure extends past the end of
// the overlay. At the main header it is fatal; inside the entry walk it only
// ends the walk early.
type TruncatedError struct {
	Site   string
	Offset int64
	Need   int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated %s: need %d bytes at offset %d", e.Site, e.Need, e.Offset)
}

// CorruptPayloadError indicates that a single entry failed to decrypt or
// decompress. The walk continues past it.
type CorruptPayloadError struct {
	Name string
	Err  error
}

func (e *CorruptPayloadError) Error() string {
	return fmt.Sprintf("corrupt payload for %q: %s", e.Name, e.Err)
}

func (e *CorruptPayloadError) Unwrap() error {
	return e.Err
}

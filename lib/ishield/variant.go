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

// Variant selects the structural layout of the overlay entries. It is
// resolved once per image, before the entry walk starts.
type Variant int

const (
	// Legacy is the old "InstallShield" signature: fixed 260-byte ANSI
	// filename fields and no separate attribute record.
	Legacy Variant = iota
	// Stream12 is the "ISSetupStream" signature with 24-byte attribute
	// records, used by 12.x era installers.
	Stream12
	// Stream30 is the "ISSetupStream" signature with 48-byte attribute
	// records carrying FILETIME fields, used by 30.x era installers.
	Stream30
)

func (v Variant) String() string {
	switch v {
	case Legacy:
		return "legacy"
	case Stream12:
		return "stream-12"
	case Stream30:
		return "stream-30"
	}
	return "unknown"
}

const (
	sigLegacy = "InstallShield"
	sigStream = "ISSetupStream"
)

// classifyVariant maps the header signature plus an optional external major
// version hint to a layout. majorHint <= 0 means no hint was available; the
// 12.x layout is the fallback because 30.x records validate almost nothing
// a 12.x parse would accept.
func classifyVariant(signature string, majorHint int) (Variant, error) {
	switch signature {
	case sigLegacy:
		return Legacy, nil
	case sigStream:
		if majorHint >= 30 {
			return Stream30, nil
		}
		return Stream12, nil
	}
	return 0, ErrUnsupportedFormat
}

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

// OverlayImage is the fully materialized byte region appended after the last
// PE section, together with the absolute file offset it was read from. It is
// read-only; entries hold views into it and nothing is copied until decode.
type OverlayImage struct {
	data   []byte
	offset int64
}

func NewOverlayImage(data []byte, offset int64) *OverlayImage {
	return &OverlayImage{data: data, offset: offset}
}

// Len returns the overlay size in bytes.
func (im *OverlayImage) Len() int {
	return len(im.data)
}

// Offset returns the absolute file offset of the first overlay byte.
func (im *OverlayImage) Offset() int64 {
	return im.offset
}

// view returns the half-open range [start, end) without copying. Bounds must
// have been checked by the caller.
func (im *OverlayImage) view(start, end int) []byte {
	return im.data[start:end:end]
}

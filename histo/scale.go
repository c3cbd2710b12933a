// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package histo

import (
	"errors"
	"fmt"
)

// ErrZeroDivisor is returned by Normalize when the reference entry
// count is not positive.
var ErrZeroDivisor = errors.New("reference entry count is zero")

// Scale multiplies every bin content of h by f. Squared weights are
// multiplied by f², so bin errors scale by f along with the contents.
func (h *Histogram) Scale(f float64) {
	f2 := f * f
	for i := range h.Content {
		h.Content[i] *= f
		h.SumW2[i] *= f2
	}
	h.Underflow *= f
	h.Overflow *= f
}

// Normalize scales ref in place by n/nref, where n is the candidate
// entry count and nref is the reference entry count, so that ref is
// comparable to the candidate in absolute terms.
func Normalize(ref *Histogram, n, nref int) error {
	if nref <= 0 {
		return fmt.Errorf("%w: cannot scale %d entries to %d", ErrZeroDivisor, nref, n)
	}
	ref.Scale(float64(n) / float64(nref))
	return nil
}

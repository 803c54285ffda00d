package flow

import "strings"

// OTPLength is the number of cells in a one-time code input.
const OTPLength = 6

// OTPInput models a row of six single-digit entry cells with a focus
// cursor, mirroring the keyboard behaviour of the code widget: typing
// auto-advances, backspace walks left, paste distributes digits from
// cell zero. It holds no locking of its own; MFAVerification guards it.
type OTPInput struct {
	cells [OTPLength]byte // 0 means empty
	focus int
}

// Focus returns the index of the focused cell.
func (o OTPInput) Focus() int {
	return o.focus
}

// Cell returns the digit in cell i, or "" when empty.
func (o OTPInput) Cell(i int) string {
	if i < 0 || i >= OTPLength || o.cells[i] == 0 {
		return ""
	}
	return string(o.cells[i])
}

// TypeDigit enters ch into the focused cell and advances focus.
// Non-digit input is ignored.
func (o *OTPInput) TypeDigit(ch rune) {
	if ch < '0' || ch > '9' {
		return
	}
	o.cells[o.focus] = byte(ch)
	if o.focus < OTPLength-1 {
		o.focus++
	}
}

// Backspace clears the focused cell, or moves focus left when the cell
// is already empty.
func (o *OTPInput) Backspace() {
	if o.cells[o.focus] != 0 {
		o.cells[o.focus] = 0
		return
	}
	if o.focus > 0 {
		o.focus--
	}
}

// ArrowLeft moves focus one cell left without mutating content.
func (o *OTPInput) ArrowLeft() {
	if o.focus > 0 {
		o.focus--
	}
}

// ArrowRight moves focus one cell right without mutating content.
func (o *OTPInput) ArrowRight() {
	if o.focus < OTPLength-1 {
		o.focus++
	}
}

// Paste extracts up to six digits from text and distributes them into
// the cells starting at index zero, overwriting existing values. Focus
// lands on the last filled cell, or cell zero when text held no digits.
func (o *OTPInput) Paste(text string) {
	digits := make([]byte, 0, OTPLength)
	for _, ch := range text {
		if ch >= '0' && ch <= '9' {
			digits = append(digits, byte(ch))
			if len(digits) == OTPLength {
				break
			}
		}
	}

	if len(digits) == 0 {
		o.focus = 0
		return
	}
	for i, d := range digits {
		o.cells[i] = d
	}
	o.focus = len(digits) - 1
}

// Complete reports whether all six cells hold a digit.
func (o OTPInput) Complete() bool {
	for _, c := range o.cells {
		if c == 0 {
			return false
		}
	}
	return true
}

// Code returns the concatenated cell contents, skipping empty cells.
func (o OTPInput) Code() string {
	var b strings.Builder
	for _, c := range o.cells {
		if c != 0 {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Clear empties every cell and returns focus to cell zero.
func (o *OTPInput) Clear() {
	o.cells = [OTPLength]byte{}
	o.focus = 0
}

package flow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOTPTypeDigitAdvancesFocus(t *testing.T) {
	t.Parallel()

	var o OTPInput
	for i, ch := range "123456" {
		require.Equal(t, i, o.Focus())
		o.TypeDigit(ch)
	}

	require.True(t, o.Complete())
	require.Equal(t, "123456", o.Code())
	require.Equal(t, OTPLength-1, o.Focus(), "Focus stays on the last cell")
}

func TestOTPIgnoresNonDigits(t *testing.T) {
	t.Parallel()

	var o OTPInput
	o.TypeDigit('a')
	o.TypeDigit('!')
	o.TypeDigit(' ')

	require.Equal(t, 0, o.Focus())
	require.Equal(t, "", o.Code())
}

func TestOTPBackspace(t *testing.T) {
	t.Parallel()

	var o OTPInput
	o.TypeDigit('1')
	o.TypeDigit('2')

	// Focused cell is empty, so backspace walks left
	require.Equal(t, 2, o.Focus())
	o.Backspace()
	require.Equal(t, 1, o.Focus())
	require.Equal(t, "2", o.Cell(1))

	// Focused cell holds a digit, so backspace clears it in place
	o.Backspace()
	require.Equal(t, 1, o.Focus())
	require.Equal(t, "", o.Cell(1))

	o.Backspace()
	require.Equal(t, 0, o.Focus())
}

func TestOTPArrowsMoveWithoutMutation(t *testing.T) {
	t.Parallel()

	var o OTPInput
	o.TypeDigit('7')

	o.ArrowLeft()
	require.Equal(t, 0, o.Focus())
	o.ArrowLeft()
	require.Equal(t, 0, o.Focus(), "Left is clamped at cell 0")

	o.ArrowRight()
	o.ArrowRight()
	require.Equal(t, 2, o.Focus())
	require.Equal(t, "7", o.Code(), "Arrows never mutate content")

	for range OTPLength {
		o.ArrowRight()
	}
	require.Equal(t, OTPLength-1, o.Focus(), "Right is clamped at the last cell")
}

func TestOTPPaste(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		text      string
		wantCode  string
		wantFocus int
	}{
		{name: "clean code", text: "123456", wantCode: "123456", wantFocus: 5},
		{name: "digits with noise", text: " 12-34 56 ", wantCode: "123456", wantFocus: 5},
		{name: "more than six digits", text: "12345678", wantCode: "123456", wantFocus: 5},
		{name: "partial", text: "123", wantCode: "123", wantFocus: 2},
		{name: "no digits", text: "abc!", wantCode: "", wantFocus: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var o OTPInput
			o.Paste(tc.text)

			require.Equal(t, tc.wantCode, o.Code())
			require.Equal(t, tc.wantFocus, o.Focus())
		})
	}
}

func TestOTPPasteOverwritesExisting(t *testing.T) {
	t.Parallel()

	var o OTPInput
	o.TypeDigit('9')
	o.TypeDigit('9')

	o.Paste("123456")

	require.Equal(t, "123456", o.Code())
	require.True(t, o.Complete())
}

func TestOTPValueSnapshotReads(t *testing.T) {
	t.Parallel()

	var o OTPInput
	o.Paste("123456")

	// The read accessors work on a copy, the way MFAVerification.OTP
	// hands one out
	snap := o
	require.True(t, snap.Complete())
	require.Equal(t, "123456", snap.Code())
	require.Equal(t, "3", snap.Cell(2))
	require.Equal(t, 5, snap.Focus())
}

func TestOTPClear(t *testing.T) {
	t.Parallel()

	var o OTPInput
	o.Paste("123456")
	o.Clear()

	require.Equal(t, "", o.Code())
	require.Equal(t, 0, o.Focus())
	require.False(t, o.Complete())
}

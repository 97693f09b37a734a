package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scribe/internal/history"
	"github.com/roach88/scribe/internal/ir"
)

func TestOutputFormatter_SuccessCarriesValidationResult(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(ValidationResult{Valid: true, Entries: 3, Retained: 2, Hash: "abc"}))

	var result ValidationResult
	resp := decodeResponse(t, buf.String(), &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, result.Retained)
	assert.Nil(t, result.StateMatches)
}

func TestOutputFormatter_Fail(t *testing.T) {
	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"text", "text", "Error [E006]: save doc-1: database is locked\n"},
		{"json", "json", `{"status":"error","error":{"code":"E006","message":"save doc-1: database is locked"}}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: tt.format, Writer: buf}

			cause := errors.New("save doc-1: database is locked")
			err := formatter.Fail(ExitCommandError, ErrCodeStoreFailed, cause)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.ErrorIs(t, err, cause)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOutputFormatter_VerboseLogAvoidsJSONStream(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("Read %d entries from %s", 3, "table.json")
	assert.Empty(t, out.String())
	assert.Equal(t, "Read 3 entries from table.json\n", errOut.String())

	quiet := &OutputFormatter{Format: "text", Writer: out}
	quiet.VerboseLog("hidden")
	assert.Empty(t, out.String())
}

func TestOutputFormatter_FailValidationText(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	_, cause := history.New[string]().Patch(ir.IRObject{"a": ir.IRInt(1)})
	require.Error(t, cause)

	err := formatter.FailValidation(cause)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, history.IsCode(err, history.ErrCodePatchNeedsCreate))
	assert.Contains(t, buf.String(), "✗ Validation failed")
	assert.Contains(t, buf.String(), "PATCH_NEEDS_CREATE")
}

func TestOutputFormatter_FailValidationJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	_, cause := history.New[string]().Compile()
	require.Error(t, cause)

	err := formatter.FailValidation(cause)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "EMPTY_SEQUENCE", resp.Error.Code)
	assert.Nil(t, resp.Error.Details)
}

func TestOutputFormatter_FailValidationNonValidationError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.FailValidation(errors.New("disk on fire"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E001]: disk on fire")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", errors.New("cause")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "outer: inner: cause", wrapped.Error())
}

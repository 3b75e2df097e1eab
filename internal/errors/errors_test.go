package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := New(ErrCodeBackup, "backup failed")
	if err.Error() != "[BACKUP_ERROR] backup failed" {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	wrapped := Wrap(ErrCodeFetch, "download failed", fmt.Errorf("connection refused"))
	if wrapped.Error() != "[FETCH_ERROR] download failed: connection refused" {
		t.Errorf("Unexpected wrapped message: %s", wrapped.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCodeWrite, "write failed", cause)

	if !stderrors.Is(err, cause) {
		t.Errorf("errors.Is must find the cause through Unwrap")
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NewPermissionError("denied", nil)
	if !stderrors.Is(err, New(ErrCodePermission, "")) {
		t.Errorf("Errors with the same code must match")
	}
	if stderrors.Is(err, New(ErrCodeWrite, "")) {
		t.Errorf("Errors with different codes must not match")
	}
}

func TestCodeOf(t *testing.T) {
	if code := CodeOf(NewManifestError("oops", nil)); code != ErrCodeManifest {
		t.Errorf("Expected MANIFEST_ERROR, got %s", code)
	}
	if code := CodeOf(fmt.Errorf("plain")); code != ErrCodeInternal {
		t.Errorf("Plain errors must map to INTERNAL_ERROR, got %s", code)
	}
	if code := CodeOf(fmt.Errorf("wrapped: %w", NewFetchError("down", nil))); code != ErrCodeFetch {
		t.Errorf("CodeOf must see through wrapping, got %s", code)
	}
}

func TestIsFatal(t *testing.T) {
	if IsFatal(NewFetchError("down", nil)) {
		t.Errorf("Fetch errors must not be fatal")
	}
	if IsFatal(NewParseError("bad line", nil)) {
		t.Errorf("Parse errors must not be fatal")
	}
	if !IsFatal(NewBackupError("no backup", nil)) {
		t.Errorf("Backup errors must be fatal")
	}
	if !IsFatal(fmt.Errorf("plain")) {
		t.Errorf("Unknown errors must be treated as fatal")
	}
}

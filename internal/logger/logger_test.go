package logger_test

import (
	"strings"
	"testing"

	"github.com/stealify-backports/rollup/internal/logger"
)

func TestMsgStringIncludesCode(t *testing.T) {
	msg := logger.Msg{Kind: logger.Error, Code: logger.MsgID_CircularReexport, Text: "x"}
	s := msg.String(logger.StderrOptions{}, logger.TerminalInfo{})
	if !strings.Contains(s, logger.MsgID_CircularReexport) {
		t.Fatalf("expected message to mention its code, got %q", s)
	}
}

func TestCoreErrorImplementsError(t *testing.T) {
	err := logger.NewCoreError(nil, logger.Loc{Start: 3}, logger.MsgID_MissingExport, "no export named \"x\"")
	if err.Error() == "" {
		t.Fatal("expected a non-empty error string")
	}
	if err.Code != logger.MsgID_MissingExport {
		t.Fatalf("expected code %q, got %q", logger.MsgID_MissingExport, err.Code)
	}
}

package infra

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	testcases := []struct {
		Frame
		format string
		want   string
	}{
		{initPC, "%s", "err_stack_test.go"},
		{initPC, "%n", "init"},
		{initPC, "%d", "16"},
		{initPC, "%v", "err_stack_test.go:16"},
		{Frame(0), "%s", "unknownFile"},
		{Frame(0), "%n", "unknownFunc"},
		{Frame(0), "%d", "0"},
	}

	for _, tc := range testcases {
		frameRes := fmt.Sprintf(tc.format, tc.Frame)
		require.Equal(t, tc.want, frameRes)
	}

	res := fmt.Sprintf("%+v", initPC)
	require.True(t, strings.HasPrefix(res, "github.com/benz9527/xrbt/lib/infra.init\n\t"))
	require.True(t, strings.HasSuffix(res, "/lib/infra/err_stack_test.go:16"))
}

func TestFrameMarshalText(t *testing.T) {
	text, err := initPC.MarshalText()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(text), "github.com/benz9527/xrbt/lib/infra.init "))
	require.True(t, strings.HasSuffix(string(text), "err_stack_test.go:16"))

	text, err = Frame(0).MarshalText()
	require.NoError(t, err)
	require.Equal(t, "unknownFrame", string(text))
}

var errLeaf = errors.New("leaf")

func TestErrorStack(t *testing.T) {
	err := NewErrorStack("open tree file")
	require.EqualError(t, err, "open tree file")
	var es ErrorStack
	require.True(t, errors.As(err, &es))
	require.Nil(t, es.Unwrap())
	require.NotEmpty(t, es.StackTrace())
	require.Equal(t, "TestErrorStack", fmt.Sprintf("%n", es.StackTrace()[0]))

	require.Nil(t, WrapErrorStack(nil))
	require.Nil(t, WrapErrorStackWithMessage(nil, "ignored"))

	err = WrapErrorStack(errLeaf)
	require.EqualError(t, err, "leaf")
	require.ErrorIs(t, err, errLeaf)

	err = WrapErrorStackWithMessage(errLeaf, "load")
	require.EqualError(t, err, "load: leaf")
	require.ErrorIs(t, err, errLeaf)

	require.Equal(t, "load: leaf", fmt.Sprintf("%s", err))
	require.Equal(t, "\"load: leaf\"", fmt.Sprintf("%q", err))
	verbose := fmt.Sprintf("%+v", err)
	require.True(t, strings.HasPrefix(verbose, "load: leaf\ngithub.com/benz9527/xrbt/lib/infra.TestErrorStack\n\t"))
}

func TestErrorStackZapField(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	err := WrapErrorStackWithMessage(errLeaf, "load")
	logger.Info("failed", zap.Object("error", err.(ErrorStack)))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	obj, ok := fields["error"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "load: leaf", obj["error"])
	stack, ok := obj["stack"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, stack)
	require.True(t, strings.HasPrefix(stack[0].(string), "github.com/benz9527/xrbt/lib/infra.TestErrorStackZapField "))
}

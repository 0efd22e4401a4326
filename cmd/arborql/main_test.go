package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureOutput redirects os.Stdout/os.Stderr for the duration of fn,
// mirroring the teacher's own cmd/protograph/main_test.go helper.
func captureOutput(t *testing.T, fn func() error) (stdout, stderr string, err error) {
	t.Helper()
	oldOut, oldErr := os.Stdout, os.Stderr
	defer func() { os.Stdout, os.Stderr = oldOut, oldErr }()

	outR, outW, _ := os.Pipe()
	errR, errW, _ := os.Pipe()
	os.Stdout, os.Stderr = outW, errW

	doneOut := make(chan struct{})
	var bufOut bytes.Buffer
	go func() { io.Copy(&bufOut, outR); close(doneOut) }()

	doneErr := make(chan struct{})
	var bufErr bytes.Buffer
	go func() { io.Copy(&bufErr, errR); close(doneErr) }()

	err = fn()
	outW.Close()
	errW.Close()
	<-doneOut
	<-doneErr
	return bufOut.String(), bufErr.String(), err
}

func TestHelp(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"help"})
	})
	require.NoError(t, err)
	require.Contains(t, out, "SCENARIOS")
}

func TestDemoScenario1_MovieTitle(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"demo", "-scenario", "1"})
	})
	require.NoError(t, err)
	require.Contains(t, out, `"movie":{"title":"Celine et Julie Vont en Bateau"}`)
	require.NotContains(t, out, "errors")
}

func TestDemoScenario4_MergesThreeRootFields(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"demo", "-scenario", "4"})
	})
	require.NoError(t, err)
	require.Contains(t, out, `"movie":`)
	require.Contains(t, out, `"foo":{"value":23}`)
	require.Contains(t, out, `"bar":{"message":"Hello world"}`)
}

func TestDemoScenario5_UnknownFieldSurfacesAsError(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"demo", "-scenario", "5"})
	})
	require.NoError(t, err)
	require.NotContains(t, out, `"data"`)
	require.Contains(t, out, "field not found: nope")
	require.Contains(t, out, `"movie","nope"`)
}

func TestDemoScenario6_UndefinedTypeIsSchemaValidationProblem(t *testing.T) {
	out, _, err := captureOutput(t, func() error {
		return run([]string{"demo", "-scenario", "6"})
	})
	require.NoError(t, err)
	require.NotContains(t, out, `"data"`)
	require.Contains(t, out, "errors")
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := captureOutput(t, func() error {
		return run([]string{"bogus"})
	})
	require.Error(t, err)
}

// SPDX-License-Identifier: Unlicense OR MIT

package ipc

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestParseLineFlat(t *testing.T) {
	req, err := parseLine("window 42")
	require.NoError(t, err)
	require.Equal(t, "window", req.Verb)
	require.Equal(t, []string{"42"}, req.Args)
}

func TestParseLineJSONRPC(t *testing.T) {
	req, err := parseLine(`{"method": "workspace", "params": [1]}`)
	require.NoError(t, err)
	require.Equal(t, "workspace", req.Verb)
	require.Equal(t, []string{"1"}, req.Args)
}

func TestResponseFormat(t *testing.T) {
	require.Equal(t, "OK|done|{}\n", Response{OK: true, Message: "done", JSON: "{}"}.String())
	require.Equal(t, "ERROR|bad verb\n", Response{OK: false, Message: "bad verb"}.String())
}

func TestServerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "pointblank.sock")

	s, err := NewServer(path, testLogger())
	require.NoError(t, err)
	defer s.Close()
	go s.Serve()

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	go func() {
		cmd := <-s.Commands()
		cmd.Reply <- Response{OK: true, Message: "ws0"}
	}()

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("workspace\n"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "OK|ws0|\n", line)
}

func TestNewServerStartsWithNoClients(t *testing.T) {
	// A freshly bound server has an empty client set; the MaxClients
	// accept-path check itself is not exercised here.
	dir := t.TempDir()
	path := filepath.Join(dir, "pointblank.sock")
	s, err := NewServer(path, testLogger())
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, 0, len(s.clients))
}

func TestHelpText(t *testing.T) {
	require.Contains(t, HelpText(), "workspace")
	require.Contains(t, HelpText(), "quit")
}

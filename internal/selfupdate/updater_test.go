package selfupdate

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetNameFor(t *testing.T) {
	tests := []struct {
		name    string
		goos    string
		goarch  string
		want    string
		wantErr bool
	}{
		{"darwin amd64", "darwin", "amd64", "qudurat_Darwin_all.tar.gz", false},
		{"darwin arm64", "darwin", "arm64", "qudurat_Darwin_all.tar.gz", false},
		{"linux amd64", "linux", "amd64", "qudurat_Linux_x86_64.tar.gz", false},
		{"linux arm64", "linux", "arm64", "qudurat_Linux_arm64.tar.gz", false},
		{"linux 386", "linux", "386", "qudurat_Linux_i386.tar.gz", false},
		{"windows amd64", "windows", "amd64", "qudurat_Windows_x86_64.zip", false},
		{"windows arm64", "windows", "arm64", "qudurat_Windows_arm64.zip", false},
		{"unsupported os", "freebsd", "amd64", "", true},
		{"unsupported os on darwin arch", "plan9", "386", "", true},
		{"unsupported arch", "linux", "mips", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := assetNameFor(tt.goos, tt.goarch)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChecksums(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "normal",
			input: "abc123  qudurat_Darwin_all.tar.gz\ndef456  qudurat_Linux_x86_64.tar.gz\n",
			want: map[string]string{
				"qudurat_Darwin_all.tar.gz":   "abc123",
				"qudurat_Linux_x86_64.tar.gz": "def456",
			},
		},
		{
			name:  "empty",
			input: "",
			want:  map[string]string{},
		},
		{
			name:  "malformed lines skipped",
			input: "abc123  file.tar.gz\nbadline\n  \nfoo  bar  baz\nghi789  other.tar.gz\n",
			want: map[string]string{
				"file.tar.gz":  "abc123",
				"other.tar.gz": "ghi789",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseChecksums([]byte(tt.input))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("hello world")
	h := sha256.Sum256(data)
	correctHex := hex.EncodeToString(h[:])

	t.Run("match", func(t *testing.T) {
		assert.NoError(t, verifyChecksum(data, correctHex))
	})

	t.Run("mismatch", func(t *testing.T) {
		err := verifyChecksum(data, "0000000000000000000000000000000000000000000000000000000000000000")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrChecksum)
	})
}

func TestExtractBinary(t *testing.T) {
	binaryContent := []byte("#!/bin/sh\necho qudurat")

	t.Run("tar.gz", func(t *testing.T) {
		archive := buildTarGz(t, "qudurat", binaryContent)
		got, err := extractBinary(archive, "qudurat_Darwin_all.tar.gz")
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
	})

	t.Run("missing binary", func(t *testing.T) {
		archive := buildTarGz(t, "other-file", binaryContent)
		_, err := extractBinary(archive, "qudurat_Darwin_all.tar.gz")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestInstallKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "qudurat")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o755))

	require.NoError(t, install([]byte("new-binary"), target))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("new-binary"), got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	prev, err := os.ReadFile(target + ".previous")
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), prev)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp file left behind")
}

// releaseServer serves v2.0.0 of the darwin archive with the given checksum.
func releaseServer(t *testing.T, archive []byte, checksum string) *httptest.Server {
	t.Helper()
	asset := "qudurat_Darwin_all.tar.gz"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/qudurat/qudurat/releases/latest":
			_, _ = w.Write([]byte(`{"tag_name":"v2.0.0","html_url":"https://example.com/v2.0.0"}`))
		case "/qudurat/qudurat/releases/download/v2.0.0/" + asset:
			_, _ = w.Write(archive)
		case "/qudurat/qudurat/releases/download/v2.0.0/checksums.txt":
			_, _ = fmt.Fprintf(w, "%s  %s\n", checksum, asset)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestUpdate(t *testing.T) {
	binaryContent := []byte("new-qudurat-binary")
	archive := buildTarGz(t, "qudurat", binaryContent)
	sum := sha256.Sum256(archive)
	archiveHex := hex.EncodeToString(sum[:])

	newChecker := func(server *httptest.Server, execPath string) *Checker {
		return NewChecker(
			WithBaseURL(server.URL),
			WithDownloadBaseURL(server.URL),
			withPlatform("darwin", "arm64"),
			withExecPath(func() (string, error) { return execPath, nil }),
		)
	}

	t.Run("latest release", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "qudurat")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0o755))

		var stages []Stage
		res, err := newChecker(releaseServer(t, archive, archiveHex), execPath).
			Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(s Stage, _ string) {
				stages = append(stages, s)
			})
		require.NoError(t, err)
		assert.Equal(t, &UpdateResult{From: "v1.0.0", To: "v2.0.0", Path: execPath}, res)
		assert.Equal(t, []Stage{StageCheck, StageDownload, StageVerify, StageExtract, StageInstall}, stages)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, binaryContent, got)
	})

	t.Run("pinned release skips the check", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "qudurat")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0o755))

		var stages []Stage
		_, err := newChecker(releaseServer(t, archive, archiveHex), execPath).
			Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0", TargetVersion: "v2.0.0"}, func(s Stage, _ string) {
				stages = append(stages, s)
			})
		require.NoError(t, err)
		assert.NotContains(t, stages, StageCheck)
	})

	t.Run("pinned to the running release", func(t *testing.T) {
		_, err := NewChecker().Update(context.Background(), &UpdateInput{CurrentVersion: "1.4.0", TargetVersion: "v1.4.0"}, nil)
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("dev build", func(t *testing.T) {
		_, err := NewChecker().Update(context.Background(), &UpdateInput{CurrentVersion: "(devel)"}, nil)
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"tag_name":"v1.0.0","html_url":"https://example.com/v1.0.0"}`))
		}))
		defer server.Close()

		_, err := NewChecker(WithBaseURL(server.URL)).Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, nil)
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("checksum mismatch leaves the binary alone", func(t *testing.T) {
		execPath := filepath.Join(t.TempDir(), "qudurat")
		require.NoError(t, os.WriteFile(execPath, []byte("old"), 0o755))

		_, err := newChecker(releaseServer(t, archive, strings.Repeat("0", 64)), execPath).
			Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, nil)
		assert.ErrorIs(t, err, ErrChecksum)

		got, err := os.ReadFile(execPath)
		require.NoError(t, err)
		assert.Equal(t, []byte("old"), got)
	})

	t.Run("download failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/repos/qudurat/qudurat/releases/latest" {
				_, _ = w.Write([]byte(`{"tag_name":"v2.0.0","html_url":"https://example.com/v2.0.0"}`))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewChecker(WithBaseURL(server.URL), WithDownloadBaseURL(server.URL), withPlatform("linux", "amd64")).
			Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download archive")
	})
}

func TestRollback(t *testing.T) {
	dir := t.TempDir()
	execPath := filepath.Join(dir, "qudurat")
	checker := NewChecker(withExecPath(func() (string, error) { return execPath, nil }))

	require.NoError(t, os.WriteFile(execPath, []byte("v1"), 0o755))
	_, err := checker.Rollback()
	assert.ErrorIs(t, err, ErrNoPrevious)

	require.NoError(t, install([]byte("v2"), execPath))
	path, err := checker.Rollback()
	require.NoError(t, err)
	assert.Equal(t, execPath, path)

	got, err := os.ReadFile(execPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	_, err = checker.Rollback()
	assert.ErrorIs(t, err, ErrNoPrevious)
}

func TestCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/qudurat/qudurat/releases/latest" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"tag_name":"v1.10.0","html_url":"https://example.com/v1.10.0"}`))
	}))
	defer server.Close()
	checker := NewChecker(WithBaseURL(server.URL))

	tests := []struct {
		current string
		want    bool
	}{
		{"v1.9.3", true},
		{"1.2.0", true},
		{"v1.10.0", false},
		{"v2.0.0", false},
		{"", true},
	}
	for _, tt := range tests {
		res, err := checker.Check(context.Background(), &CheckInput{Version: tt.current})
		require.NoError(t, err)
		assert.Equal(t, "v1.10.0", res.LatestVersion)
		assert.Equal(t, tt.want, res.UpdateAvailable, "current %q", tt.current)
	}

	_, err := NewChecker(WithBaseURL(server.URL), WithRepository("x", "y")).Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch hits.Add(1) {
		case 1:
			w.WriteHeader(http.StatusBadGateway)
		case 2, 3:
			_, _ = w.Write([]byte(`{"tag_name":"v1.1.0"}`))
		default:
			_, _ = w.Write([]byte(`{"tag_name":"v1.2.0"}`))
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []string
	var failures int
	done := make(chan struct{})
	go func() {
		defer close(done)
		NewChecker(WithBaseURL(server.URL)).Watch(ctx, "v1.0.0", time.Millisecond, func(r *CheckResult) {
			got = append(got, r.LatestVersion)
			if len(got) == 2 {
				cancel()
			}
		}, func(error) { failures++ })
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop")
	}
	assert.Equal(t, []string{"v1.1.0", "v1.2.0"}, got)
	assert.Equal(t, 1, failures)
}

func TestWatch_DevBuildReturns(t *testing.T) {
	NewChecker(WithBaseURL("http://127.0.0.1:0")).Watch(context.Background(), "(devel)", time.Hour, func(*CheckResult) {
		t.Error("dev build notified")
	}, nil)
}

// buildTarGz creates a tar.gz archive containing a single file.
func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: name,
		Size: int64(len(content)),
		Mode: 0755,
	}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

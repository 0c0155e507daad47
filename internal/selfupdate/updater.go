package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Update errors.
var (
	ErrDevBuild      = errors.New("development builds are not updated")
	ErrAlreadyLatest = errors.New("already running the latest release")
	ErrChecksum      = errors.New("checksum mismatch")
	ErrNoPrevious    = errors.New("no previous binary to roll back to")
)

// Stage is a step of Update, reported in order.
type Stage string

const (
	StageCheck    Stage = "check"
	StageDownload Stage = "download"
	StageVerify   Stage = "verify"
	StageExtract  Stage = "extract"
	StageInstall  Stage = "install"
)

// previousSuffix names the copy of the replaced binary kept next to it.
const previousSuffix = ".previous"

// UpdateInput selects the release to install. An empty TargetVersion means
// the latest one.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

// UpdateResult describes an installed release.
type UpdateResult struct {
	From, To string
	// Path is the replaced executable. The old binary is kept at
	// Path+".previous" until the next update.
	Path string
}

// Update downloads, verifies and installs a release over the running
// executable. A running bot keeps serving from the old binary until it is
// restarted. progress may be nil.
func (c *Checker) Update(ctx context.Context, input *UpdateInput, progress func(Stage, string)) (*UpdateResult, error) {
	if progress == nil {
		progress = func(Stage, string) {}
	}
	if input.CurrentVersion == "" || input.CurrentVersion == "(devel)" {
		return nil, ErrDevBuild
	}

	tag := input.TargetVersion
	if tag == "" {
		progress(StageCheck, "Looking up the latest release")
		latest, err := c.Check(ctx, &CheckInput{Version: input.CurrentVersion})
		if err != nil {
			return nil, fmt.Errorf("check for updates: %w", err)
		}
		if !latest.UpdateAvailable {
			return nil, ErrAlreadyLatest
		}
		tag = latest.LatestVersion
	} else if canonical(tag) == canonical(input.CurrentVersion) {
		return nil, ErrAlreadyLatest
	}

	asset, err := assetNameFor(c.goos, c.goarch)
	if err != nil {
		return nil, err
	}

	progress(StageDownload, "Downloading "+tag)
	archive, err := c.download(ctx, c.releaseURL(tag, asset))
	if err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}

	progress(StageVerify, "Verifying "+asset)
	sums, err := c.download(ctx, c.releaseURL(tag, "checksums.txt"))
	if err != nil {
		return nil, fmt.Errorf("download checksums: %w", err)
	}
	want, ok := parseChecksums(sums)[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not listed in checksums.txt", ErrChecksum, asset)
	}
	if err := verifyChecksum(archive, want); err != nil {
		return nil, err
	}

	progress(StageExtract, "Unpacking "+binaryName)
	binary, err := extractBinary(archive, asset)
	if err != nil {
		return nil, fmt.Errorf("extract binary: %w", err)
	}

	target, err := c.execPath()
	if err != nil {
		return nil, fmt.Errorf("resolve executable path: %w", err)
	}
	progress(StageInstall, "Installing over "+target)
	if err := install(binary, target); err != nil {
		return nil, fmt.Errorf("install: %w", err)
	}
	return &UpdateResult{From: input.CurrentVersion, To: tag, Path: target}, nil
}

// Rollback restores the binary replaced by the last Update.
func (c *Checker) Rollback() (string, error) {
	target, err := c.execPath()
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}
	prev := target + previousSuffix
	if _, err := os.Stat(prev); errors.Is(err, os.ErrNotExist) {
		return "", ErrNoPrevious
	}
	if err := os.Rename(prev, target); err != nil {
		return "", fmt.Errorf("restore %s: %w", prev, err)
	}
	return target, nil
}

func (c *Checker) releaseURL(tag, file string) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/%s/%s", strings.TrimRight(c.downloadBaseURL, "/"), c.owner, c.repo, tag, file)
}

// releaseArch maps GOARCH to the names used in release archives.
var releaseArch = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i386",
}

func assetNameFor(goos, goarch string) (string, error) {
	if goos == "darwin" {
		return binaryName + "_Darwin_all.tar.gz", nil
	}
	arch, ok := releaseArch[goarch]
	if !ok {
		return "", fmt.Errorf("no release build for %s/%s", goos, goarch)
	}
	switch goos {
	case "linux":
		return fmt.Sprintf("%s_Linux_%s.tar.gz", binaryName, arch), nil
	case "windows":
		return fmt.Sprintf("%s_Windows_%s.zip", binaryName, arch), nil
	}
	return "", fmt.Errorf("no release build for %s/%s", goos, goarch)
}

func (c *Checker) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// parseChecksums reads "<sha256>  <file>" lines.
func parseChecksums(data []byte) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 {
			out[fields[1]] = fields[0]
		}
	}
	return out
}

func verifyChecksum(data []byte, want string) error {
	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); !strings.EqualFold(got, want) {
		return fmt.Errorf("%w: want %s, got %s", ErrChecksum, want, got)
	}
	return nil
}

func extractBinary(archive []byte, asset string) ([]byte, error) {
	if strings.HasSuffix(asset, ".zip") {
		return fromZip(archive, binaryName+".exe")
	}
	return fromTarGz(archive, binaryName)
}

func fromTarGz(data []byte, name string) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%s not found in archive", name)
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag == tar.TypeReg && filepath.Base(hdr.Name) == name {
			return io.ReadAll(tr)
		}
	}
}

func fromZip(data []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if filepath.Base(f.Name) != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer func() { _ = rc.Close() }()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", name)
}

// install writes binary next to target, keeps the old file at
// target+".previous" and moves the new one into place with the old mode.
func install(binary []byte, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+binaryName+"-new-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(binary); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return err
	}

	written, err := os.ReadFile(tmp.Name())
	if err != nil {
		return err
	}
	if !bytes.Equal(written, binary) {
		return fmt.Errorf("%w: %s changed after write", ErrChecksum, tmp.Name())
	}

	prev := target + previousSuffix
	if err := os.Rename(target, prev); err != nil {
		return fmt.Errorf("keep previous binary: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Rename(prev, target)
		return err
	}
	return nil
}

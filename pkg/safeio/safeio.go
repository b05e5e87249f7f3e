package safeio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// ErrUnsafeComponent is returned for path components that would leave their parent directory.
var ErrUnsafeComponent = errors.New("unsafe path component")

// separators are the characters that split a path on this platform.
var separators = func() string {
	if os.PathSeparator == '\\' {
		return `/\`
	}
	return "/"
}()

// CleanComponent validates a single path component taken from untrusted data.
// It rejects empty names, "." and "..", and anything containing a path
// separator of the host platform. A backslash is an ordinary character
// outside Windows.
func CleanComponent(name string) (string, error) {
	switch {
	case name == "", name == ".", name == "..":
		return "", fmt.Errorf("%w: %q", ErrUnsafeComponent, name)
	case strings.ContainsAny(name, separators):
		return "", fmt.Errorf("%w: %q contains a path separator", ErrUnsafeComponent, name)
	}
	return name, nil
}

// CopyFile copies src on srcFS to dst on dstFS, overwriting dst.
// The source permission bits are applied to dst when dstFS supports chmod.
// Returns the number of bytes copied.
func CopyFile(srcFS billy.Filesystem, src string, dstFS billy.Filesystem, dst string) (int64, error) {
	st, err := srcFS.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", src, err)
	}
	mode := st.Mode() & 0o777
	if mode == 0 {
		mode = 0o644
	}

	in, err := srcFS.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := dstFS.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dst, err)
	}
	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return n, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", dst, err)
	}

	if ch, ok := dstFS.(billy.Change); ok {
		if err := ch.Chmod(dst, mode); err != nil {
			return n, fmt.Errorf("chmod %s: %w", dst, err)
		}
	}
	return n, nil
}

// WriteFilePreservePerms writes data to path preserving the existing file mode when possible.
// When the file does not exist, it uses a sane default of 0644.
func WriteFilePreservePerms(fsys billy.Filesystem, path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := fsys.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

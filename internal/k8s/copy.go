package k8s

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// CopyToPod copies a local file or directory into a pod container. The
// transfer runs as a tar stream over an exec session, the same mechanism
// kubectl cp uses, so it needs tar in the target container.
func (c *kubernetesClient) CopyToPod(ctx context.Context, kubeContext, namespace, podName, containerName string, opts CopyOptions) error {
	if opts.RemotePath == "" {
		return fmt.Errorf("remote path is required")
	}
	if opts.LocalPath == "" && opts.Content == "" {
		return fmt.Errorf("either a local path or inline content is required")
	}

	c.logOperation("copy-to-pod", kubeContext, namespace, "pod", podName)

	var buf bytes.Buffer
	if opts.Content != "" {
		if err := tarFromContent(&buf, opts.RemotePath, opts.Content); err != nil {
			return err
		}
	} else {
		if err := tarFromPath(&buf, opts.LocalPath, opts.RemotePath); err != nil {
			return err
		}
	}

	destDir := path.Dir(opts.RemotePath)
	command := []string{"tar", "-xmf", "-", "-C", destDir}
	if opts.NoPreserve {
		command = []string{"tar", "--no-same-permissions", "--no-same-owner", "-xmf", "-", "-C", destDir}
	}

	result, err := c.Exec(ctx, kubeContext, namespace, podName, containerName, command, ExecOptions{
		Stdin: &buf,
	})
	if err != nil {
		return fmt.Errorf("failed to copy to pod %s/%s: %w", namespace, podName, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("tar failed in pod %s/%s: %s", namespace, podName, result.Stderr)
	}
	return nil
}

// CopyFromPod copies a file or directory out of a pod container to the
// local filesystem.
func (c *kubernetesClient) CopyFromPod(ctx context.Context, kubeContext, namespace, podName, containerName string, opts CopyOptions) error {
	if opts.RemotePath == "" {
		return fmt.Errorf("remote path is required")
	}
	if opts.LocalPath == "" {
		return fmt.Errorf("local path is required")
	}

	c.logOperation("copy-from-pod", kubeContext, namespace, "pod", podName)

	var buf bytes.Buffer
	command := []string{"tar", "cf", "-", "-C", path.Dir(opts.RemotePath), path.Base(opts.RemotePath)}
	result, err := c.Exec(ctx, kubeContext, namespace, podName, containerName, command, ExecOptions{
		Stdout: &buf,
	})
	if err != nil {
		return fmt.Errorf("failed to copy from pod %s/%s: %w", namespace, podName, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("tar failed in pod %s/%s: %s", namespace, podName, result.Stderr)
	}

	return untarToPath(&buf, path.Base(opts.RemotePath), opts.LocalPath)
}

// tarFromContent writes a single-file archive holding the given content,
// named after the final element of the remote path.
func tarFromContent(w io.Writer, remotePath, content string) error {
	tw := tar.NewWriter(w)
	header := &tar.Header{
		Name: path.Base(remotePath),
		Mode: 0o644,
		Size: int64(len(content)),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write archive header: %w", err)
	}
	if _, err := io.WriteString(tw, content); err != nil {
		return fmt.Errorf("failed to write archive content: %w", err)
	}
	return tw.Close()
}

// tarFromPath archives a local file or directory tree. Entries are named
// relative to the remote destination so extraction lands them in place.
func tarFromPath(w io.Writer, localPath, remotePath string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", localPath, err)
	}

	tw := tar.NewWriter(w)
	defer tw.Close()

	base := path.Base(remotePath)
	if !info.IsDir() {
		return addFileToTar(tw, localPath, base, info)
	}

	return filepath.Walk(localPath, func(file string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(localPath, file)
		if err != nil {
			return err
		}
		name := base
		if rel != "." {
			name = path.Join(base, filepath.ToSlash(rel))
		}
		if fi.IsDir() {
			header := &tar.Header{
				Name:     name + "/",
				Mode:     int64(fi.Mode().Perm()),
				Typeflag: tar.TypeDir,
			}
			return tw.WriteHeader(header)
		}
		return addFileToTar(tw, file, name, fi)
	})
}

func addFileToTar(tw *tar.Writer, file, name string, info os.FileInfo) error {
	header := &tar.Header{
		Name: name,
		Mode: int64(info.Mode().Perm()),
		Size: info.Size(),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write archive header for %q: %w", file, err)
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", file, err)
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to archive %q: %w", file, err)
	}
	return nil
}

// untarToPath extracts an archive rooted at prefix into localPath. Entries
// escaping the destination are rejected.
func untarToPath(r io.Reader, prefix, localPath string) error {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		name := strings.TrimPrefix(header.Name, prefix)
		name = strings.TrimPrefix(name, "/")

		target := localPath
		if name != "" {
			target = filepath.Join(localPath, filepath.FromSlash(name))
		}
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(localPath)) {
			return fmt.Errorf("archive entry %q escapes destination", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("failed to create directory for %q: %w", target, err)
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("failed to create %q: %w", target, err)
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return fmt.Errorf("failed to extract %q: %w", target, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
	}
}

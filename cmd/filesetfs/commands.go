package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/marmos91/filesetfs/pkg/filesystem"
)

func printStat(w io.Writer, stat filesystem.FileStat) {
	fmt.Fprintf(w, "Path:     %s\n", stat.Path)
	fmt.Fprintf(w, "Type:     %s\n", stat.Kind)
	fmt.Fprintf(w, "Size:     %d\n", stat.Size)
	fmt.Fprintf(w, "Perm:     %04o\n", stat.Perm)
	fmt.Fprintf(w, "Modified: %s\n", stat.Mtime.Format(time.RFC3339))
}

func listDir(ctx context.Context, w io.Writer, fs filesystem.PathFileSystem, path string) error {
	stats, err := fs.ReadDir(ctx, path)
	if err != nil {
		return err
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, stat := range stats {
		name := stat.Name
		if stat.IsDir() {
			name += "/"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", name, stat.Size, stat.Mtime.Format(time.RFC3339))
	}
	return tw.Flush()
}

func catFile(ctx context.Context, w io.Writer, fs filesystem.PathFileSystem, path string) error {
	file, err := fs.OpenFile(ctx, path, filesystem.FlagReadOnly)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close(ctx) }()

	var offset uint64
	for {
		data, err := file.Read(ctx, offset, readChunk)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return nil
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		offset += uint64(len(data))
	}
}

func putFile(ctx context.Context, env *environment, fs filesystem.PathFileSystem, path, source string) error {
	var src io.Reader = env.stdin
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		src = f
	}

	file, err := fs.CreateFile(ctx, path, filesystem.FlagCreate|filesystem.FlagWriteOnly|filesystem.FlagTruncate)
	if err != nil {
		return err
	}

	buf := make([]byte, readChunk)
	var offset uint64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			written, err := file.Write(ctx, offset, buf[:n])
			if err != nil {
				_ = file.Close(ctx)
				return err
			}
			offset += uint64(written)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = file.Close(ctx)
			return readErr
		}
	}

	if err := file.Close(ctx); err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "%d bytes written to %s\n", offset, filesystem.CleanPath(path))
	return nil
}

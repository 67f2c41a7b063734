package operator

import (
	"context"
	"fmt"
)

// RemoveAll deletes dir and everything below it, children first.
//
// Used to clean up test fixtures on backends without a native recursive
// delete. A missing dir is not an error.
func RemoveAll(ctx context.Context, op *Operator, dir string) error {
	dir = DirPath(dir)

	entries, err := op.List(ctx, dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Metadata.IsDir() {
			if err := RemoveAll(ctx, op, entry.Path); err != nil {
				return err
			}
			continue
		}
		if err := op.Delete(ctx, entry.Path); err != nil {
			return fmt.Errorf("delete %s: %w", entry.Path, err)
		}
	}

	if dir == "/" {
		return nil
	}
	if err := op.Delete(ctx, dir); err != nil {
		return fmt.Errorf("delete %s: %w", dir, err)
	}
	return nil
}

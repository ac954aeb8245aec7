package journal

import (
	"context"
	"io"

	"github.com/nxadm/tail"
)

type FollowOptions struct {
	// FromStart replays the existing file before following it.
	FromStart bool
	// Poll uses stat polling instead of inotify, for network filesystems.
	Poll bool
}

// Follow calls fn with each line appended to the journal at path until ctx
// is done. The file does not have to exist yet, and is reopened if it is
// moved or recreated.
func Follow(ctx context.Context, path string, opts FollowOptions, fn func(line string)) error {
	location := &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	if opts.FromStart {
		location = nil
	}

	t, err := tail.TailFile(path, tail.Config{
		Location:  location,
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      opts.Poll,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return err
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			return t.Stop()
		case line, ok := <-t.Lines:
			if !ok {
				return t.Err()
			}
			if line.Err != nil {
				return line.Err
			}
			fn(line.Text)
		}
	}
}

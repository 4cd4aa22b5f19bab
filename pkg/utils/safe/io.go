package safe

import (
	"context"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskreg/pkg/utils/errutil"
)

// Close is meant for defer. Repositories, uploaded files and workbooks
// closed here have nobody left to return an error to, so a failure goes
// through errutil.Handle with the closer's type attached.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "close failed",
			goerr.V("closer", fmt.Sprintf("%T", closer))), "resource leaked on close")
	}
}

// Write sends a body after the status line is out. Short writes count as
// failures.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "write failed",
			goerr.V("written", n), goerr.V("size", len(data))), "response body truncated")
	}
}

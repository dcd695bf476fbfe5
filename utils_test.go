package hotpotato

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/inconshreveable/log15"
)

var l = testLogger()

func testLogger() log15.Logger {
	l := log15.New()
	l.SetHandler(log15.LvlFilterHandler(log15.LvlWarn, log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))
	return l
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// testWait keeps a broken test from blocking forever on a poll.
const testWait = 10 * time.Second

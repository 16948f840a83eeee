package main

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/s3ops/s3pitrestore/internal/debug"
	"github.com/s3ops/s3pitrestore/internal/errors"
)

func init() {
	// don't import go.uber.org/automaxprocs directly to disable its log output
	_, _ = maxprocs.Set()
}

// Exit terminates the process with the given exit code.
func Exit(code int) {
	debug.Log("exiting with status code %d", code)
	os.Exit(code)
}

func main() {
	// install a custom global logger into a buffer; if a library logs
	// through the standard "log" package we only surface it on failure
	logBuffer := bytes.NewBuffer(nil)
	log.SetOutput(logBuffer)

	debug.Log("main %#v", os.Args)

	ctx := createGlobalContext()
	err := newRootCommand().ExecuteContext(ctx)
	if err == nil {
		err = ctx.Err()
	}

	var exitMessage string
	var exitCode int
	switch {
	case err == nil:
		exitCode = 0
	case errors.IsFatal(err) && errors.GetKind(err) == errors.KindUsage:
		exitMessage = err.Error()
		exitCode = 2
	case err != nil:
		exitMessage = fmt.Sprintf("%+v", err)
		exitCode = 1

		if logBuffer.Len() > 0 {
			exitMessage += "\nalso, the following messages were logged by a library:\n"
			sc := bufio.NewScanner(logBuffer)
			for sc.Scan() {
				exitMessage += fmt.Sprintln(sc.Text())
			}
		}
	}

	if exitCode != 0 {
		_, _ = fmt.Fprintln(os.Stderr, exitMessage)
	}
	Exit(exitCode)
}

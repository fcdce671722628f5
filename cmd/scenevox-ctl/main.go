package main

import (
	"fmt"
	"os"
	"time"

	cli "github.com/spf13/pflag"

	"scenevox/internal/ipc"
)

const usage = `usage: scenevox-ctl [flags] <command> [args]

commands:
  ping                 check the daemon is alive
  probe                test the remote endpoint with the selected model
  prompt <text...>     generate a script for the prompt and run it
  audio <file>         use an audio file (wav/mp3/ogg) as a voice prompt
  record               toggle push-to-talk capture
  model [name]         show or set the model
  status               show connection status and model
  transcript           print the chat transcript
`

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Daemon control socket")
	timeout := cli.DurationP("timeout", "t", 5*time.Minute, "Reply timeout")
	cli.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		cli.PrintDefaults()
	}
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		cli.Usage()
		os.Exit(2)
	}

	resp, err := ipc.Send(*socket, ipc.Request{Cmd: args[0], Args: args[1:]}, *timeout)
	if err != nil {
		fmt.Println("scenevox-daemon not running:", err)
		os.Exit(1)
	}

	if resp.Message != "" {
		fmt.Println(resp.Message)
	}
	for _, line := range resp.Lines {
		fmt.Println(line)
	}
	if !resp.OK {
		os.Exit(1)
	}
}

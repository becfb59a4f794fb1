package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"triptalk/internal/ipc"
)

func main() {
	cli.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: triptalk-ctl <start|stop|reset|status|say> [text]\n")
	}
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		cli.Usage()
		os.Exit(2)
	}

	msg := ipc.ControlMessage{Cmd: args[0]}
	if msg.Cmd == ipc.CmdSay {
		msg.Arg = strings.Join(args[1:], " ")
	}

	rep, err := ipc.Send(msg)
	if err != nil {
		fmt.Println("triptalk-daemon not running:", err)
		os.Exit(1)
	}

	if rep.Msg != "" {
		fmt.Println(rep.Msg)
	}
	if !rep.Ok {
		os.Exit(1)
	}
}

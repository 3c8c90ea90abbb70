package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

const productName = "cipherlab"
const cliBanner = productName + " CLI (cipherctl)"

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func init() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintln(out, cliBanner)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Usage: cipherctl <command> [flags] [text]")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  encrypt    encrypt text with a known key")
		fmt.Fprintln(out, "  decrypt    decrypt text with a known key")
		fmt.Fprintln(out, "  crack      recover the key: crack caesar|vigenere|railfence")
		fmt.Fprintln(out, "  detect     guess which cipher produced a ciphertext")
		fmt.Fprintln(out, "  pipeline   run a chain of registered operations")
		fmt.Fprintln(out, "  config     print the resolved configuration")
		fmt.Fprintln(out, "  version    print the version")
		fmt.Fprintln(out)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	os.Exit(dispatch(flag.Args()))
}

func dispatch(args []string) int {
	if len(args) == 0 {
		flag.Usage()
		return 2
	}

	switch args[0] {
	case "encrypt":
		return runEncrypt(args[1:])
	case "decrypt":
		return runDecrypt(args[1:])
	case "crack":
		if len(args) < 2 {
			fmt.Fprintln(stderr, "crack subcommand required: caesar, vigenere or railfence")
			return 2
		}
		switch args[1] {
		case "caesar":
			return runCrackCaesar(args[2:])
		case "vigenere":
			return runCrackVigenere(args[2:])
		case "railfence", "rail-fence":
			return runCrackRailFence(args[2:])
		default:
			fmt.Fprintf(stderr, "unknown crack subcommand: %s\n", args[1])
			return 2
		}
	case "detect":
		return runDetect(args[1:])
	case "pipeline":
		return runPipeline(args[1:])
	case "config":
		return runConfig(args[1:])
	case "version", "--version", "-version":
		return runVersion(args[1:])
	case "help", "-h", "--help":
		flag.Usage()
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		flag.Usage()
		return 2
	}
}

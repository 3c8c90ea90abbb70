package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/RowanDark/cipherlab/internal/cipher"
)

func runEncrypt(args []string) int {
	return runTransform("encrypt", cipher.OperationTypeEncrypt, args)
}

func runDecrypt(args []string) int {
	return runTransform("decrypt", cipher.OperationTypeDecrypt, args)
}

func runTransform(name string, dir cipher.OperationType, args []string) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs, true)
	cipherName := fs.String("cipher", "caesar", "cipher to use: caesar, vigenere or railfence")
	key := fs.String("key", "", "shift, keyword or rail count")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	kind, err := cipher.ParseKind(*cipherName)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	text, err := common.input(fs)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := common.context()
	defer cancel()

	var output string
	if common.server != "" {
		client, err := common.client()
		if err != nil {
			return fail(err)
		}
		defer client.Close()
		if dir == cipher.OperationTypeEncrypt {
			output, err = client.Encrypt(ctx, kind, text, *key)
		} else {
			output, err = client.Decrypt(ctx, kind, text, *key)
		}
		if err != nil {
			return fail(err)
		}
	} else {
		if dir == cipher.OperationTypeEncrypt {
			output, err = cipher.Encrypt(kind, text, *key)
		} else {
			output, err = cipher.Decrypt(kind, text, *key)
		}
		if err != nil {
			return fail(err)
		}
	}

	if common.json {
		if err := printJSON(map[string]string{"cipher": string(kind), "output": output}); err != nil {
			return fail(err)
		}
		return 0
	}
	fmt.Fprintln(stdout, output)
	return 0
}

func runDetect(args []string) int {
	fs := flag.NewFlagSet("detect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs, true)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	text, err := common.input(fs)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := common.context()
	defer cancel()

	var detections []cipher.DetectionResult
	if common.server != "" {
		client, err := common.client()
		if err != nil {
			return fail(err)
		}
		defer client.Close()
		detections, err = client.Detect(ctx, text)
		if err != nil {
			return fail(err)
		}
	} else {
		detections, err = cipher.NewClassicalDetector().Detect(ctx, []byte(text))
		if err != nil {
			return fail(err)
		}
	}

	if common.json {
		if detections == nil {
			detections = []cipher.DetectionResult{}
		}
		if err := printJSON(map[string]any{"detections": detections}); err != nil {
			return fail(err)
		}
		return 0
	}
	if len(detections) == 0 {
		fmt.Fprintln(stdout, "No cipher could be identified.")
		return 0
	}
	for i, d := range detections {
		fmt.Fprintf(stdout, "#%d: %s (confidence %.2f)", i+1, d.Cipher, d.Confidence)
		switch {
		case d.Shift != nil:
			fmt.Fprintf(stdout, ", likely shift %d", *d.Shift)
		case d.KeyLengthEstimate > 0:
			fmt.Fprintf(stdout, ", estimated key length %d", d.KeyLengthEstimate)
		}
		fmt.Fprintf(stdout, "\n    %s\n", d.Reasoning)
	}
	return 0
}

// stepList collects repeated --op flags of the form name[:param=value[;param=value]].
type stepList []cipher.OperationConfig

func (s *stepList) String() string {
	names := make([]string, len(*s))
	for i, step := range *s {
		names[i] = step.Name
	}
	return strings.Join(names, ",")
}

func (s *stepList) Set(value string) error {
	name, rawParams, _ := strings.Cut(value, ":")
	step := cipher.OperationConfig{Name: strings.TrimSpace(name)}
	if step.Name == "" {
		return fmt.Errorf("operation name required in %q", value)
	}
	if rawParams != "" {
		step.Parameters = make(map[string]interface{})
		for _, pair := range strings.Split(rawParams, ";") {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("parameter %q must be name=value", pair)
			}
			step.Parameters[strings.TrimSpace(k)] = paramValue(strings.TrimSpace(v))
		}
	}
	*s = append(*s, step)
	return nil
}

// paramValue keeps numbers numeric so steps match what the HTTP API sends.
func paramValue(v string) interface{} {
	if n, err := strconv.Atoi(v); err == nil {
		return float64(n)
	}
	return v
}

func runPipeline(args []string) int {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs, false)
	var steps stepList
	fs.Var(&steps, "op", "operation to apply, e.g. vigenere_encrypt:key=lemon (repeatable)")
	reverse := fs.Bool("reverse", false, "run the inverse of the chain")
	list := fs.Bool("list", false, "list the registered operations")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *list {
		for _, op := range cipher.ListOperations() {
			fmt.Fprintf(stdout, "%-18s %-8s %s\n", op.Name(), op.Type(), op.Description())
		}
		return 0
	}
	if len(steps) == 0 {
		fmt.Fprintln(stderr, "at least one --op is required")
		return 2
	}
	for _, step := range steps {
		if _, ok := cipher.GetOperation(step.Name); !ok {
			fmt.Fprintf(stderr, "unknown operation: %s\n", step.Name)
			return 2
		}
	}

	pipeline := &cipher.Pipeline{Operations: steps, Reversible: *reverse}
	if *reverse {
		reversed, err := pipeline.Reverse()
		if err != nil {
			return fail(err)
		}
		pipeline = reversed
	}

	text, err := common.input(fs)
	if err != nil {
		return fail(err)
	}
	ctx, cancel := common.context()
	defer cancel()
	out, err := pipeline.Execute(ctx, []byte(text))
	if err != nil {
		return fail(err)
	}

	if common.json {
		names := make([]string, len(pipeline.Operations))
		for i, op := range pipeline.Operations {
			names[i] = op.Name
		}
		if err := printJSON(map[string]any{"output": string(out), "operations": names}); err != nil {
			return fail(err)
		}
		return 0
	}
	fmt.Fprintln(stdout, string(out))
	return 0
}

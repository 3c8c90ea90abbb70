package main

import (
	"flag"
	"fmt"

	"github.com/RowanDark/cipherlab/internal/crack"
	"github.com/RowanDark/cipherlab/internal/wordstats"
)

func runCrackCaesar(args []string) int {
	fs := flag.NewFlagSet("crack caesar", flag.ContinueOnError)
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

	var result crack.CaesarResult
	if common.server != "" {
		client, err := common.client()
		if err != nil {
			return fail(err)
		}
		defer client.Close()
		if result, err = client.CrackCaesar(ctx, text); err != nil {
			return fail(err)
		}
	} else {
		svc, err := localService()
		if err != nil {
			return fail(err)
		}
		if result, err = svc.Caesar(ctx, text); err != nil {
			return fail(err)
		}
	}

	if common.json {
		if err := printJSON(result); err != nil {
			return fail(err)
		}
		return 0
	}
	printCaesar(result)
	return 0
}

func printCaesar(result crack.CaesarResult) {
	fmt.Fprint(stdout, "Top 5 Possible Shifts (Ranked by Common Patterns):\n\n")
	for i, c := range result.TopByScore {
		fmt.Fprintf(stdout, "#%d: Shift: %d (Score: %.2f, Chi²: %.2f)\n", i+1, c.Shift, c.Score, c.ChiSquared)
		fmt.Fprintf(stdout, "Preview: %s\n\n", c.Preview)
	}
	fmt.Fprint(stdout, "Top 3 Possible Shifts (Ranked by Letter Frequency):\n\n")
	for i, c := range result.TopByChiSquared {
		fmt.Fprintf(stdout, "#%d: Shift: %d (Chi²: %.2f, Score: %.2f)\n", i+1, c.Shift, c.ChiSquared, c.Score)
		fmt.Fprintf(stdout, "Preview: %s\n\n", c.Preview)
	}
	fmt.Fprintf(stdout, "\nFull decryption of best match (Shift: %d):\n%s\n", result.BestShift, result.BestPlaintext)
}

func runCrackVigenere(args []string) int {
	fs := flag.NewFlagSet("crack vigenere", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs, true)
	maxKeyLength := fs.String("max-key-length", "", "longest key to try (1-15, default from config)")
	shifts := fs.Int("shifts", 0, "candidate shifts kept per key position (default from config)")
	combinationCap := fs.Int("combinations", 0, "keys tried per key length, at most 30 (default from config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	text, err := common.input(fs)
	if err != nil {
		return fail(err)
	}

	var opts crack.VigenereOptions
	if *maxKeyLength != "" {
		opts.MaxKeyLength = crack.ParseMaxKeyLength(*maxKeyLength)
	}
	if *shifts > 0 {
		opts.ShiftsPerPosition = *shifts
	}
	if *combinationCap > 0 {
		opts.CombinationCap = min(*combinationCap, crack.DefaultCombinationCap)
	}

	ctx, cancel := common.context()
	defer cancel()

	var result crack.VigenereResult
	if common.server != "" {
		client, err := common.client()
		if err != nil {
			return fail(err)
		}
		defer client.Close()
		if result, err = client.CrackVigenere(ctx, text, opts); err != nil {
			return fail(err)
		}
	} else {
		svc, err := localService()
		if err != nil {
			return fail(err)
		}
		if result, err = svc.Vigenere(ctx, text, opts); err != nil {
			return fail(err)
		}
	}

	if common.json {
		if err := printJSON(result); err != nil {
			return fail(err)
		}
		return 0
	}
	printVigenere(result)
	return 0
}

func printVigenere(result crack.VigenereResult) {
	fmt.Fprint(stdout, "Top Possible Keys:\n\n")
	for i, c := range result.TopResults {
		stats := wordstats.Recognize(c.Plaintext)
		fmt.Fprintf(stdout, "#%d: Key: %s (Length: %d, Score: %.2f, Recognition: %.2f%%)\n",
			i+1, c.Key, c.KeyLength, c.Score, stats.Percentage)
		fmt.Fprintf(stdout, "Preview: %s\n\n", c.Preview)
	}
	fmt.Fprintf(stdout, "\nFull decryption of best match (Key: %s):\n%s\n", result.BestKey, result.BestPlaintext)
}

func runCrackRailFence(args []string) int {
	fs := flag.NewFlagSet("crack railfence", flag.ContinueOnError)
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

	var result crack.RailFenceResult
	if common.server != "" {
		client, err := common.client()
		if err != nil {
			return fail(err)
		}
		defer client.Close()
		if result, err = client.CrackRailFence(ctx, text); err != nil {
			return fail(err)
		}
	} else {
		svc, err := localService()
		if err != nil {
			return fail(err)
		}
		if result, err = svc.RailFence(ctx, text); err != nil {
			return fail(err)
		}
	}

	if common.json {
		if err := printJSON(result); err != nil {
			return fail(err)
		}
		return 0
	}
	fmt.Fprint(stdout, "Possible Decryptions:\n\n")
	for _, c := range result.Candidates {
		fmt.Fprintf(stdout, "Key %d: %s\n", c.Rails, c.Text)
	}
	return 0
}
